// Package options drives the options panel: versions, color theme, the
// Retreat plugin switches, the config folder and the ensorc script.
package options

import (
	"context"
	"errors"
	"strings"
	"sync"

	"enso-settings/internal/editor"
	"enso-settings/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// EnsorcPlaceholder is shown while no ensorc code has been written.
const EnsorcPlaceholder = `# Custom Python code needed to initialize Enso.
# Some commands may ask you to declare variables here.
# You can access variables declared at this block
# in your own commands through the 'config' module.
# For example, you can obtain the following variable:
MY_VARIABLE = "my value"
# with the following code in your command:
from enso import config
my_value = config.MY_VARIABLE`

// API is the backend surface the panel reads and writes.
type API interface {
	Version(ctx context.Context) (string, error)
	PythonVersion(ctx context.Context) (string, error)
	ColorThemes(ctx context.Context) (model.ColorThemes, error)
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	ConfigDir(ctx context.Context) (string, error)
	OpenConfigDir(ctx context.Context) error
	Ensorc(ctx context.Context) (string, error)
	SetEnsorc(ctx context.Context, text string) error
	RetreatInstalled(ctx context.Context) (bool, error)
}

type Theme struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Retreat is the state of the Retreat block. The block is hidden unless
// the plugin is installed.
type Retreat struct {
	Visible  bool `json:"visible"`
	Enabled  bool `json:"enabled"`
	ShowIcon bool `json:"show_icon"`
}

// ShowIconDisabled reports whether the show-icon switch is greyed out.
func (r Retreat) ShowIconDisabled() bool { return !r.Enabled }

type View struct {
	EnsoVersion   string  `json:"enso_version"`
	PythonVersion string  `json:"python_version"`
	Themes        []Theme `json:"themes"`
	Retreat       Retreat `json:"retreat"`
	ConfigDir     string  `json:"config_dir"`
	Ensorc        string  `json:"ensorc"`
}

// CurrentTheme returns the selected theme name, or "".
func (v View) CurrentTheme() string {
	for _, t := range v.Themes {
		if t.Selected {
			return t.Name
		}
	}
	return ""
}

// Panel loads and changes Enso options. Setters are fire-and-forget from the
// page's point of view: failures are logged and returned to the caller.
type Panel struct {
	api    API
	log    zerolog.Logger
	ensorc *editor.Document
}

func NewPanel(api API, log zerolog.Logger) *Panel {
	return &Panel{
		api: api,
		log: log,
		ensorc: editor.NewDocument(editor.DocumentOptions{
			Placeholder: EnsorcPlaceholder,
			Filename:    "ensorc.py",
			Load:        api.Ensorc,
			Save:        api.SetEnsorc,
			Log:         log,
		}),
	}
}

// Ensorc is the ensorc buffer. It saves on blur only.
func (p *Panel) Ensorc() *editor.Document { return p.ensorc }

// Load fetches every widget concurrently. A failing widget is left at its
// zero value; the failures are joined into the returned error.
func (p *Panel) Load(ctx context.Context) (View, error) {
	var (
		v    View
		mu   sync.Mutex
		errs []error
	)
	fail := func(what string, err error) {
		p.log.Warn().Err(err).Str("widget", what).Msg("load option")
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		s, err := p.api.Version(ctx)
		if err != nil {
			fail("enso version", err)
			return nil
		}
		v.EnsoVersion = strings.TrimSpace(s)
		return nil
	})
	g.Go(func() error {
		s, err := p.api.PythonVersion(ctx)
		if err != nil {
			fail("python version", err)
			return nil
		}
		v.PythonVersion = strings.TrimSpace(s)
		return nil
	})
	g.Go(func() error {
		th, err := p.api.ColorThemes(ctx)
		if err != nil {
			fail("color themes", err)
			return nil
		}
		v.Themes = themes(th)
		return nil
	})
	g.Go(func() error {
		r, err := p.loadRetreat(ctx)
		if err != nil {
			fail("retreat", err)
		}
		v.Retreat = r
		return nil
	})
	g.Go(func() error {
		s, err := p.api.ConfigDir(ctx)
		if err != nil {
			fail("config dir", err)
			return nil
		}
		v.ConfigDir = strings.TrimSpace(s)
		return nil
	})
	g.Go(func() error {
		// The document logs its own load failure and falls back to the placeholder.
		if err := p.ensorc.Load(ctx); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		return nil
	})
	_ = g.Wait()

	v.Ensorc = p.ensorc.Text()
	return v, errors.Join(errs...)
}

func (p *Panel) loadRetreat(ctx context.Context) (Retreat, error) {
	installed, err := p.api.RetreatInstalled(ctx)
	if err != nil || !installed {
		return Retreat{}, err
	}
	r := Retreat{Visible: true, Enabled: true, ShowIcon: true}

	disable, err := p.api.GetConfig(ctx, model.ConfigRetreatDisable)
	if err != nil {
		return r, err
	}
	r.Enabled = strings.TrimSpace(disable) != "True"

	icon, err := p.api.GetConfig(ctx, model.ConfigRetreatShowIcon)
	if err != nil {
		return r, err
	}
	r.ShowIcon = strings.TrimSpace(icon) != "False"
	return r, nil
}

func themes(th model.ColorThemes) []Theme {
	names := th.Names()
	out := make([]Theme, 0, len(names))
	for _, n := range names {
		out = append(out, Theme{Name: n, Selected: n == th.Current})
	}
	return out
}

// SetTheme selects the color theme.
func (p *Panel) SetTheme(ctx context.Context, name string) error {
	return p.set(ctx, model.ConfigColorTheme, name)
}

// SetRetreatEnabled switches Retreat on or off and reports whether the
// show-icon switch is usable afterwards.
func (p *Panel) SetRetreatEnabled(ctx context.Context, enabled bool) (bool, error) {
	return enabled, p.set(ctx, model.ConfigRetreatDisable, model.PyBool(!enabled))
}

// SetRetreatShowIcon shows or hides the Retreat tray icon.
func (p *Panel) SetRetreatShowIcon(ctx context.Context, show bool) error {
	return p.set(ctx, model.ConfigRetreatShowIcon, model.PyBool(show))
}

// OpenConfigDir asks Enso to open its config folder in the file manager.
func (p *Panel) OpenConfigDir(ctx context.Context) error {
	if err := p.api.OpenConfigDir(ctx); err != nil {
		p.log.Warn().Err(err).Msg("open config dir")
		return err
	}
	return nil
}

// Close releases the ensorc buffer.
func (p *Panel) Close() { p.ensorc.Close() }

func (p *Panel) set(ctx context.Context, key, value string) error {
	if err := p.api.SetConfig(ctx, key, value); err != nil {
		p.log.Warn().Err(err).Str("key", key).Str("value", value).Msg("set config")
		return err
	}
	return nil
}
