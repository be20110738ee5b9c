package api

import (
	"context"
	"net/url"
	"strings"

	"enso-settings/internal/model"
)

// Enso exposes one method per backend endpoint.
type Enso struct {
	C *Client
}

func NewEnso(c *Client) *Enso { return &Enso{C: c} }

func (e *Enso) Version(ctx context.Context) (string, error) {
	return e.C.Get(ctx, "/api/enso/version")
}

func (e *Enso) PythonVersion(ctx context.Context) (string, error) {
	return e.C.Get(ctx, "/api/python/version")
}

func (e *Enso) ColorThemes(ctx context.Context) (model.ColorThemes, error) {
	var th model.ColorThemes
	err := e.C.GetJSON(ctx, "/api/enso/color_themes", &th)
	return th, err
}

func (e *Enso) GetConfig(ctx context.Context, key string) (string, error) {
	return e.C.Get(ctx, "/api/enso/get/config/"+Seg(key))
}

func (e *Enso) SetConfig(ctx context.Context, key, value string) error {
	_, err := e.C.Get(ctx, "/api/enso/set/config/"+Seg(key)+"/"+Seg(value))
	return err
}

func (e *Enso) ConfigDir(ctx context.Context) (string, error) {
	return e.C.Get(ctx, "/api/enso/get/config_dir")
}

func (e *Enso) OpenConfigDir(ctx context.Context) error {
	_, err := e.C.Get(ctx, "/api/enso/open/config_dir")
	return err
}

func (e *Enso) Ensorc(ctx context.Context) (string, error) {
	return e.C.Get(ctx, "/api/enso/get/ensorc")
}

func (e *Enso) SetEnsorc(ctx context.Context, text string) error {
	return e.C.PostForm(ctx, "/api/enso/set/ensorc", url.Values{"ensorc": {text}})
}

func (e *Enso) Commands(ctx context.Context) ([]model.Command, error) {
	var cmds []model.Command
	if err := e.C.GetJSON(ctx, "/api/enso/get/commands", &cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

func (e *Enso) EnableCommand(ctx context.Context, name string) error {
	_, err := e.C.Get(ctx, "/api/enso/commands/enable/"+Seg(name))
	return err
}

func (e *Enso) DisableCommand(ctx context.Context, name string) error {
	_, err := e.C.Get(ctx, "/api/enso/commands/disable/"+Seg(name))
	return err
}

func (e *Enso) ReadCategory(ctx context.Context, ns string) (string, error) {
	return e.C.Get(ctx, "/api/enso/commands/read_category/"+Seg(ns))
}

func (e *Enso) WriteCategory(ctx context.Context, ns, code string) error {
	return e.C.PostForm(ctx, "/api/enso/commands/write_category/"+Seg(ns), url.Values{"code": {code}})
}

func (e *Enso) DeleteCategory(ctx context.Context, ns string) error {
	_, err := e.C.Get(ctx, "/api/enso/commands/delete_category/"+Seg(ns))
	return err
}

func (e *Enso) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := e.C.GetJSON(ctx, "/api/enso/get/user_command_categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enso) ReadTasks(ctx context.Context) (string, error) {
	return e.C.Get(ctx, "/api/enso/read_tasks")
}

func (e *Enso) WriteTasks(ctx context.Context, code string) error {
	return e.C.PostForm(ctx, "/api/enso/write_tasks", url.Values{"code": {code}})
}

// RetreatInstalled reports whether the companion app answered with a non-empty body.
func (e *Enso) RetreatInstalled(ctx context.Context) (bool, error) {
	s, err := e.C.Get(ctx, "/api/retreat/installed")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(s) != "", nil
}

// Changes returns the changelog HTML fragment.
func (e *Enso) Changes(ctx context.Context) (string, error) {
	return e.C.Get(ctx, "/changes.html")
}
