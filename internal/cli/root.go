package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"enso-settings/internal/api"
	"enso-settings/internal/auth"
	"enso-settings/internal/config"
	"enso-settings/internal/format"
	"enso-settings/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Settings   config.Settings
	PrettyJSON bool
	Format     string

	envErr error
	log    zerolog.Logger
	enso   *api.Enso
}

func NewRootCmd() *cobra.Command {
	app := &App{log: logging.Nop()}
	app.Settings, app.envErr = config.Load()

	cmd := &cobra.Command{
		Use:          "enso-settings",
		Short:        "Settings for the Enso launcher: commands, scripts, options",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the settings UI in a browser
  enso-settings serve --open

  # Scriptable commands
  enso-settings commands list
  enso-settings commands disable "open with"

  # Edit a command category
  enso-settings category read user --color
  enso-settings category write web --file web.py
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.envErr != nil {
			return writeErr(cmd, app.envErr)
		}
		app.Settings.Normalize()
		f, err := format.Parse(app.Format)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Format = f
		app.log = logging.New(cmd.ErrOrStderr(), app.Settings.LogLevel)
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.Settings.APIURL, "api", app.Settings.APIURL, "Base URL of the Enso API")
	pf.StringVar(&app.Settings.Token, "token", app.Settings.Token, "API token (default: ENSO_TOKEN, or the enso-token meta tag of ENSO_TOKEN_PAGE)")
	pf.StringVar(&app.Settings.StateDir, "state-dir", app.Settings.StateDir, "Directory for local UI state")
	pf.StringVar(&app.Format, "format", envOr("ENSO_FORMAT", "json"), "Output format (json|table)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	pf.StringVar(&app.Settings.LogLevel, "log-level", app.Settings.LogLevel, "Log level (debug|info|warn|error)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newCommandsCmd(app))
	cmd.AddCommand(newCategoryCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newOptionsCmd(app))
	cmd.AddCommand(newAboutCmd(app))
	cmd.AddCommand(newInstallCmd(app))

	return cmd
}

// backend returns the API client, resolving the token on first use.
func (app *App) backend(ctx context.Context) (*api.Enso, error) {
	if app.enso != nil {
		return app.enso, nil
	}
	s := app.Settings
	if s.Token == "" && s.TokenPage != "" {
		tok, err := tokenFromPage(ctx, s.TokenPage, app.httpClient())
		if err != nil {
			return nil, fmt.Errorf("read token from %s: %w", s.TokenPage, err)
		}
		app.Settings.Token = tok
	}
	app.enso = api.NewEnso(api.NewClient(api.ClientConfig{
		BaseURL: app.Settings.APIURL,
		Token:   app.Settings.Token,
		Timeout: s.HTTPTimeout,
		Retries: s.HTTPRetries,
		Log:     app.log,
	}))
	return app.enso, nil
}

func (app *App) httpClient() *http.Client {
	return api.NewHTTPClient(app.Settings.HTTPTimeout, app.Settings.HTTPRetries, app.log)
}

// tokenFromPage reads an Enso page (URL or local file) and extracts its token.
func tokenFromPage(ctx context.Context, page string, hc *http.Client) (string, error) {
	var r io.Reader
	if strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
		if err != nil {
			return "", err
		}
		resp, err := hc.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(page)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	return auth.TokenFromHTML(r)
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, errors.New("expected on or off, got " + s)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
