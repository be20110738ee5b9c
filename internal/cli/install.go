package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"enso-settings/internal/install"

	"github.com/spf13/cobra"
)

func newInstallCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Add Install buttons to command pages and receive them",
	}
	cmd.AddCommand(newInstallRewriteCmd(app))
	cmd.AddCommand(newInstallReceiveCmd(app))
	return cmd
}

func newInstallRewriteCmd(app *App) *cobra.Command {
	var pageURL string
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "rewrite <file>",
		Short: `Insert an Install form after every rel="ensocommand" link`,
		Long: strings.TrimSpace(`
Read an HTML page and insert an Install form after every link marked
rel="ensocommand". The forms post to the local install receiver. The
rewritten page goes to stdout unless --in-place is set. Use "-" to read
stdin.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if inPlace && path == "-" {
				return writeErr(cmd, errors.New("--in-place needs a file"))
			}
			src, err := readInput(cmd, path)
			if err != nil {
				return writeErr(cmd, err)
			}
			var out bytes.Buffer
			n, err := install.Rewrite(&out, strings.NewReader(src), pageURL)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info().Int("links", n).Str("file", path).Msg("install forms inserted")
			if !inPlace {
				_, err := out.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"file":  path,
					"links": n,
				},
			})
		},
	}
	cmd.Flags().StringVar(&pageURL, "page-url", "", "URL the page is served from (resolves relative hrefs)")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the file instead of printing")
	return cmd
}

func newInstallReceiveCmd(app *App) *cobra.Command {
	var addr, dir string
	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Listen for Install form posts and install the commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(dir) == "" {
				return writeErr(cmd, errors.New("install receive: missing --scripts-dir"))
			}
			errOut := cmd.ErrOrStderr()
			in := install.NewInstaller(install.InstallerOptions{
				Dir:  dir,
				HTTP: app.httpClient(),
				Log:  app.log,
				Notify: func(r install.Result) {
					fmt.Fprintln(errOut, r.Message())
				},
			})

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":       addr,
					"scriptsDir": dir,
				},
				"_hints": []string{
					"enso-settings install rewrite <page.html> --page-url <url>",
				},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := install.Serve(ctx, addr, in, app.log); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("ENSO_INSTALL_ADDR", install.DefaultAddr), "Receiver bind address")
	cmd.Flags().StringVar(&dir, "scripts-dir", "", "Folder commands are installed into (default: ENSO_SCRIPTS_DIR)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("scripts-dir") {
			dir = app.Settings.ScriptsDir
		}
		if !cmd.Flags().Changed("addr") && app.Settings.InstallAddr != "" {
			addr = app.Settings.InstallAddr
		}
	}
	return cmd
}
