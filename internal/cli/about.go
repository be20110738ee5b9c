package cli

import (
	"io"

	"enso-settings/internal/about"
	"enso-settings/internal/format"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newAboutCmd(app *App) *cobra.Command {
	var render bool
	var width int
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show the Enso version and changelog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := about.Load(cmd.Context(), enso, app.log)
			if err != nil {
				return writeErr(cmd, err)
			}
			if render || app.Format == format.Table {
				style := about.TerminalStyle(termenv.NewOutput(cmd.OutOrStdout()))
				_, err := io.WriteString(cmd.OutOrStdout(), about.RenderTerminal(p, width, style))
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"version": p.Version,
					"caption": p.VersionLine(),
					"changes": about.HTMLToMarkdown(string(p.Changes)),
				},
			})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render for the terminal instead of printing JSON")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}
