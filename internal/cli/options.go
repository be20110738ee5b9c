package cli

import (
	"fmt"
	"io"
	"strings"

	"enso-settings/internal/options"

	"github.com/spf13/cobra"
)

func newOptionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show and change Enso options",
	}
	cmd.AddCommand(newOptionsShowCmd(app))
	cmd.AddCommand(newOptionsThemeCmd(app))
	cmd.AddCommand(newOptionsRetreatCmd(app))
	cmd.AddCommand(newOptionsRetreatIconCmd(app))
	cmd.AddCommand(newOptionsOpenConfigDirCmd(app))
	cmd.AddCommand(newOptionsEnsorcCmd(app))
	return cmd
}

// withPanel runs fn against an options panel bound to the API.
func withPanel(cmd *cobra.Command, app *App, fn func(p *options.Panel) error) error {
	enso, err := app.backend(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	p := options.NewPanel(enso, app.log)
	defer p.Close()
	if err := fn(p); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func newOptionsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show versions, theme, Retreat and config folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(cmd, app, func(p *options.Panel) error {
				v, err := p.Load(cmd.Context())
				if err != nil {
					// Widgets load independently; show what did load.
					app.log.Warn().Err(err).Msg("options partially loaded")
				}
				hints := []string{"enso-settings options theme <name>"}
				if v.Retreat.Visible {
					hints = append(hints, "enso-settings options retreat on|off")
				}
				return writeOut(cmd, app, map[string]any{
					"data":   v,
					"_hints": hints,
				})
			})
		},
	}
}

func newOptionsThemeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "theme <name>",
		Short: "Select the color theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			return withPanel(cmd, app, func(p *options.Panel) error {
				if err := p.SetTheme(cmd.Context(), name); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"theme": name},
				})
			})
		},
	}
}

func newOptionsRetreatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "retreat on|off",
		Short: "Enable or disable Retreat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withPanel(cmd, app, func(p *options.Panel) error {
				iconUsable, err := p.SetRetreatEnabled(cmd.Context(), on)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"enabled":         on,
						"showIconEnabled": iconUsable,
					},
				})
			})
		},
	}
}

func newOptionsRetreatIconCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "retreat-icon on|off",
		Short: "Show or hide the Retreat tray icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withPanel(cmd, app, func(p *options.Panel) error {
				if err := p.SetRetreatShowIcon(cmd.Context(), on); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"showIcon": on},
				})
			})
		},
	}
}

func newOptionsOpenConfigDirCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open-config-dir",
		Short: "Ask Enso to open its config folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPanel(cmd, app, func(p *options.Panel) error {
				if err := p.OpenConfigDir(cmd.Context()); err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"opened": true},
				})
			})
		},
	}
}

func newOptionsEnsorcCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ensorc",
		Short: "Print the ensorc file, or replace it with --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("file") {
				text, err := enso.Ensorc(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			text, err := readInput(cmd, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := enso.SetEnsorc(cmd.Context(), text); err != nil {
				return writeErr(cmd, fmt.Errorf("save ensorc: %w", err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"bytes": len(text)},
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Replace ensorc with this file (- for stdin)")
	return cmd
}
