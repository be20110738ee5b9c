package cli

import (
	"errors"
	"strings"

	"enso-settings/internal/about"
	"enso-settings/internal/cmdtable"
	"enso-settings/internal/tui"

	"github.com/spf13/cobra"
)

type commandRow struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

func newCommandsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List, enable and disable Enso commands",
	}
	cmd.AddCommand(newCommandsListCmd(app))
	cmd.AddCommand(newCommandsToggleCmd(app, true))
	cmd.AddCommand(newCommandsToggleCmd(app, false))
	cmd.AddCommand(newCommandsBrowseCmd(app))
	return cmd
}

func newCommandsListCmd(app *App) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List commands grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			cmds, err := enso.Commands(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			table := cmdtable.Build(cmds)

			rows := []commandRow{}
			for _, sec := range table.Sections {
				if category != "" && sec.Category != category {
					continue
				}
				for _, r := range sec.Rows {
					rows = append(rows, commandRow{
						Name:        r.Name,
						Category:    sec.Category,
						Enabled:     r.Enabled,
						Description: firstLine(about.HTMLToMarkdown(string(r.Description))),
					})
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"_hints": []string{
					"enso-settings commands disable <name>",
					"enso-settings commands browse",
				},
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list commands of this category")
	return cmd
}

func newCommandsToggleCmd(app *App, enable bool) *cobra.Command {
	use, short := "disable <name>", "Disable a command"
	if enable {
		use, short = "enable <name>", "Enable a command"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Command names contain spaces; accept them unquoted.
			name := strings.TrimSpace(strings.Join(args, " "))
			if name == "" {
				return writeErr(cmd, errors.New("missing command name"))
			}
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := cmdtable.Toggle(cmd.Context(), enso, name, enable); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"name":    name,
					"enabled": enable,
				},
			})
		},
	}
}

func newCommandsBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and toggle commands in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := tui.Run(cmd.Context(), enso, app.log); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
