package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"enso-settings/internal/editor"
	"enso-settings/internal/model"
	"enso-settings/internal/store"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"
)

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Read and write command category scripts",
	}
	cmd.AddCommand(newCategoryListCmd(app))
	cmd.AddCommand(newCategoryReadCmd(app))
	cmd.AddCommand(newCategoryWriteCmd(app))
	cmd.AddCommand(newCategoryDeleteCmd(app))
	return cmd
}

func newCategoryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user command categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			cats, err := enso.Categories(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if cats == nil {
				cats = []string{}
			}
			return writeOut(cmd, app, map[string]any{
				"data":   cats,
				"_hints": []string{"enso-settings category read <namespace>"},
			})
		},
	}
}

func newCategoryReadCmd(app *App) *cobra.Command {
	var raw, color bool
	var style string
	cmd := &cobra.Command{
		Use:   "read <namespace>",
		Short: "Print the script of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := strings.TrimSpace(args[0])
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			code, err := enso.ReadCategory(cmd.Context(), ns)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch {
			case color:
				if err := highlightPython(cmd.OutOrStdout(), code, style); err != nil {
					return writeErr(cmd, err)
				}
				return nil
			case raw:
				_, err := io.WriteString(cmd.OutOrStdout(), code)
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"namespace": ns,
					"code":      code,
				},
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the script as-is")
	cmd.Flags().BoolVar(&color, "color", false, "Print the script with syntax highlighting")
	cmd.Flags().StringVar(&style, "style", "monokai", "Highlighting style for --color")
	return cmd
}

func newCategoryWriteCmd(app *App) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "write <namespace>",
		Short: "Replace (or create) the script of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := strings.TrimSpace(args[0])
			if ns == "" {
				return writeErr(cmd, errors.New("missing namespace"))
			}
			code, err := readInput(cmd, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := enso.WriteCategory(cmd.Context(), ns, code); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"namespace": ns,
					"bytes":     len(code),
				},
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read the script from this file (default: stdin)")
	return cmd
}

func newCategoryDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <namespace>",
		Short: "Delete a category and its script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns := strings.TrimSpace(args[0])
			if ns == model.ReservedNamespace {
				return writeErr(cmd, editor.ErrReservedNamespace)
			}
			if !yes {
				return writeErr(cmd, fmt.Errorf("refusing to delete %q without --yes", ns))
			}
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := enso.DeleteCategory(cmd.Context(), ns); err != nil {
				return writeErr(cmd, err)
			}
			st := &store.State{Dir: app.Settings.StateDir}
			if last, err := st.LastNamespace(cmd.Context()); err == nil && last == ns {
				if err := st.SetLastNamespace(cmd.Context(), ""); err != nil {
					app.log.Warn().Err(err).Msg("forget last namespace")
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"namespace": ns,
					"deleted":   true,
				},
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

func highlightPython(w io.Writer, code, style string) error {
	if strings.TrimSpace(style) == "" {
		style = "monokai"
	}
	return quick.Highlight(w, code, "python", "terminal256", style)
}
