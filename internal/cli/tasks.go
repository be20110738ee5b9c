package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Read and write the task script",
	}

	var raw bool
	read := &cobra.Command{
		Use:   "read",
		Short: "Print the task script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			code, err := enso.ReadTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), code)
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"code": code},
			})
		},
	}
	read.Flags().BoolVar(&raw, "raw", false, "Print the script as-is")

	var file string
	write := &cobra.Command{
		Use:   "write",
		Short: "Replace the task script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readInput(cmd, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			enso, err := app.backend(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := enso.WriteTasks(cmd.Context(), code); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"bytes": len(code)},
			})
		},
	}
	write.Flags().StringVar(&file, "file", "", "Read the script from this file (default: stdin)")

	cmd.AddCommand(read, write)
	return cmd
}
