package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Run opens the command browser on the terminal.
func Run(ctx context.Context, api API, log zerolog.Logger) error {
	cmds, err := api.Commands(ctx)
	if err != nil {
		return err
	}
	m := newBrowserModel(ctx, api, log, cmds)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
