// Package tui is a terminal browser for the Enso command list.
package tui

import (
	"context"
	"strings"

	"enso-settings/internal/cmdtable"
	"enso-settings/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// API is what the browser needs from the backend.
type API interface {
	Commands(ctx context.Context) ([]model.Command, error)
	cmdtable.Toggler
}

type toggledMsg struct {
	name    string
	enabled bool
	err     error
}

type browserModel struct {
	ctx context.Context
	api API
	log zerolog.Logger

	list     list.Model
	help     *helpRenderer
	showHelp bool
	status   string
	width    int
	height   int
}

func newBrowserModel(ctx context.Context, api API, log zerolog.Logger, cmds []model.Command) browserModel {
	t := cmdtable.Build(cmds)
	l := list.New(buildItems(t), newCommandDelegate(), 80, 20)
	l.Title = "Enso commands"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	m := browserModel{ctx: ctx, api: api, log: log, list: l, help: newHelpRenderer()}
	m.skipHeader(1)
	return m
}

func (m browserModel) Init() tea.Cmd { return nil }

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.status = "toggle " + msg.name + ": " + msg.err.Error()
		} else if msg.enabled {
			m.status = msg.name + " enabled"
		} else {
			m.status = msg.name + " disabled"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			m.resize()
			return m, nil
		case " ", "x":
			return m, m.toggleSelected()
		case "up", "k", "shift+tab":
			m.list.CursorUp()
			m.skipHeader(-1)
			return m, nil
		case "down", "j", "tab":
			m.list.CursorDown()
			m.skipHeader(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.skipHeader(1)
	return m, cmd
}

// toggleSelected flips the local checkbox at once and sends the request in
// the background. The checkbox keeps its new state even if the request fails.
func (m *browserModel) toggleSelected() tea.Cmd {
	it, ok := m.list.SelectedItem().(commandItem)
	if !ok {
		return nil
	}
	it.enabled = !it.enabled
	m.list.SetItem(m.list.Index(), it)

	ctx, api, log := m.ctx, m.api, m.log
	return func() tea.Msg {
		err := cmdtable.Toggle(ctx, api, it.name, it.enabled)
		if err != nil {
			log.Warn().Err(err).Str("command", it.name).Bool("enabled", it.enabled).Msg("toggle command")
		}
		return toggledMsg{name: it.name, enabled: it.enabled, err: err}
	}
}

// skipHeader moves the cursor off category headers in direction dir,
// reversing at the ends of the list.
func (m *browserModel) skipHeader(dir int) {
	n := len(m.list.Items())
	for tries := 0; tries < 2; tries++ {
		i := m.list.Index()
		for i >= 0 && i < n {
			if _, ok := m.list.Items()[i].(headerItem); !ok {
				m.list.Select(i)
				return
			}
			i += dir
		}
		dir = -dir
	}
}

func (m *browserModel) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 1
	if m.showHelp {
		h = m.height / 2
	}
	m.list.SetSize(m.width, h)
}

func (m browserModel) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.helpView())
	}

	b.WriteString("\n")
	footer := "space toggle · ? help · q quit"
	if m.status != "" {
		footer = m.status
	}
	st := lipgloss.NewStyle().Foreground(colorMuted)
	if strings.HasPrefix(footer, "toggle ") {
		st = lipgloss.NewStyle().Foreground(colorError)
	}
	b.WriteString(st.Render(footer))
	return b.String()
}

func (m browserModel) helpView() string {
	it, ok := m.list.SelectedItem().(commandItem)
	if !ok {
		return ""
	}
	w := m.width
	if w <= 0 {
		w = 80
	}
	text := it.help
	if strings.TrimSpace(text) == "" {
		text = "_No help for " + it.name + "._"
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(it.name)
	return title + "\n" + m.help.render(it.name, text, w-2)
}
