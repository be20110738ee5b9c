package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	"enso-settings/internal/logging"
	"enso-settings/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeAPI struct {
	mu    sync.Mutex
	cmds  []model.Command
	calls []string
}

func (f *fakeAPI) Commands(context.Context) ([]model.Command, error) { return f.cmds, nil }

func (f *fakeAPI) EnableCommand(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "enable "+name)
	return nil
}

func (f *fakeAPI) DisableCommand(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disable "+name)
	return nil
}

func testCommands() []model.Command {
	return []model.Command{
		{Name: "open", Category: "web", Description: "Opens <b>things</b>", Help: "<p>Open a URL.</p>"},
		{Name: "calc", Category: "math"},
		{Name: "google", Category: "web", Disabled: true},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m browserModel, msg tea.Msg) (browserModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(browserModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return bm, cmd
}

func TestBrowser_ItemsGroupedByCategory(t *testing.T) {
	m := newBrowserModel(context.Background(), &fakeAPI{}, logging.Nop(), testCommands())

	var got []string
	for _, it := range m.list.Items() {
		switch it := it.(type) {
		case headerItem:
			got = append(got, "# "+it.label)
		case commandItem:
			got = append(got, it.Title())
		}
	}
	want := []string{"# math", "[x] calc", "# web", "[ ] google", "[x] open"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("items = %v, want %v", got, want)
	}
	if _, ok := m.list.SelectedItem().(commandItem); !ok {
		t.Fatalf("cursor should start on a command")
	}
}

func TestBrowser_CursorSkipsHeaders(t *testing.T) {
	m := newBrowserModel(context.Background(), &fakeAPI{}, logging.Nop(), testCommands())
	m, _ = update(t, m, key("down"))
	it, ok := m.list.SelectedItem().(commandItem)
	if !ok || it.name != "google" {
		t.Fatalf("expected google after moving down past the header, got %#v", m.list.SelectedItem())
	}
	m, _ = update(t, m, key("up"))
	if it, _ := m.list.SelectedItem().(commandItem); it.name != "calc" {
		t.Fatalf("expected calc, got %#v", m.list.SelectedItem())
	}
	m, _ = update(t, m, key("up"))
	if it, _ := m.list.SelectedItem().(commandItem); it.name != "calc" {
		t.Fatalf("cursor should not rest on the first header, got %#v", m.list.SelectedItem())
	}
}

func TestBrowser_SpaceTogglesSelected(t *testing.T) {
	api := &fakeAPI{}
	m := newBrowserModel(context.Background(), api, logging.Nop(), testCommands())

	m, cmd := update(t, m, key(" "))
	if cmd == nil {
		t.Fatalf("expected a toggle command")
	}
	if it := m.list.SelectedItem().(commandItem); it.enabled {
		t.Fatalf("checkbox should flip immediately")
	}
	msg := cmd()
	if tm, ok := msg.(toggledMsg); !ok || tm.err != nil || tm.name != "calc" || tm.enabled {
		t.Fatalf("unexpected message %#v", msg)
	}
	if len(api.calls) != 1 || api.calls[0] != "disable calc" {
		t.Fatalf("calls = %v", api.calls)
	}

	m, _ = update(t, m, msg)
	if !strings.Contains(m.View(), "calc disabled") {
		t.Fatalf("status should report the toggle")
	}
}

func TestBrowser_HelpAndQuit(t *testing.T) {
	m := newBrowserModel(context.Background(), &fakeAPI{}, logging.Nop(), testCommands())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = update(t, m, key("?"))
	if !m.showHelp {
		t.Fatalf("? should open the help pane")
	}
	if !strings.Contains(m.helpView(), "calc") {
		t.Fatalf("help pane should name the command")
	}

	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestHelpRenderer_StyleOverrideAndCache(t *testing.T) {
	t.Setenv("ENSO_TUI_MD_STYLE", "notty")
	h := newHelpRenderer()
	if h.style != "notty" {
		t.Fatalf("style = %q, want notty", h.style)
	}

	out := h.render("calc", "Evaluates **math**.", 40)
	if !strings.Contains(out, "math") {
		t.Fatalf("unexpected render: %q", out)
	}
	if got := h.render("calc", "changed", 40); got != out {
		t.Fatalf("second render should come from the cache")
	}
	if h.render("calc", "  ", 40) != "" {
		t.Fatalf("blank help renders empty")
	}
}
