package tui

import (
	"os"
	"strings"
	"sync"

	"enso-settings/internal/about"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

type helpKey struct {
	name  string
	width int
}

// helpRenderer turns command help (markdown) into terminal text. Output is
// kept per command and width, so moving the cursor back is free.
type helpRenderer struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
	rendered  map[helpKey]string
}

// newHelpRenderer picks the glamour style once: ENSO_TUI_MD_STYLE wins,
// otherwise the terminal background decides.
func newHelpRenderer() *helpRenderer {
	style := strings.ToLower(strings.TrimSpace(os.Getenv("ENSO_TUI_MD_STYLE")))
	switch style {
	case "light", "dark", "notty":
	default:
		style = about.TerminalStyle(termenv.NewOutput(os.Stdout))
	}
	return &helpRenderer{
		style:     style,
		renderers: map[int]*glamour.TermRenderer{},
		rendered:  map[helpKey]string{},
	}
}

func (h *helpRenderer) render(name, md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	key := helpKey{name: name, width: width}

	h.mu.Lock()
	defer h.mu.Unlock()
	if out, ok := h.rendered[key]; ok {
		return out
	}
	r := h.renderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(h.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		h.renderers[width] = rr
		r = rr
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	out = strings.TrimRight(out, "\n")
	h.rendered[key] = out
	return out
}
