package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type commandDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
}

func newCommandDelegate() commandDelegate {
	return commandDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		header: lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func (d commandDelegate) Height() int  { return 1 }
func (d commandDelegate) Spacing() int { return 0 }
func (d commandDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d commandDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	switch it := item.(type) {
	case headerItem:
		line := fmt.Sprintf("%s (%d)", it.label, it.count)
		fmt.Fprint(w, d.header.Render(fit(line, contentW)))
	case commandItem:
		line := "  " + it.Title()
		if it.summary != "" {
			line += "  " + d.muted.Render(it.summary)
		}
		style := d.normal
		if index == m.Index() {
			style = d.selected
		}
		fmt.Fprint(w, style.Render(fit(line, contentW)))
	default:
		fmt.Fprint(w, fit(fmt.Sprint(item), contentW))
	}
}

// fit pads or cuts line to exactly width cells.
func fit(line string, width int) string {
	lineW := xansi.StringWidth(line)
	if lineW < width {
		return line + strings.Repeat(" ", width-lineW)
	}
	if lineW > width {
		return xansi.Cut(line, 0, width)
	}
	return line
}
