package tui

import (
	"strings"

	"enso-settings/internal/about"
	"enso-settings/internal/cmdtable"

	"github.com/charmbracelet/bubbles/list"
)

// headerItem is a category caption; the cursor never rests on it.
type headerItem struct {
	label string
	count int
}

func (i headerItem) FilterValue() string { return "" }
func (i headerItem) Title() string       { return i.label }

type commandItem struct {
	name     string
	category string
	enabled  bool
	summary  string
	help     string
}

func (i commandItem) FilterValue() string { return i.name }
func (i commandItem) Title() string {
	box := "[ ]"
	if i.enabled {
		box = "[x]"
	}
	return box + " " + i.name
}
func (i commandItem) Description() string { return i.summary }

// buildItems flattens the command table: a header per category followed by
// its commands, in table order.
func buildItems(t cmdtable.Table) []list.Item {
	var items []list.Item
	for _, sec := range t.Sections {
		items = append(items, headerItem{label: sec.Label, count: len(sec.Rows)})
		for _, r := range sec.Rows {
			items = append(items, commandItem{
				name:     r.Name,
				category: sec.Category,
				enabled:  r.Enabled,
				summary:  firstLine(about.HTMLToMarkdown(string(r.Description))),
				help:     about.HTMLToMarkdown(string(r.Help)),
			})
		}
	}
	return items
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
