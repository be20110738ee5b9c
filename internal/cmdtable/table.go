// Package cmdtable groups the command list by category for display and
// toggles commands on and off.
package cmdtable

import (
	"context"
	"html/template"
	"net/url"
	"sort"
	"strings"

	"enso-settings/internal/model"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Table is the rendered command list.
type Table struct {
	Sections      []Section
	CommandCount  int
	CategoryCount int
}

// Section is one category block. The category cell spans all rows.
type Section struct {
	Category  string
	Label     string
	EditorURL string
	Rows      []Row
}

// Span is the rowspan of the category cell (at least 1 so empty sections still render).
func (s Section) Span() int {
	if len(s.Rows) == 0 {
		return 1
	}
	return len(s.Rows)
}

type Row struct {
	ID          string
	Name        string
	Enabled     bool
	Description template.HTML
	Help        template.HTML
	// First marks the row that shares a <tr> with the category cell.
	First bool
}

var policy = bluemonday.UGCPolicy()

// Sanitize turns a backend HTML fragment into markup safe to embed.
func Sanitize(fragment string) template.HTML {
	return template.HTML(policy.Sanitize(fragment))
}

// Label is the display text for a category.
func Label(category string) string {
	if category == "other" {
		return "other commands"
	}
	return category
}

var queryEscaper = strings.NewReplacer("=", "%3D", "&", "%26")

// EditorURL opens the category in the script editor. The whole query is the
// namespace, so = and & are escaped too.
func EditorURL(category string) string {
	return "/edit?" + queryEscaper.Replace(url.PathEscape(category))
}

// Build groups cmds by category. Categories are sorted lexically and the
// commands of each category by name.
func Build(cmds []model.Command) Table {
	byCat := map[string][]model.Command{}
	for _, c := range cmds {
		byCat[c.Category] = append(byCat[c.Category], c)
	}

	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	t := Table{CommandCount: len(cmds), CategoryCount: len(cats)}
	for _, cat := range cats {
		group := byCat[cat]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		sec := Section{
			Category:  cat,
			Label:     Label(cat),
			EditorURL: EditorURL(cat),
		}
		for i, c := range group {
			sec.Rows = append(sec.Rows, Row{
				ID:          c.ID,
				Name:        c.Name,
				Enabled:     c.Enabled(),
				Description: Sanitize(c.Description),
				Help:        Sanitize(c.Help),
				First:       i == 0,
			})
		}
		t.Sections = append(t.Sections, sec)
	}
	return t
}

// Categories returns the distinct categories of cmds, sorted.
func Categories(cmds []model.Command) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range cmds {
		if seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		out = append(out, c.Category)
	}
	sort.Strings(out)
	return out
}

// Toggler flips a command on the backend.
type Toggler interface {
	EnableCommand(ctx context.Context, name string) error
	DisableCommand(ctx context.Context, name string) error
}

// Toggle issues exactly one request: enable when checked, disable otherwise.
func Toggle(ctx context.Context, api Toggler, name string, checked bool) error {
	if checked {
		return api.EnableCommand(ctx, name)
	}
	return api.DisableCommand(ctx, name)
}

// ToggleAndForget is Toggle with the error logged instead of returned.
// The view keeps the new checkbox state either way.
func ToggleAndForget(ctx context.Context, log zerolog.Logger, api Toggler, name string, checked bool) {
	if err := Toggle(ctx, api, name, checked); err != nil {
		log.Warn().Err(err).Str("command", name).Bool("enabled", checked).Msg("toggle command")
	}
}
