package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders v as a text table.
//
// Values go through JSON first so struct tags name the columns. A
// {"data": ..., "_hints": [...]} envelope renders data and prints the hints
// below it. Lists of objects become one row per element; a single object
// becomes a key/value table; scalars are printed as is.
func WriteTable(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	var hints []string
	if env, ok := x.(map[string]any); ok {
		if data, ok := env["data"]; ok {
			if hs, ok := env["_hints"].([]any); ok {
				for _, h := range hs {
					hints = append(hints, cell(h))
				}
			}
			x = data
		}
	}

	var out string
	switch t := x.(type) {
	case []any:
		out = listTable(t)
	case map[string]any:
		out = objectTable(t)
	default:
		out = cell(t)
	}

	var sb strings.Builder
	if out != "" {
		sb.WriteString(out)
		sb.WriteByte('\n')
	}
	for _, h := range hints {
		sb.WriteString("hint: " + h + "\n")
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func listTable(xs []any) string {
	if len(xs) == 0 {
		return ""
	}
	colSet := map[string]bool{}
	scalars := true
	for _, it := range xs {
		if m, ok := it.(map[string]any); ok {
			scalars = false
			for k := range m {
				colSet[k] = true
			}
		}
	}
	if scalars {
		lines := make([]string, 0, len(xs))
		for _, it := range xs {
			lines = append(lines, cell(it))
		}
		return strings.Join(lines, "\n")
	}

	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	rows := make([][]string, 0, len(xs))
	for _, it := range xs {
		m, _ := it.(map[string]any)
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cell(m[c])
		}
		rows = append(rows, row)
	}
	return newTable().Headers(cols...).Rows(rows...).String()
}

func objectTable(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, cell(m[k])})
	}
	return newTable().Headers("key", "value").Rows(rows...).String()
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if float64(int64(t)) == t {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, cell(it))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
