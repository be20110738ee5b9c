// Package format renders CLI results as JSON envelopes or text tables.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON  = "json"
	Table = "table"
)

// Parse normalizes a --format value. An empty value means JSON.
func Parse(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", JSON:
		return JSON, nil
	case Table:
		return Table, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want json|table)", s)
	}
}

// Write renders v in format f.
func Write(w io.Writer, v any, f string, pretty bool) error {
	f, err := Parse(f)
	if err != nil {
		return err
	}
	if f == Table {
		return WriteTable(w, v)
	}
	return WriteJSON(w, v, pretty)
}

// WriteJSON writes v as one JSON document. Scripts are full of < and >, so
// HTML escaping is off.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
