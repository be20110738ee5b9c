package model

import "sort"

// ReservedNamespace is the built-in command category that cannot be deleted.
const ReservedNamespace = "user"

// Command is one entry of /api/enso/get/commands. The backend owns it; the
// settings UI only mirrors Disabled.
type Command struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Help        string `json:"help,omitempty"`
	Disabled    bool   `json:"disabled"`
}

// Enabled reports the checkbox state for the command.
func (c Command) Enabled() bool { return !c.Disabled }

// ColorThemes is the payload of /api/enso/color_themes.
type ColorThemes struct {
	All     map[string]any `json:"all"`
	Current string         `json:"current"`
}

// Names returns the theme names without the "default" sentinel, sorted.
func (t ColorThemes) Names() []string {
	out := make([]string, 0, len(t.All))
	for name := range t.All {
		if name == "default" {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Config keys the settings UI reads and writes.
const (
	ConfigColorTheme      = "COLOR_THEME"
	ConfigRetreatDisable  = "RETREAT_DISABLE"
	ConfigRetreatShowIcon = "RETREAT_SHOW_ICON"
)

// PyBool renders b the way the backend stores booleans.
func PyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
