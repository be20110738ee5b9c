package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette helpers. Colors adapt to light and dark terminal backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorAccent     = ac("27", "62")
	colorSurfaceFg  = ac("235", "252")
	colorError      = ac("160", "203")
)
