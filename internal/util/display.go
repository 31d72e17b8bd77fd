package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal color sequences
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorBold   = "\033[1m"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for emojis
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadString pads a string to a specific display width, handling wide runes correctly
func PadString(s string, width int, leftAlign bool) string {
	actualWidth := GetDisplayWidth(s)
	if actualWidth >= width {
		return s
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// Bar renders a fixed-width histogram bar for count out of max.
func Bar(count, max, width int) string {
	if max <= 0 || width <= 0 {
		return ""
	}
	filled := count * width / max
	if count > 0 && filled == 0 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
