package util

import (
	"fmt"
	"strings"
	"time"
)

// Helper functions
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatMinutes renders a whole-minute duration, e.g. "25 min".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d min", minutes)
}

// FormatAmount renders a feed volume in ounces, trimming trailing zeros.
func FormatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " oz"
}

// FormatClock renders a timestamp as a short wall-clock time in the
// configured timezone, e.g. "3:04 PM".
func FormatClock(t time.Time) string {
	return GetTimeProvider().Format(t, "3:04 PM")
}

// FormatRelative renders how long ago a timestamp was, e.g. "2h 15m ago".
func FormatRelative(t time.Time, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	return FormatDuration(d) + " ago"
}
