package presentation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/hquan/babytrack/internal/aggregate"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/util"
)

const histogramBarWidth = 28

// maxWidth returns the usable terminal width with a conservative fallback.
func maxWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth < 60 {
		termWidth = 74
	}

	width := termWidth - 4
	if width > 100 {
		width = 100
	}
	return width
}

// RenderStatus writes the one-shot status report: last entry, next feeding
// estimate and the weekly feeding histogram.
func RenderStatus(w io.Writer, summary aggregate.Summary, entries []model.LogEntry, now time.Time) {
	width := maxWidth()
	tp := util.GetTimeProvider()

	fmt.Fprintln(w, util.ColorBold+util.ColorCyan+"babytrack status"+util.ColorReset)
	fmt.Fprintln(w, strings.Repeat("─", width))

	last := summary.LastEntryLabel
	if summary.LastEntryAt != nil {
		last += "  (" + util.FormatRelative(time.UnixMilli(*summary.LastEntryAt), now) + ")"
	}
	fmt.Fprintf(w, "%s %s\n", util.PadString("Last entry:", 16, true), last)

	next := "unknown"
	if summary.NextFeedingAt != nil {
		at := time.UnixMilli(*summary.NextFeedingAt)
		next = util.FormatClock(at)
		if at.Before(now) {
			next += "  " + util.ColorRed + "overdue" + util.ColorReset
		}
	}
	fmt.Fprintf(w, "%s %s\n", util.PadString("Next feeding:", 16, true), next)

	if summary.AlertVisible {
		fmt.Fprintf(w, "%s %s\n", util.PadString("Alert:", 16, true),
			util.ColorYellow+"feeding due"+util.ColorReset)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, util.ColorBold+"Feedings, last 7 days"+util.ColorReset)

	max := 0
	for _, bucket := range summary.Histogram {
		if bucket.Count > max {
			max = bucket.Count
		}
	}
	for _, bucket := range summary.Histogram {
		day := tp.Format(bucket.Day, "Mon 01/02")
		fmt.Fprintf(w, "  %s  %s %d\n",
			util.PadString(day, 10, true),
			util.Bar(bucket.Count, max, histogramBarWidth),
			bucket.Count)
	}

	if len(entries) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, util.ColorBold+"Recent entries"+util.ColorReset)
		renderEntryTable(w, entries)
	}
}

func renderEntryTable(w io.Writer, entries []model.LogEntry) {
	fmt.Fprintf(w, "  %s %s %s %s\n",
		util.PadString("TIME", 10, true),
		util.PadString("TYPE", 20, true),
		util.PadString("AMOUNT", 10, true),
		util.PadString("DURATION", 10, true))

	for _, entry := range entries {
		amount := "-"
		if entry.Amount != nil {
			amount = util.FormatAmount(*entry.Amount)
		}
		duration := "-"
		if entry.Duration != nil {
			duration = util.FormatMinutes(*entry.Duration)
		}

		fmt.Fprintf(w, "  %s %s %s %s\n",
			util.PadString(util.FormatClock(entry.Time()), 10, true),
			util.PadString(entry.Type.Label(), 20, true),
			util.PadString(amount, 10, true),
			util.PadString(duration, 10, true))
	}
}
