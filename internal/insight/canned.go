package insight

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hquan/babytrack/internal/core/model"
)

// CannedProvider produces insights locally without any network calls.
// Summaries come from simple counting over the digest; parsing is a
// keyword matcher good enough for quick entry while offline.
type CannedProvider struct{}

func NewCannedProvider() *CannedProvider {
	return &CannedProvider{}
}

// GetInsight summarizes the digest with local heuristics.
func (p *CannedProvider) GetInsight(ctx context.Context, req Request) (Insight, error) {
	feedings := 0
	diapers := 0
	sleeps := 0
	for _, d := range req.Entries {
		switch {
		case model.EntryType(d.Type).IsFeeding():
			feedings++
		case strings.HasPrefix(d.Type, "diaper"):
			diapers++
		case d.Type == string(model.EntrySleep):
			sleeps++
		}
	}

	name := req.BabyName
	if name == "" {
		name = "your baby"
	}

	if feedings+diapers+sleeps == 0 {
		return Insight{
			Summary:    fmt.Sprintf("No recent activity logged for %s yet.", name),
			Prediction: "Log a few feedings to see patterns emerge.",
			Tip:        Fallback.Tip,
		}, nil
	}

	return Insight{
		Summary:    fmt.Sprintf("Recently %s had %d feedings, %d diaper changes and %d naps.", name, feedings, diapers, sleeps),
		Prediction: "Expect the next feeding roughly three hours after the last one.",
		Tip:        Fallback.Tip,
	}, nil
}

// ParseEntry matches a handful of keywords. The first number found becomes
// the amount for bottle feeds or the duration for timed types.
func (p *CannedProvider) ParseEntry(ctx context.Context, text string) (*ParsedEntry, error) {
	lower := strings.ToLower(text)

	var entryType model.EntryType
	switch {
	case strings.Contains(lower, "bottle"):
		entryType = model.EntryBottle
	case strings.Contains(lower, "left"):
		entryType = model.EntryBreastLeft
	case strings.Contains(lower, "right"):
		entryType = model.EntryBreastRight
	case strings.Contains(lower, "sleep") || strings.Contains(lower, "nap"):
		entryType = model.EntrySleep
	case strings.Contains(lower, "wet") && strings.Contains(lower, "dirty"):
		entryType = model.EntryDiaperBoth
	case strings.Contains(lower, "dirty") || strings.Contains(lower, "poop"):
		entryType = model.EntryDiaperDirty
	case strings.Contains(lower, "wet") || strings.Contains(lower, "pee"):
		entryType = model.EntryDiaperWet
	default:
		return nil, nil
	}

	parsed := &ParsedEntry{Type: entryType}
	if number, ok := firstNumber(lower); ok {
		if entryType == model.EntryBottle {
			parsed.Amount = &number
		} else if entryType.IsTimed() {
			minutes := int(number)
			parsed.Duration = &minutes
		}
	}
	return parsed, nil
}

// GetProviderName returns the name of this provider
func (p *CannedProvider) GetProviderName() string {
	return "canned"
}

func firstNumber(text string) (float64, bool) {
	for _, field := range strings.Fields(text) {
		trimmed := strings.TrimFunc(field, func(r rune) bool {
			return (r < '0' || r > '9') && r != '.'
		})
		if trimmed == "" {
			continue
		}
		if number, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return number, true
		}
	}
	return 0, false
}
