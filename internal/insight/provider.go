package insight

import (
	"context"
	"errors"

	"github.com/hquan/babytrack/internal/core/constants"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/util"
)

// Insight is the advisory triple shown on the dashboard. It is never
// authoritative state.
type Insight struct {
	Summary    string `json:"summary"`
	Prediction string `json:"prediction"`
	Tip        string `json:"tip"`
}

// EntryDigest is the reduced form of a log entry sent to a provider.
type EntryDigest struct {
	Type     string   `json:"type"`
	Time     string   `json:"time"`
	Amount   *float64 `json:"amount,omitempty"`
	Duration *int     `json:"duration,omitempty"`
}

// Request carries the recent history and display name for one insight call.
type Request struct {
	BabyName string        `json:"babyName"`
	Entries  []EntryDigest `json:"entries"`
}

// ParsedEntry is a partial entry extracted from free text, for the caller
// to merge into a new log action. A nil ParsedEntry means no match.
type ParsedEntry struct {
	Type     model.EntryType `json:"type,omitempty"`
	Amount   *float64        `json:"amount,omitempty"`
	Duration *int            `json:"duration,omitempty"`
	Note     string          `json:"note,omitempty"`
}

// Provider produces insights and parses free-text log requests.
type Provider interface {
	// GetInsight returns the summary/prediction/tip triple for the request
	GetInsight(ctx context.Context, req Request) (Insight, error)

	// ParseEntry extracts a partial entry from free text, nil on no match
	ParseEntry(ctx context.Context, text string) (*ParsedEntry, error)

	// GetProviderName returns the name of this provider
	GetProviderName() string
}

// ErrMalformedResponse is returned when a provider reply cannot be used
var ErrMalformedResponse = errors.New("malformed insight response")

// Fallback is substituted whenever a provider call fails. Callers never see
// a provider error.
var Fallback = Insight{
	Summary:    "Your little one is doing great. Keep up the loving care!",
	Prediction: "Keep following your baby's natural rhythm.",
	Tip:        "Every baby is different. Trust your instincts!",
}

// Digest reduces the newest entries to the wire form, capped at the
// provider history limit.
func Digest(entries []model.LogEntry) []EntryDigest {
	n := len(entries)
	if n > constants.MaxInsightEntries {
		n = constants.MaxInsightEntries
	}

	digests := make([]EntryDigest, 0, n)
	for _, entry := range entries[:n] {
		digests = append(digests, EntryDigest{
			Type:     string(entry.Type),
			Time:     util.FormatClock(entry.Time()),
			Amount:   entry.Amount,
			Duration: entry.Duration,
		})
	}
	return digests
}

// Fetch calls the provider and recovers any failure into the fixed
// fallback triple. It never returns an error.
func Fetch(ctx context.Context, p Provider, req Request) Insight {
	result, err := p.GetInsight(ctx, req)
	if err != nil {
		util.LogWarnf("Insight request via %s failed, using fallback: %v", p.GetProviderName(), err)
		return Fallback
	}
	return result
}
