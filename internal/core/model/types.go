package model

import "time"

// EntryType is the category of a logged care event.
type EntryType string

const (
	EntryBreastLeft  EntryType = "breast_left"
	EntryBreastRight EntryType = "breast_right"
	EntryBottle      EntryType = "bottle"
	EntryDiaperWet   EntryType = "diaper_wet"
	EntryDiaperDirty EntryType = "diaper_dirty"
	EntryDiaperBoth  EntryType = "diaper_both"
	EntrySleep       EntryType = "sleep"
)

// entryLabels maps entry types to their human-readable labels.
var entryLabels = map[EntryType]string{
	EntryBreastLeft:  "Breast (left)",
	EntryBreastRight: "Breast (right)",
	EntryBottle:      "Bottle",
	EntryDiaperWet:   "Diaper (wet)",
	EntryDiaperDirty: "Diaper (dirty)",
	EntryDiaperBoth:  "Diaper (wet+dirty)",
	EntrySleep:       "Sleep",
}

// IsValid reports whether t is one of the known entry types.
func (t EntryType) IsValid() bool {
	_, ok := entryLabels[t]
	return ok
}

// IsFeeding reports whether t is a feeding type (either breast side or
// bottle). Appending a feeding entry resets the feed scheduler.
func (t EntryType) IsFeeding() bool {
	switch t {
	case EntryBreastLeft, EntryBreastRight, EntryBottle:
		return true
	}
	return false
}

// IsTimed reports whether t is logged via a start/stop timer.
func (t EntryType) IsTimed() bool {
	switch t {
	case EntryBreastLeft, EntryBreastRight, EntrySleep:
		return true
	}
	return false
}

// Label returns the human-readable label for t.
func (t EntryType) Label() string {
	if label, ok := entryLabels[t]; ok {
		return label
	}
	return string(t)
}

// LogEntry is a single logged care event. Entries are immutable after
// creation except Amount, which stays editable for bottle feeds.
type LogEntry struct {
	Id        string    `json:"id"`
	Type      EntryType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Milliseconds since epoch
	Amount    *float64  `json:"amount,omitempty"`
	Duration  *int      `json:"duration,omitempty"` // Whole minutes
	Note      string    `json:"note,omitempty"`
}

// Time returns the entry timestamp as a time.Time.
func (e LogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// SchedulePhase describes where the feed scheduler currently stands.
type SchedulePhase string

const (
	PhaseUnset    SchedulePhase = "unset"
	PhaseArmed    SchedulePhase = "armed"
	PhaseDue      SchedulePhase = "due"
	PhaseNotified SchedulePhase = "notified"
)

// ScheduleState holds the feed scheduler state. NextFeedingAt is the single
// source of truth for when to alert; LastNotifiedAt records the NextFeedingAt
// value that has already fired, guaranteeing at most one alert per scheduled
// timestamp under repeated polling. Only NextFeedingAt is persisted.
type ScheduleState struct {
	NextFeedingAt  *int64 `json:"nextFeedingAt,omitempty"`  // Milliseconds since epoch
	LastNotifiedAt *int64 `json:"lastNotifiedAt,omitempty"` // Transient
	AlertVisible   bool   `json:"alertVisible"`
}

// Phase derives the scheduler phase at the given instant.
func (s ScheduleState) Phase(now time.Time) SchedulePhase {
	if s.NextFeedingAt == nil {
		return PhaseUnset
	}
	if now.UnixMilli() < *s.NextFeedingAt {
		return PhaseArmed
	}
	if s.LastNotifiedAt != nil && *s.LastNotifiedAt == *s.NextFeedingAt {
		return PhaseNotified
	}
	return PhaseDue
}

// ActiveTimer tracks an in-progress duration-based log action between
// start and stop.
type ActiveTimer struct {
	Type      EntryType `json:"type"`
	StartTime int64     `json:"startTime"` // Milliseconds since epoch
}

// Profile holds the baby display name and an optional photo data URI.
type Profile struct {
	Name     string `json:"name"`
	PhotoURI string `json:"photoUri,omitempty"`
}
