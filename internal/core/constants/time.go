package constants

import "time"

const (
	// Feeding cadence
	FeedingInterval       = 3 * time.Hour
	FeedingIntervalMillis = int64(3 * 3600 * 1000)

	// Scheduler poll cadence
	SchedulePollInterval = 5 * time.Second

	// Manual time-of-day entries further in the past than this grace
	// window roll forward one calendar day
	RollForwardGrace = 30 * time.Minute

	// Insight requests carry at most this many recent entries
	MaxInsightEntries = 20

	// Trailing window of the feeding histogram, in local calendar days
	HistogramDays = 7
)
