package scheduler

import (
	"time"

	"github.com/hquan/babytrack/internal/core/constants"
)

// NextOccurrence resolves a bare wall-clock hour:minute to a concrete
// instant. A candidate more than the grace window in the past means the
// user meant tomorrow, so it rolls forward exactly one calendar day;
// anything within the window stays today even if slightly past.
func NextOccurrence(now time.Time, hour, minute int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.Sub(candidate) > constants.RollForwardGrace {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
