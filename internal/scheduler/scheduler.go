package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jmhodges/clock"

	"github.com/hquan/babytrack/internal/core/constants"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/storage"
	"github.com/hquan/babytrack/internal/util"
)

// AlertSink receives the alert side effect when a scheduled feeding
// comes due.
type AlertSink interface {
	FeedingDue(at time.Time)
}

// FeedScheduler owns the next-feeding timestamp and raises at most one
// alert per scheduled value. Only the timestamp itself is persisted;
// notification bookkeeping is process-local, so a restart re-arms
// eligibility and an already-overdue persisted schedule re-alerts on the
// first poll tick.
type FeedScheduler struct {
	storage storage.Storage
	clk     clock.Clock
	sink    AlertSink

	mu    sync.Mutex
	state model.ScheduleState
}

// NewFeedScheduler restores any persisted next-feeding timestamp.
func NewFeedScheduler(st storage.Storage, clk clock.Clock, sink AlertSink) *FeedScheduler {
	s := &FeedScheduler{
		storage: st,
		clk:     clk,
		sink:    sink,
	}

	if raw, ok := st.Get(storage.KeyNextFeedingAt); ok {
		if at, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.state.NextFeedingAt = &at
		} else {
			util.LogWarnf("Discarding corrupt next-feeding timestamp %q: %v", raw, err)
		}
	}

	return s
}

// State returns a copy of the current schedule state.
func (s *FeedScheduler) State() model.ScheduleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase returns the derived scheduler phase at the current time.
func (s *FeedScheduler) Phase() model.SchedulePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase(s.clk.Now())
}

// Schedule arms the scheduler for the given instant and hides any
// pending alert.
func (s *FeedScheduler) Schedule(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(at)
}

// ScheduleClockTime arms the scheduler for the next occurrence of the given
// wall-clock hour and minute.
func (s *FeedScheduler) ScheduleClockTime(hour, minute int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := NextOccurrence(s.clk.Now().In(util.GetTimeProvider().Location()), hour, minute)
	s.scheduleLocked(at)
	return at
}

// Adjust shifts the schedule by deltaMinutes. From Unset the base is
// now plus the standard feeding interval.
func (s *FeedScheduler) Adjust(deltaMinutes int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.clk.Now().Add(constants.FeedingInterval)
	if s.state.NextFeedingAt != nil {
		base = time.UnixMilli(*s.state.NextFeedingAt)
	}

	at := base.Add(time.Duration(deltaMinutes) * time.Minute)
	s.scheduleLocked(at)
	return at
}

// ResetFromFeeding reschedules to the feeding time plus the standard
// interval. Called by the event store whenever a feeding entry is logged.
func (s *FeedScheduler) ResetFromFeeding(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(at.Add(constants.FeedingInterval))
}

// Clear drops the schedule entirely.
func (s *FeedScheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.NextFeedingAt = nil
	s.state.AlertVisible = false
	if err := s.storage.Delete(storage.KeyNextFeedingAt); err != nil {
		util.LogErrorf("Failed to clear persisted schedule: %v", err)
	}
}

// DismissAlert hides the alert banner without touching the schedule.
// The alert for this timestamp will not fire again.
func (s *FeedScheduler) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AlertVisible = false
}

// Tick runs one poll check. It transitions Due to Notified and emits the
// alert side effect exactly once per distinct scheduled timestamp, no
// matter how often it is called afterwards.
func (s *FeedScheduler) Tick() bool {
	s.mu.Lock()

	next := s.state.NextFeedingAt
	if next == nil {
		s.mu.Unlock()
		return false
	}

	now := s.clk.Now()
	if now.UnixMilli() < *next {
		s.mu.Unlock()
		return false
	}
	if s.state.LastNotifiedAt != nil && *s.state.LastNotifiedAt == *next {
		s.mu.Unlock()
		return false
	}

	notified := *next
	s.state.LastNotifiedAt = &notified
	s.state.AlertVisible = true
	s.mu.Unlock()

	util.LogInfof("Feeding due at %s, raising alert", time.UnixMilli(notified).Format("15:04"))
	if s.sink != nil {
		s.sink.FeedingDue(time.UnixMilli(notified))
	}
	return true
}

// Run polls until the context is cancelled.
func (s *FeedScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.SchedulePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *FeedScheduler) scheduleLocked(at time.Time) {
	millis := at.UnixMilli()
	s.state.NextFeedingAt = &millis
	s.state.AlertVisible = false

	if err := s.storage.Set(storage.KeyNextFeedingAt, strconv.FormatInt(millis, 10)); err != nil {
		util.LogErrorf("Failed to persist schedule: %v", err)
	}
}
