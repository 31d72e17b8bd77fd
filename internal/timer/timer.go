package timer

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jmhodges/clock"

	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/store"
	"github.com/hquan/babytrack/internal/util"
)

// Tracker manages in-progress duration-based log actions. Sessions are
// scoped per type key: starting one type never stops another, and only a
// stop of the same type closes a session.
type Tracker struct {
	store *store.Store
	clk   clock.Clock

	mu     sync.Mutex
	active map[model.EntryType]time.Time
}

func NewTracker(st *store.Store, clk clock.Clock) *Tracker {
	return &Tracker{
		store:  st,
		clk:    clk,
		active: make(map[model.EntryType]time.Time),
	}
}

// Start begins a session for the given type. A session already running for
// that type is left untouched and reported as not started.
func (t *Tracker) Start(entryType model.EntryType) (model.ActiveTimer, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if startTime, running := t.active[entryType]; running {
		return model.ActiveTimer{Type: entryType, StartTime: startTime.UnixMilli()}, false
	}

	now := t.clk.Now()
	t.active[entryType] = now
	util.LogDebugf("Started %s timer", entryType)
	return model.ActiveTimer{Type: entryType, StartTime: now.UnixMilli()}, true
}

// Stop closes the session for the given type, rounds the elapsed time to
// whole minutes and forwards the result to the event store. Stopping a type
// with no running session is a no-op.
func (t *Tracker) Stop(entryType model.EntryType) (model.LogEntry, bool) {
	t.mu.Lock()
	startTime, running := t.active[entryType]
	if !running {
		t.mu.Unlock()
		return model.LogEntry{}, false
	}
	delete(t.active, entryType)
	now := t.clk.Now()
	t.mu.Unlock()

	minutes := int(math.Round(float64(now.Sub(startTime)) / float64(time.Minute)))
	entry := t.store.Append(entryType, nil, &minutes, "")
	util.LogDebugf("Stopped %s timer after %d min", entryType, minutes)
	return entry, true
}

// Running reports whether a session is active for the given type.
func (t *Tracker) Running(entryType model.EntryType) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, running := t.active[entryType]
	return running
}

// Active returns all running sessions, ordered by type for stable output.
func (t *Tracker) Active() []model.ActiveTimer {
	t.mu.Lock()
	defer t.mu.Unlock()

	timers := make([]model.ActiveTimer, 0, len(t.active))
	for entryType, startTime := range t.active {
		timers = append(timers, model.ActiveTimer{Type: entryType, StartTime: startTime.UnixMilli()})
	}
	sort.Slice(timers, func(i, j int) bool {
		return timers[i].Type < timers[j].Type
	})
	return timers
}
