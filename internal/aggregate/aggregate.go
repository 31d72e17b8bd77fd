package aggregate

import (
	"time"

	"github.com/jmhodges/clock"

	"github.com/hquan/babytrack/internal/core/constants"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/scheduler"
	"github.com/hquan/babytrack/internal/store"
	"github.com/hquan/babytrack/internal/util"
)

const dayKeyLayout = "2006-01-02"

// NoEntriesLabel is shown while the log is still empty.
const NoEntriesLabel = "Nothing logged yet"

// DayCount is one bucket of the weekly feeding histogram.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// Aggregator derives read-only views from the event store and the
// scheduler. Nothing here is persisted.
type Aggregator struct {
	store *store.Store
	sched *scheduler.FeedScheduler
	clk   clock.Clock
}

func NewAggregator(st *store.Store, sched *scheduler.FeedScheduler, clk clock.Clock) *Aggregator {
	return &Aggregator{
		store: st,
		sched: sched,
		clk:   clk,
	}
}

// LastEntryLabel returns the human label of the most recent entry.
func (a *Aggregator) LastEntryLabel() string {
	entry, ok := a.store.Latest()
	if !ok {
		return NoEntriesLabel
	}
	return entry.Type.Label()
}

// EstimatedNextFeeding returns the explicit schedule when one exists, else
// the most recent feeding plus the standard interval. The second return is
// false when neither is available.
func (a *Aggregator) EstimatedNextFeeding() (time.Time, bool) {
	if state := a.sched.State(); state.NextFeedingAt != nil {
		return time.UnixMilli(*state.NextFeedingAt), true
	}

	for _, entry := range a.store.Entries() {
		if entry.Type.IsFeeding() {
			return entry.Time().Add(constants.FeedingInterval), true
		}
	}
	return time.Time{}, false
}

// WeeklyFeedingHistogram counts feeding entries per local calendar day for
// the trailing week, oldest day first. Days without feedings report zero.
func (a *Aggregator) WeeklyFeedingHistogram() []DayCount {
	tp := util.GetTimeProvider()
	today := tp.DayStart(a.clk.Now())

	buckets := make([]DayCount, constants.HistogramDays)
	index := make(map[string]int, constants.HistogramDays)
	for i := 0; i < constants.HistogramDays; i++ {
		day := today.AddDate(0, 0, i-constants.HistogramDays+1)
		buckets[i] = DayCount{Day: day}
		index[day.Format(dayKeyLayout)] = i
	}

	for _, entry := range a.store.Entries() {
		if !entry.Type.IsFeeding() {
			continue
		}
		key := tp.In(entry.Time()).Format(dayKeyLayout)
		if i, ok := index[key]; ok {
			buckets[i].Count++
		}
	}

	return buckets
}

// Summary is the dashboard view the UI shell renders.
type Summary struct {
	LastEntryLabel string              `json:"lastEntryLabel"`
	LastEntryAt    *int64              `json:"lastEntryAt,omitempty"`
	NextFeedingAt  *int64              `json:"nextFeedingAt,omitempty"`
	Phase          model.SchedulePhase `json:"phase"`
	AlertVisible   bool                `json:"alertVisible"`
	Histogram      []DayCount          `json:"histogram"`
}

// Summarize assembles the full derived view in one call.
func (a *Aggregator) Summarize() Summary {
	s := Summary{
		LastEntryLabel: a.LastEntryLabel(),
		Phase:          a.sched.Phase(),
		AlertVisible:   a.sched.State().AlertVisible,
		Histogram:      a.WeeklyFeedingHistogram(),
	}

	if entry, ok := a.store.Latest(); ok {
		at := entry.Timestamp
		s.LastEntryAt = &at
	}
	if at, ok := a.EstimatedNextFeeding(); ok {
		millis := at.UnixMilli()
		s.NextFeedingAt = &millis
	}
	return s
}
