package aggregate

import (
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hquan/babytrack/internal/core/constants"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/scheduler"
	"github.com/hquan/babytrack/internal/storage"
	"github.com/hquan/babytrack/internal/store"
	"github.com/hquan/babytrack/internal/util"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestAggregator(t *testing.T) (*Aggregator, *store.Store, *scheduler.FeedScheduler, clock.FakeClock) {
	t.Helper()
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	clk := clock.NewFake()
	clk.Set(testNow)
	st := storage.NewMemoryStorage()
	sched := scheduler.NewFeedScheduler(st, clk, nil)
	events := store.NewStore(st, clk)
	return NewAggregator(events, sched, clk), events, sched, clk
}

func TestLastEntryLabel(t *testing.T) {
	a, events, _, _ := newTestAggregator(t)

	assert.Equal(t, NoEntriesLabel, a.LastEntryLabel())

	events.Append(model.EntryDiaperBoth, nil, nil, "")
	assert.Equal(t, "Diaper (wet+dirty)", a.LastEntryLabel())

	events.Append(model.EntryBreastRight, nil, nil, "")
	assert.Equal(t, "Breast (right)", a.LastEntryLabel())
}

func TestEstimatedNextFeedingPrefersExplicitSchedule(t *testing.T) {
	a, events, sched, clk := newTestAggregator(t)

	events.Append(model.EntryBottle, nil, nil, "")
	explicit := clk.Now().Add(45 * time.Minute)
	sched.Schedule(explicit)

	at, ok := a.EstimatedNextFeeding()
	require.True(t, ok)
	assert.Equal(t, explicit.UnixMilli(), at.UnixMilli())
}

func TestEstimatedNextFeedingFallsBackToLastFeeding(t *testing.T) {
	a, events, _, clk := newTestAggregator(t)

	feedTime := clk.Now()
	events.Append(model.EntryBreastLeft, nil, nil, "")
	clk.Add(20 * time.Minute)
	events.Append(model.EntryDiaperWet, nil, nil, "") // Not a feeding, must be skipped

	at, ok := a.EstimatedNextFeeding()
	require.True(t, ok)
	assert.Equal(t, feedTime.Add(constants.FeedingInterval).UnixMilli(), at.UnixMilli())
}

func TestEstimatedNextFeedingUnknownWhenNoFeedings(t *testing.T) {
	a, events, _, _ := newTestAggregator(t)

	events.Append(model.EntrySleep, nil, nil, "")

	_, ok := a.EstimatedNextFeeding()
	assert.False(t, ok)
}

func TestWeeklyFeedingHistogram(t *testing.T) {
	a, events, _, clk := newTestAggregator(t)

	// Two feedings today, one three days ago, one outside the window
	events.Append(model.EntryBottle, nil, nil, "")
	events.Append(model.EntryBreastLeft, nil, nil, "")
	events.Append(model.EntryDiaperDirty, nil, nil, "") // Never counted

	clk.Set(testNow.AddDate(0, 0, -3))
	events.Append(model.EntryBreastRight, nil, nil, "")

	clk.Set(testNow.AddDate(0, 0, -8))
	events.Append(model.EntryBottle, nil, nil, "")

	clk.Set(testNow)
	histogram := a.WeeklyFeedingHistogram()
	require.Len(t, histogram, constants.HistogramDays)

	// Oldest day first, today last
	assert.Equal(t, testNow.AddDate(0, 0, -6).Truncate(24*time.Hour).Format("2006-01-02"),
		histogram[0].Day.Format("2006-01-02"))
	assert.Equal(t, "2026-03-14", histogram[6].Day.Format("2006-01-02"))

	counts := make([]int, 0, len(histogram))
	for _, bucket := range histogram {
		counts = append(counts, bucket.Count)
	}
	assert.Equal(t, []int{0, 0, 0, 1, 0, 0, 2}, counts)
}

func TestSummarize(t *testing.T) {
	a, events, sched, clk := newTestAggregator(t)

	amount := 4.0
	events.Append(model.EntryBottle, &amount, nil, "")
	sched.Schedule(clk.Now().Add(time.Hour))

	summary := a.Summarize()
	assert.Equal(t, "Bottle", summary.LastEntryLabel)
	require.NotNil(t, summary.LastEntryAt)
	require.NotNil(t, summary.NextFeedingAt)
	assert.Equal(t, model.PhaseArmed, summary.Phase)
	assert.False(t, summary.AlertVisible)
	assert.Len(t, summary.Histogram, constants.HistogramDays)
}
