package scheduler

import (
	"strconv"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hquan/babytrack/internal/core/constants"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/storage"
	"github.com/hquan/babytrack/internal/store"
)

type recordingSink struct {
	fired []time.Time
}

func (r *recordingSink) FeedingDue(at time.Time) {
	r.fired = append(r.fired, at)
}

func newTestScheduler(t *testing.T) (*FeedScheduler, clock.FakeClock, *recordingSink, *storage.MemoryStorage) {
	t.Helper()
	clk := clock.NewFake()
	clk.Set(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	st := storage.NewMemoryStorage()
	sink := &recordingSink{}
	return NewFeedScheduler(st, clk, sink), clk, sink, st
}

func TestScheduleArms(t *testing.T) {
	s, clk, _, st := newTestScheduler(t)

	assert.Equal(t, model.PhaseUnset, s.Phase())

	at := clk.Now().Add(2 * time.Hour)
	s.Schedule(at)

	state := s.State()
	require.NotNil(t, state.NextFeedingAt)
	assert.Equal(t, at.UnixMilli(), *state.NextFeedingAt)
	assert.False(t, state.AlertVisible)
	assert.Equal(t, model.PhaseArmed, s.Phase())

	raw, ok := st.Get(storage.KeyNextFeedingAt)
	assert.True(t, ok)
	assert.Equal(t, strconv.FormatInt(at.UnixMilli(), 10), raw)
}

func TestTickFiresExactlyOncePerTimestamp(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	s.Schedule(clk.Now().Add(10 * time.Minute))
	assert.False(t, s.Tick(), "not yet due")

	clk.Add(11 * time.Minute)
	assert.True(t, s.Tick())

	state := s.State()
	assert.True(t, state.AlertVisible)
	require.NotNil(t, state.LastNotifiedAt)
	assert.Equal(t, *state.NextFeedingAt, *state.LastNotifiedAt)
	assert.Equal(t, model.PhaseNotified, s.Phase())

	// Arbitrarily many further polls stay quiet
	for i := 0; i < 50; i++ {
		clk.Add(time.Minute)
		assert.False(t, s.Tick())
	}
	assert.Len(t, sink.fired, 1)
}

func TestTickOnOverdueSchedule(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	s.Schedule(clk.Now().Add(-10 * time.Minute))
	assert.True(t, s.Tick())
	assert.True(t, s.State().AlertVisible)
	require.Len(t, sink.fired, 1)
}

func TestAdjustInverseLaw(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)

	original := clk.Now().Add(90 * time.Minute)
	s.Schedule(original)

	s.Adjust(60)
	s.Adjust(-60)

	state := s.State()
	require.NotNil(t, state.NextFeedingAt)
	assert.Equal(t, original.UnixMilli(), *state.NextFeedingAt)
	assert.False(t, state.AlertVisible)
}

func TestAdjustFromUnsetBasesOnNowPlusInterval(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)

	at := s.Adjust(15)
	expected := clk.Now().Add(constants.FeedingInterval).Add(15 * time.Minute)
	assert.Equal(t, expected.UnixMilli(), at.UnixMilli())
	assert.Equal(t, model.PhaseArmed, s.Phase())
}

func TestAdjustAfterNotifyRearms(t *testing.T) {
	s, clk, sink, _ := newTestScheduler(t)

	s.Schedule(clk.Now().Add(-time.Minute))
	require.True(t, s.Tick())

	s.Adjust(30)
	assert.Equal(t, model.PhaseArmed, s.Phase())
	assert.False(t, s.State().AlertVisible)

	clk.Add(31 * time.Minute)
	assert.True(t, s.Tick(), "new timestamp is eligible again")
	assert.Len(t, sink.fired, 2)
}

func TestDismissAlertKeepsSchedule(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)

	s.Schedule(clk.Now().Add(-time.Minute))
	require.True(t, s.Tick())

	before := *s.State().NextFeedingAt
	s.DismissAlert()

	state := s.State()
	assert.False(t, state.AlertVisible)
	assert.Equal(t, before, *state.NextFeedingAt)
	assert.Equal(t, model.PhaseNotified, s.Phase())
	assert.False(t, s.Tick(), "dismiss does not re-arm the same timestamp")
}

func TestClear(t *testing.T) {
	s, clk, _, st := newTestScheduler(t)

	s.Schedule(clk.Now().Add(time.Hour))
	s.Clear()

	assert.Equal(t, model.PhaseUnset, s.Phase())
	_, ok := st.Get(storage.KeyNextFeedingAt)
	assert.False(t, ok)
	assert.False(t, s.Tick())
}

func TestRestartWithFutureScheduleStaysArmed(t *testing.T) {
	s, clk, _, st := newTestScheduler(t)
	s.Schedule(clk.Now().Add(time.Hour))

	restarted := NewFeedScheduler(st, clk, &recordingSink{})
	assert.Equal(t, model.PhaseArmed, restarted.Phase())
	assert.False(t, restarted.Tick())
}

func TestRestartWithOverdueScheduleReAlerts(t *testing.T) {
	s, clk, _, st := newTestScheduler(t)
	s.Schedule(clk.Now().Add(time.Minute))
	clk.Add(2 * time.Minute)
	require.True(t, s.Tick())

	// Notification bookkeeping is transient, so a restart re-alerts for a
	// still-overdue persisted timestamp on its first poll
	sink := &recordingSink{}
	restarted := NewFeedScheduler(st, clk, sink)
	assert.Equal(t, model.PhaseDue, restarted.Phase())
	assert.True(t, restarted.Tick())
	assert.Len(t, sink.fired, 1)
}

func TestCorruptPersistedTimestampIsDiscarded(t *testing.T) {
	clk := clock.NewFake()
	st := storage.NewMemoryStorage()
	require.NoError(t, st.Set(storage.KeyNextFeedingAt, "not-a-number"))

	s := NewFeedScheduler(st, clk, nil)
	assert.Equal(t, model.PhaseUnset, s.Phase())
}

func TestFeedingAppendResetsSchedule(t *testing.T) {
	clk := clock.NewFake()
	clk.Set(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	st := storage.NewMemoryStorage()
	sink := &recordingSink{}

	sched := NewFeedScheduler(st, clk, sink)
	events := store.NewStore(st, clk)
	events.SetFeedingHook(sched.ResetFromFeeding)

	// Stale overdue schedule must not fire once a feeding was just logged
	sched.Schedule(clk.Now().Add(-5 * time.Minute))

	amount := 4.0
	events.Append(model.EntryBottle, &amount, nil, "")

	state := sched.State()
	require.NotNil(t, state.NextFeedingAt)
	expected := clk.Now().Add(constants.FeedingInterval)
	assert.InDelta(t, expected.UnixMilli(), *state.NextFeedingAt, 1000)
	assert.False(t, state.AlertVisible)
	assert.Equal(t, model.PhaseArmed, sched.Phase())

	assert.False(t, sched.Tick())
	assert.Empty(t, sink.fired)

	entries := events.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryBottle, entries[0].Type)
	require.NotNil(t, entries[0].Amount)
	assert.Equal(t, 4.0, *entries[0].Amount)
	assert.Nil(t, entries[0].Duration)
}
