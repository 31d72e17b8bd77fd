package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmhodges/clock"

	"github.com/hquan/babytrack/internal/aggregate"
	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/insight"
	"github.com/hquan/babytrack/internal/notify"
	"github.com/hquan/babytrack/internal/scheduler"
	"github.com/hquan/babytrack/internal/storage"
	"github.com/hquan/babytrack/internal/store"
	"github.com/hquan/babytrack/internal/timer"
	"github.com/hquan/babytrack/internal/util"
)

// Orchestrator wires the store, scheduler, aggregator, timers and insight
// provider together and runs the background loops.
type Orchestrator struct {
	config *Config
	clk    clock.Clock

	fileStorage *storage.FileStorage
	store       *store.Store
	scheduler   *scheduler.FeedScheduler
	aggregator  *aggregate.Aggregator
	timers      *timer.Tracker
	notifier    *notify.Notifier
	insights    insight.Provider
	slot        *InsightSlot

	watcher *store.StorageWatcher
}

// NewOrchestrator builds the component graph.
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	fileStorage, err := storage.NewFileStorage(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open data directory: %w", err)
	}

	clk := clock.New()

	notifier := notify.NewNotifier(notify.LogChannel{})
	sched := scheduler.NewFeedScheduler(fileStorage, clk, notifier)

	eventStore := store.NewStore(fileStorage, clk)
	eventStore.SetFeedingHook(sched.ResetFromFeeding)

	provider, err := insight.CreateProvider(&insight.SourceConfig{
		Source:   config.InsightSource,
		Endpoint: config.InsightEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create insight provider: %w", err)
	}

	return &Orchestrator{
		config:      config,
		clk:         clk,
		fileStorage: fileStorage,
		store:       eventStore,
		scheduler:   sched,
		aggregator:  aggregate.NewAggregator(eventStore, sched, clk),
		timers:      timer.NewTracker(eventStore, clk),
		notifier:    notifier,
		insights:    provider,
		slot:        NewInsightSlot(),
	}, nil
}

// Run starts the scheduler poll loop and the storage watcher, then blocks
// until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfof("Starting babytrack (data dir %s)", o.config.DataDir)

	watcher, err := store.NewStorageWatcher(o.fileStorage.BaseDir())
	if err != nil {
		return fmt.Errorf("failed to start storage watcher: %w", err)
	}
	o.watcher = watcher
	defer o.watcher.Close()

	go o.scheduler.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down babytrack...")
			return nil
		case event := <-o.watcher.Events():
			o.handleStorageChange(event)
		}
	}
}

// handleStorageChange reloads state rewritten by another process.
func (o *Orchestrator) handleStorageChange(event store.ChangeEvent) {
	util.LogDebugf("Storage key %s changed on disk (%s)", event.Key, event.Operation)

	if event.Key == storage.KeyEntries {
		o.fileStorage.Invalidate(storage.KeyEntries)
		o.store.Reload()
	}
}

// Store exposes the event store for the web layer.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// Scheduler exposes the feed scheduler for the web layer.
func (o *Orchestrator) Scheduler() *scheduler.FeedScheduler {
	return o.scheduler
}

// Aggregator exposes the derived views for the web layer.
func (o *Orchestrator) Aggregator() *aggregate.Aggregator {
	return o.aggregator
}

// Timers exposes the active timer tracker for the web layer.
func (o *Orchestrator) Timers() *timer.Tracker {
	return o.timers
}

// Notifier exposes the alert banner state for the web layer.
func (o *Orchestrator) Notifier() *notify.Notifier {
	return o.notifier
}

// InsightSlot exposes the current advisory insight for the web layer.
func (o *Orchestrator) InsightSlot() *InsightSlot {
	return o.slot
}

// RequestInsight fetches a fresh insight for the recent history. Failures
// are recovered into the fixed fallback triple; the display slot always
// receives the result, last delivery winning.
func (o *Orchestrator) RequestInsight(ctx context.Context) insight.Insight {
	req := insight.Request{
		BabyName: o.Profile().Name,
		Entries:  insight.Digest(o.store.Entries()),
	}

	result := insight.Fetch(ctx, o.insights, req)
	o.slot.Set(result, o.clk.Now())
	return result
}

// ParseEntry runs the provider's free-text parse. Provider failure is
// treated the same as no match.
func (o *Orchestrator) ParseEntry(ctx context.Context, text string) *insight.ParsedEntry {
	parsed, err := o.insights.ParseEntry(ctx, text)
	if err != nil {
		util.LogWarnf("Entry parse failed, treating as no match: %v", err)
		return nil
	}
	return parsed
}

// Profile reads the stored profile, falling back to the configured name.
func (o *Orchestrator) Profile() model.Profile {
	profile := model.Profile{Name: o.config.BabyName}
	if raw, ok := o.fileStorage.Get(storage.KeyProfile); ok {
		if err := sonic.UnmarshalString(raw, &profile); err != nil {
			util.LogWarnf("Discarding corrupt profile: %v", err)
		}
	}
	return profile
}

// SetProfile persists the profile, photo data URI included.
func (o *Orchestrator) SetProfile(profile model.Profile) error {
	raw, err := sonic.MarshalString(profile)
	if err != nil {
		return err
	}
	return o.fileStorage.Set(storage.KeyProfile, raw)
}

// Now returns the orchestrator clock time, for handlers that need it.
func (o *Orchestrator) Now() time.Time {
	return o.clk.Now()
}
