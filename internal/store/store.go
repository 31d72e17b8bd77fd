package store

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jmhodges/clock"

	"github.com/hquan/babytrack/internal/core/model"
	"github.com/hquan/babytrack/internal/storage"
	"github.com/hquan/babytrack/internal/util"
)

// Store is the append-only event log. Entries are kept newest-first by
// insertion order and the full sequence is written through to storage on
// every mutation.
type Store struct {
	storage storage.Storage
	clk     clock.Clock

	mu      sync.RWMutex
	entries []model.LogEntry
	lastRaw string

	// onFeeding is invoked with the append time whenever a feeding-type
	// entry is logged, while the store lock is held, so the scheduler
	// reset cannot interleave with a poll tick observing stale state.
	onFeeding func(at time.Time)
}

// NewStore loads the persisted entry sequence. Absent or corrupt storage
// yields an empty sequence, never an error.
func NewStore(st storage.Storage, clk clock.Clock) *Store {
	s := &Store{
		storage: st,
		clk:     clk,
		entries: make([]model.LogEntry, 0),
	}
	s.entries = s.load()
	return s
}

// SetFeedingHook registers the scheduler reset callback.
func (s *Store) SetFeedingHook(fn func(at time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFeeding = fn
}

func (s *Store) load() []model.LogEntry {
	raw, ok := s.storage.Get(storage.KeyEntries)
	s.lastRaw = raw
	if !ok {
		return make([]model.LogEntry, 0)
	}

	var entries []model.LogEntry
	if err := sonic.UnmarshalString(raw, &entries); err != nil {
		util.LogWarnf("Discarding corrupt entry log: %v", err)
		return make([]model.LogEntry, 0)
	}
	return entries
}

// Append creates a new entry at the current time and prepends it. A feeding
// entry additionally triggers the scheduler reset hook.
func (s *Store) Append(entryType model.EntryType, amount *float64, duration *int, note string) model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clk.Now()
	entry := model.LogEntry{
		Id:        uuid.NewString(),
		Type:      entryType,
		Timestamp: now.UnixMilli(),
		Amount:    amount,
		Duration:  duration,
		Note:      note,
	}

	s.entries = append([]model.LogEntry{entry}, s.entries...)
	s.persistLocked()

	if entryType.IsFeeding() && s.onFeeding != nil {
		s.onFeeding(now)
	}

	util.LogDebugf("Appended entry %s (%s)", entry.Id, entry.Type)
	return entry
}

// UpdateAmount replaces the amount of the entry matching id in place.
// Timestamp and position are untouched; an unknown id is a silent no-op.
func (s *Store) UpdateAmount(id string, amount float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Id == id {
			s.entries[i].Amount = &amount
			s.persistLocked()
			return true
		}
	}
	return false
}

// Remove filters the entry matching id out of the sequence. An unknown id
// is a silent no-op.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Id == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// Entries returns a copy of the full sequence, newest first.
func (s *Store) Entries() []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.LogEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Recent returns a copy of up to n newest entries.
func (s *Store) Recent(n int) []model.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}
	entries := make([]model.LogEntry, n)
	copy(entries, s.entries[:n])
	return entries
}

// Latest returns the most recent entry, if any.
func (s *Store) Latest() (model.LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return model.LogEntry{}, false
	}
	return s.entries[0], true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reload replaces the in-memory sequence with whatever storage currently
// holds. Used when the backing file changed externally.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.lastRaw
	reloaded := s.load()
	if s.lastRaw == before {
		// Our own write echoed back, nothing changed
		return
	}
	s.entries = reloaded
	util.LogInfof("Reloaded entry log from storage (%d entries)", len(s.entries))
}

func (s *Store) persistLocked() {
	raw, err := sonic.MarshalString(s.entries)
	if err != nil {
		util.LogErrorf("Failed to serialize entry log: %v", err)
		return
	}
	if err := s.storage.Set(storage.KeyEntries, raw); err != nil {
		util.LogErrorf("Failed to persist entry log: %v", err)
	}
	s.lastRaw = raw
}
