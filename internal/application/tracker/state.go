package tracker

import (
	"sync"
	"time"

	"github.com/hquan/babytrack/internal/insight"
)

// InsightSlot holds the current advisory insight for display. Concurrent
// fetches are not deduplicated; whichever delivery resolves last wins,
// which is acceptable because insights are advisory, not authoritative.
type InsightSlot struct {
	mu        sync.RWMutex
	current   insight.Insight
	updatedAt time.Time
	has       bool
}

func NewInsightSlot() *InsightSlot {
	return &InsightSlot{}
}

// Set replaces the displayed insight.
func (s *InsightSlot) Set(i insight.Insight, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = i
	s.updatedAt = at
	s.has = true
}

// Get returns the displayed insight and whether one has been delivered.
func (s *InsightSlot) Get() (insight.Insight, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.updatedAt, s.has
}
