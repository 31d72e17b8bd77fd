package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		hour     int
		minute   int
		expected time.Time
	}{
		{
			name:     "future time today stays today",
			hour:     14,
			minute:   30,
			expected: time.Date(2026, 3, 14, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "more than grace in the past rolls to tomorrow",
			hour:     8,
			minute:   0,
			expected: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "within grace stays today even though past",
			hour:     8,
			minute:   45,
			expected: time.Date(2026, 3, 14, 8, 45, 0, 0, time.UTC),
		},
		{
			name:     "exactly at grace boundary stays today",
			hour:     8,
			minute:   30,
			expected: time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "midnight rolls forward",
			hour:     0,
			minute:   0,
			expected: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextOccurrence(now, tt.hour, tt.minute))
		})
	}
}
