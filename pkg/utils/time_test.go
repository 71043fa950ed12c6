package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wardenbot/warden/pkg/utils"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "seconds only",
			duration: 42 * time.Second,
			expected: "42s",
		},
		{
			name:     "minutes and seconds",
			duration: 3*time.Minute + 12*time.Second,
			expected: "3m12s",
		},
		{
			name:     "hours and minutes",
			duration: 2*time.Hour + 5*time.Minute,
			expected: "2h5m",
		},
		{
			name:     "days and hours",
			duration: 28 * time.Hour,
			expected: "1d4h",
		},
		{
			name:     "zero",
			duration: 0,
			expected: "0s",
		},
		{
			name:     "negative clamps to zero",
			duration: -5 * time.Second,
			expected: "0s",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, utils.FormatDuration(tt.duration))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "<t:1700000000:F> (<t:1700000000:R>)", utils.FormatTimestamp(ts))
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{
			name:     "under limit unchanged",
			input:    "short",
			limit:    10,
			expected: "short",
		},
		{
			name:     "exactly at limit unchanged",
			input:    "exact",
			limit:    5,
			expected: "exact",
		},
		{
			name:     "over limit gets ellipsis",
			input:    "a longer confession text",
			limit:    10,
			expected: "a longe...",
		},
		{
			name:     "trailing space trimmed before ellipsis",
			input:    "one two three",
			limit:    7,
			expected: "one...",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, utils.TruncateString(tt.input, tt.limit))
		})
	}
}
