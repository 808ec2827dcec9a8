package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"days", "3 days ago", "2026-03-12"},
		{"weeks", "2 weeks ago", "2026-03-01"},
		{"one month is thirty days", "1 month ago", "2026-02-13"},
		{"months", "2 months ago", "2026-01-14"},
		{"year is 365 days", "1 year ago", "2025-03-15"},
		{"empty", "", "2026-03-15"},
		{"minutes", "5 minutes ago", "2026-03-15"},
		{"hours", "23 hours ago", "2026-03-15"},
		{"missing quantity", "a week ago", "2026-03-08"},
		{"unknown unit", "just now", "2026-03-15"},
		{"mixed case and prefix", "Reposted 4 Days ago", "2026-03-11"},
		{"first number wins", "2 days ago · 65 applicants", "2026-03-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRelativeTime(tt.text, now))
		})
	}
}

func TestParseRelativeTimeClampsHugeQuantities(t *testing.T) {
	now := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	got := ParseRelativeTime("99999999999999999999 years ago", now)
	// overflowing quantities fall back to 1
	assert.Equal(t, "2025-03-15", got)
}

func TestNormalizeRelativeTimeUsesToday(t *testing.T) {
	assert.Equal(t, time.Now().Format(DateLayout), NormalizeRelativeTime(""))
}
