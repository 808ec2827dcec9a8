package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO date format used for every derived date
const DateLayout = "2006-01-02"

// maxRelativeQuantity keeps absurd quantities from overflowing the date math
const maxRelativeQuantity = 100000

var quantityRegex = regexp.MustCompile(`\d+`)

// NormalizeRelativeTime converts text like "3 days ago" into an approximate date relative to now
func NormalizeRelativeTime(text string) string {
	return ParseRelativeTime(text, time.Now())
}

// ParseRelativeTime converts relative text into a YYYY-MM-DD date anchored at now.
// Months count as 30 days and years as 365; an absent quantity means 1.
// Unknown units and empty text resolve to now.
func ParseRelativeTime(text string, now time.Time) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return now.Format(DateLayout)
	}

	quantity := 1
	if match := quantityRegex.FindString(text); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			quantity = n
		}
	}
	if quantity > maxRelativeQuantity {
		quantity = maxRelativeQuantity
	}

	var days int
	switch {
	case strings.Contains(text, "hour"), strings.Contains(text, "minute"):
		days = 0
	case strings.Contains(text, "day"):
		days = quantity
	case strings.Contains(text, "week"):
		days = quantity * 7
	case strings.Contains(text, "month"):
		days = quantity * 30
	case strings.Contains(text, "year"):
		days = quantity * 365
	}

	return now.AddDate(0, 0, -days).Format(DateLayout)
}
