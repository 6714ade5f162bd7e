package normalize

import (
	"strings"
	"time"
)

// Date layouts attempted in order. The ledger store mixes "D Mon YYYY"
// dates with ISO dates and timestamps; a handful of generic layouts
// covers occasional stragglers.
var (
	dayMonthYearLayouts = []string{"2 Jan 2006", "02 Jan 2006"}

	fallbackLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"02/01/2006",
		"Jan 2, 2006",
	}
)

// ParseDate parses a ledger date string. The boolean is false when no
// known layout matches; callers must exclude such records from any
// time-based calculation while retaining them in amount totals.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dayMonthYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// ISO date or datetime prefix.
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns whole days elapsed from one instant to another,
// truncated toward zero.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// MonthKey formats a date as its YYYY-MM period key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
