package core

import "time"

// DayLayout is the wire format for request dates.
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string into a midnight-UTC time.
// Anything that does not match the exact shape (including dates with a time
// component, out-of-range days, or empty strings) reports ok=false.
// Consumers treat such dates as absent; nothing ever panics on bad input.
func ParseDay(s string) (time.Time, bool) {
	if len(s) != len(DayLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDay renders a time as its YYYY-MM-DD wire form.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// Today truncates a reference instant to its calendar day.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
