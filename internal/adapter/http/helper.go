package http

import "time"

// parseDay reads a YYYY-MM-DD value that already passed the isodate rule.
func parseDay(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}
