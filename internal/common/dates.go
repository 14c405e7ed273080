// -----------------------------------------------------------------------
// Dates - Zone-aware date keys and scheduling boundary math
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateKeyFormat is the calendar date layout used in generation keys.
const DateKeyFormat = "2006-01-02"

// DateKeyIn returns the calendar date of t in the given zone, formatted for
// use in a generation key. All idempotency date computation must go through
// the job's configured zone, never host local time, so a day is neither
// skipped nor duplicated around zone transitions.
func DateKeyIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyFormat)
}

// ParseBoundary parses an "HH:MM" wall-clock boundary into hour and minute.
func ParseBoundary(boundary string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(boundary), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("boundary must be HH:MM, got %q", boundary)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("boundary hour out of range in %q", boundary)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("boundary minute out of range in %q", boundary)
	}
	return hour, minute, nil
}

// NextBoundary returns the next occurrence of the HH:MM boundary in loc at or
// after now. Used for status reporting; the cron scheduler owns actual firing.
func NextBoundary(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
