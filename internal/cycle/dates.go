package cycle

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the only accepted wire format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date")

// Clock returns the current instant. Handlers and commands inject it so the
// predictor itself never reads the system clock.
type Clock func() time.Time

// SystemClock is the production Clock.
func SystemClock() time.Time {
	return time.Now()
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, use YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly drops the clock part of t, keeping the calendar date t shows in
// its own location, and returns it as UTC midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar date of now as observed in loc.
// A nil loc means the process local zone.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return DateOnly(now.In(loc))
}

// DaysBetween returns the number of whole calendar days from "from" to "to".
// The result is negative when to precedes from. It works on Unix seconds
// because time.Duration saturates past roughly 292 years.
func DaysBetween(from, to time.Time) int {
	return int((DateOnly(to).Unix() - DateOnly(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AddDays moves a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// ResolveDate turns an optional evaluation date into a calendar date.
// An empty string means "today" according to clock in loc; anything else
// must parse as YYYY-MM-DD.
func ResolveDate(s string, clock Clock, loc *time.Location) (time.Time, error) {
	if s == "" {
		if clock == nil {
			clock = SystemClock
		}
		return Today(clock(), loc), nil
	}
	return ParseDate(s)
}

// Normalize sorts dates in place and drops repeated calendar days. Callers
// use it to establish the chronological order the Predictor expects.
func Normalize(dates []time.Time) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	out := dates[:0]
	for i, d := range dates {
		if i > 0 && DateOnly(d).Equal(DateOnly(out[len(out)-1])) {
			continue
		}
		out = append(out, d)
	}
	return out
}
