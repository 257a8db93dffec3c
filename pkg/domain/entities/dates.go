package entities

import (
	"fmt"
	"time"
)

// DateFormat is the canonical layout for dates in tabular inputs and outputs
const DateFormat = "2006-01-02"

// Interval represents the time unit for birth cohorts and delays
type Interval string

const (
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// Valid reports whether the interval is a recognized unit
func (i Interval) Valid() bool {
	return i == IntervalWeek || i == IntervalMonth
}

// Date constructs a UTC date at midnight
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AgeInMonths returns the whole calendar months elapsed from start to end
func AgeInMonths(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

// AgeInWeeks returns the whole weeks elapsed from start to end
func AgeInWeeks(start, end time.Time) int {
	days := int(end.Sub(start) / (24 * time.Hour))
	return days / 7
}

// AgeIn returns the whole elapsed units of the given interval
func AgeIn(start, end time.Time, interval Interval) (int, error) {
	switch interval {
	case IntervalMonth:
		return AgeInMonths(start, end), nil
	case IntervalWeek:
		return AgeInWeeks(start, end), nil
	default:
		return 0, NewConfigurationError("unknown interval %q", string(interval))
	}
}

// AddMonths advances a date by calendar months, clamping to the last day of
// the target month: January 31 plus one month is February 28.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddIntervals advances a date by n units of the given interval
func AddIntervals(t time.Time, n int, interval Interval) (time.Time, error) {
	switch interval {
	case IntervalMonth:
		return AddMonths(t, n), nil
	case IntervalWeek:
		return t.AddDate(0, 0, 7*n), nil
	default:
		return time.Time{}, NewConfigurationError("unknown interval %q", string(interval))
	}
}

// Epiweek returns the Sunday that starts the week containing t
func Epiweek(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

// ParseDate parses a date in the canonical layout
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
