package timecalc

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the wire and storage format of a work date.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire and storage format of a start or end time.
	ClockLayout = "15:04"
)

var (
	// ErrInvalidClock is returned when a time of day is not HH:MM.
	ErrInvalidClock = errors.New("time must be in HH:MM format")
	// ErrEndNotAfterStart is returned when the end time is not strictly after the start time.
	ErrEndNotAfterStart = errors.New("end time must be after start time")
)

// referenceDay is the arbitrary shared date both clock readings are placed on, so
// only the time-of-day difference matters.
var referenceDay = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var minutesPerHour = decimal.NewFromInt(60)

// ParseClock parses an HH:MM string onto the reference day.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return referenceDay.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// NormalizeClock returns s reformatted as zero-padded HH:MM.
func NormalizeClock(s string) (string, error) {
	t, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return t.Format(ClockLayout), nil
}

// HoursBetween returns (end - start) in hours, rounded half-up to 2 decimal places.
// Overnight spans are not supported: an end at or before the start is an error,
// never a clamped zero.
func HoursBetween(start, end string) (decimal.Decimal, error) {
	s, err := ParseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return decimal.Zero, err
	}
	if !e.After(s) {
		return decimal.Zero, ErrEndNotAfterStart
	}

	minutes := int64(e.Sub(s) / time.Minute)
	return decimal.NewFromInt(minutes).Div(minutesPerHour).Round(2), nil
}

// ParseDate parses a calendar date. Both YYYY-MM-DD and full RFC 3339 timestamps are
// accepted; only the date part of a timestamp is kept.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// AddDays moves t by n calendar days, keeping the wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FirstMondayOnOrAfter returns the first Monday at or after the start of t's day.
func FirstMondayOnOrAfter(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}

// FormatDate formats a date for the wire.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
