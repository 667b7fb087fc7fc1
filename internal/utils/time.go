package utils

import (
	"fmt"
	"time"
)

// DateFormat is the canonical day-string format used for challenge due days.
const DateFormat = "2006-01-02"

// LoadLocation loads a timezone location from an IANA timezone name.
// An empty name means UTC: due-day comparisons must not depend on wherever
// the server process happens to run.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(timezone)
}

// DayInTimezone truncates t to a calendar day string (YYYY-MM-DD) in the
// given timezone.
func DayInTimezone(t time.Time, timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return t.In(loc).Format(DateFormat), nil
}

// NextDay returns the day string one calendar day after day.
func NextDay(day string) (string, error) {
	t, err := time.Parse(DateFormat, day)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t.AddDate(0, 0, 1).Format(DateFormat), nil
}

// ParseDay parses a YYYY-MM-DD day string at midnight UTC.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DateFormat, day)
}
