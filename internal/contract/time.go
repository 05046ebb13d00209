package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// durationRe captures "N [units]", e.g. "30 days" or "2 weeks".
var durationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseRelativeTime converts strings like "2 years ago" into a time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	default:
		return now.Add(time.Duration(-value) * time.Minute), nil
	}
}

// ParseDuration converts strings like "3 months" or "720h" into a duration.
// Go duration syntax is tried first; months are 30 days and years 365 days.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return d, nil
	}

	matches := durationRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	const day = 24 * time.Hour
	var d time.Duration
	switch matches[2] {
	case "year":
		d = time.Duration(value) * 365 * day
	case "month":
		d = time.Duration(value) * 30 * day
	case "week":
		d = time.Duration(value) * 7 * day
	case "day":
		d = time.Duration(value) * day
	case "hour":
		d = time.Duration(value) * time.Hour
	default:
		d = time.Duration(value) * time.Minute
	}
	if d <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return d, nil
}

// ParsePeriod returns a bucket period in whole seconds.
// Plain integers are read as seconds, anything else goes through ParseDuration.
func ParsePeriod(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("period must be positive (received %d)", n)
		}
		return n, nil
	}
	d, err := ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < time.Second {
		return 0, fmt.Errorf("period must be at least one second (received %s)", d)
	}
	return int64(d / time.Second), nil
}

// ParseCutoff returns the inclusion floor as epoch seconds.
// It accepts "" (no floor), epoch seconds, RFC3339, a date, or "N [units] ago".
func ParseCutoff(s string, now time.Time) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Unix(), nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return 0, fmt.Errorf("invalid cutoff %q. Expected epoch seconds, ISO8601 or 'N [units] ago'", s)
	}
	return t.Unix(), nil
}
