package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*(?:([AaPp])\.?[Mm]\.?)?\s*$`)

// ParseClock converts a clock string to minutes since midnight. Both 12-hour
// forms with an AM/PM suffix ("09:00 AM", "1:30pm") and bare 24-hour forms
// ("13:30") are accepted.
func ParseClock(raw string) (int, error) {
	m := clockRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("unable to parse clock string: %q", raw)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("unable to parse hour in %q", raw)
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("unable to parse minute in %q", raw)
	}
	if minute > 59 {
		return 0, fmt.Errorf("minute out of range in %q", raw)
	}

	switch strings.ToUpper(m[3]) {
	case "A":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hour == 12 {
			hour = 0
		}
	case "P":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, fmt.Errorf("hour out of range in %q", raw)
		}
	}

	return hour*60 + minute, nil
}

// ParseDate parses a calendar date. ISO dates ("2024-03-18") and RFC3339
// timestamps are accepted; the result is normalized to midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOnly(t), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}

// DateOnly truncates a timestamp to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MinuteOfDay returns the minutes elapsed since midnight of t's own day.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatClock renders minutes since midnight as a 12-hour clock string,
// the inverse of ParseClock for canonical inputs.
func FormatClock(minutes int) string {
	hour := minutes / 60
	minute := minutes % 60
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", display, minute, suffix)
}
