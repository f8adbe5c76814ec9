package domain

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout renders UTC instants with millisecond precision, as in
// 2024-01-15T10:30:00.000Z. Cursors, API bodies and outbox events share it.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout. Years outside
// 0000-9999 use the ISO 8601 expanded form with a sign and at least six digits
// (+010000-01-01T00:00:00.000Z), the same as JavaScript's toISOString.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	year := t.Year()
	if year >= 0 && year <= 9999 {
		return t.Format(TimestampLayout)
	}

	sign := "+"
	if year < 0 {
		sign = "-"
		year = -year
	}
	digits := strconv.Itoa(year)
	if len(digits) < 6 {
		digits = strings.Repeat("0", 6-len(digits)) + digits
	}
	return sign + digits + t.Format("-01-02T15:04:05.000Z07:00")
}

// ParseTimestamp accepts RFC 3339 with any fractional precision, the expanded
// year form FormatTimestamp emits, and bare dates taken as midnight UTC. The
// result is in UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), true
	}
	if t, ok := parseExpandedYear(raw); ok {
		return t, true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

const (
	minExpandedYearDigits = 6
	maxExpandedYearDigits = 12
	// leapPlaceholderYear stands in for the real year while time.Parse checks
	// the rest of the timestamp, so Feb 29 gets through and is checked after.
	leapPlaceholderYear = "2000"
)

func parseExpandedYear(raw string) (time.Time, bool) {
	if len(raw) < 2 || (raw[0] != '+' && raw[0] != '-') {
		return time.Time{}, false
	}
	end := strings.IndexByte(raw[1:], '-')
	if end < 0 {
		return time.Time{}, false
	}
	end++

	digits := raw[1:end]
	if len(digits) < minExpandedYearDigits || len(digits) > maxExpandedYearDigits {
		return time.Time{}, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return time.Time{}, false
		}
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return time.Time{}, false
	}
	if raw[0] == '-' {
		year = -year
	}

	t, err := time.Parse(time.RFC3339Nano, leapPlaceholderYear+raw[end:])
	if err != nil {
		return time.Time{}, false
	}
	if t.Month() == time.February && t.Day() == 29 && !isLeapYear(year) {
		return time.Time{}, false
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).UTC(), true
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
