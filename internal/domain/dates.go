package domain

import (
	"strings"
	"time"
)

// DateFormat is the storage and wire format for calendar dates.
const DateFormat = "2006-01-02"

// NormalizeDate truncates t to midnight UTC of its calendar day.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a normalized date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC date.
func Today() time.Time {
	return NormalizeDate(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD string. Malformed input is a ValidationError.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, NewValidationError(field, "date is required")
	}
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return time.Time{}, NewValidationError(field, "malformed date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(NormalizeDate(b).Sub(NormalizeDate(a)).Hours() / 24)
}
