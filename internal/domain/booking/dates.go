package booking

import (
	"fmt"
	"time"
)

// dateLayouts are the ISO 8601 forms accepted for stored and submitted dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseError reports a booking date that could not be read.
type ParseError struct {
	BookingID string
	Field     string
	Value     string
}

func (e *ParseError) Error() string {
	if e.BookingID == "" {
		return fmt.Sprintf("malformed %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("booking %s: malformed %s %q", e.BookingID, e.Field, e.Value)
}

// ParseDate parses an ISO 8601 timestamp or calendar date. Values without a
// zone are taken as UTC.
func ParseDate(field, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ParseError{Field: field, Value: value}
}

// FormatDate renders a time in the stored ISO 8601 form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
