package domain

import (
	"fmt"
	"strings"
	"time"
)

// createdAtLayouts covers the ISO-8601 shapes seen in GO exports. Offsets may be
// written +hh:mm, +hhmm or +hh; naive values and bare dates are accepted too.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseCreatedAt parses a report's created_at. The result keeps the offset written in
// the value, so Year and Month reflect the timestamp as recorded; naive values are UTC.
func ParseCreatedAt(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", value)
}
