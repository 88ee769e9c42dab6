// Package civil converts between UTC instants and civil date-times expressed
// in a fixed UTC offset. The offset is configuration, not a tz database
// lookup: the target regions do not observe daylight saving, so the same
// arithmetic applies on every calendar date and the host timezone is never
// consulted.
package civil

import (
	"fmt"
	"regexp"
	"time"
)

var offsetRegex = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// Offset is a fixed UTC offset such as -03:00.
type Offset struct {
	minutes int
}

// ParseOffset parses a "+HH:MM" / "-HH:MM" offset string.
func ParseOffset(s string) (Offset, error) {
	m := offsetRegex.FindStringSubmatch(s)
	if m == nil {
		return Offset{}, fmt.Errorf("invalid UTC offset %q, expected +HH:MM or -HH:MM", s)
	}

	var hh, mm int
	fmt.Sscanf(m[2], "%d", &hh)
	fmt.Sscanf(m[3], "%d", &mm)
	if hh > 14 || mm > 59 {
		return Offset{}, fmt.Errorf("UTC offset %q out of range", s)
	}

	minutes := hh*60 + mm
	if m[1] == "-" {
		minutes = -minutes
	}
	return Offset{minutes: minutes}, nil
}

// MustOffset is ParseOffset for compile-time-known literals; panics on error.
func MustOffset(s string) Offset {
	o, err := ParseOffset(s)
	if err != nil {
		panic(err)
	}
	return o
}

func (o Offset) String() string {
	m := o.minutes
	sign := "+"
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}

// Location returns a fixed-zone location for the offset. The zone name is
// the offset string itself so formatted values stay machine-readable.
func (o Offset) Location() *time.Location {
	return time.FixedZone(o.String(), o.minutes*60)
}

// ToUTC builds the UTC instant for a civil date and wall-clock time in the
// offset's zone.
func (o Offset) ToUTC(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, o.Location()).UTC()
}

// Local returns the instant rendered in the offset's zone, for civil date
// and clock inspection.
func (o Offset) Local(t time.Time) time.Time {
	return t.In(o.Location())
}

// ISO formats the instant as a fixed-offset ISO 8601 string,
// e.g. 2025-08-15T13:00:00-03:00.
func (o Offset) ISO(t time.Time) string {
	return t.In(o.Location()).Format("2006-01-02T15:04:05-07:00")
}

// ParseClock parses a "HH:MM" wall-clock value.
func ParseClock(s string) (hour, min int, err error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("clock value %q out of range", s)
	}
	return hh, mm, nil
}

// ClockMinutes converts a "HH:MM" value to minutes since midnight.
func ClockMinutes(s string) (int, error) {
	hh, mm, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return hh*60 + mm, nil
}
