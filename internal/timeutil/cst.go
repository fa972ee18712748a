package timeutil

import (
	"time"
)

// MX is the Mexico City location (UTC-6, the reference deployment's zone)
var MX *time.Location

func init() {
	var err error
	MX, err = time.LoadLocation("America/Mexico_City")
	if err != nil {
		// Fallback: create fixed zone if America/Mexico_City not available
		MX = time.FixedZone("CST", -6*60*60) // UTC-6
	}
}

// Now returns the current time in Mexico City time
func Now() time.Time {
	return time.Now().In(MX)
}

// ToMX converts any time to Mexico City time
func ToMX(t time.Time) time.Time {
	return t.In(MX)
}

// ParseInMX parses a time string and returns it in Mexico City time
func ParseInMX(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, MX)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartOfDay returns the start of day (00:00:00) in MX for the given time
func StartOfDay(t time.Time) time.Time {
	mx := t.In(MX)
	return time.Date(mx.Year(), mx.Month(), mx.Day(), 0, 0, 0, 0, MX)
}

// EndOfDay returns the end of day (23:59:59) in MX for the given time
func EndOfDay(t time.Time) time.Time {
	mx := t.In(MX)
	return time.Date(mx.Year(), mx.Month(), mx.Day(), 23, 59, 59, 999999999, MX)
}

// WholeDaysBetween returns the number of whole calendar days from `from` to
// `to`. Both times are truncated to their day, so partial days never count.
// Negative when `to` is before `from`.
func WholeDaysBetween(from, to time.Time) int {
	return int(StartOfDay(to).Sub(StartOfDay(from)).Hours() / 24)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
)
