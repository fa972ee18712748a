package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWholeDaysBetween(t *testing.T) {
	base := time.Date(2026, 4, 20, 10, 0, 0, 0, MX)

	assert.Equal(t, 0, WholeDaysBetween(base, base))
	assert.Equal(t, 1, WholeDaysBetween(base.AddDate(0, 0, -1), base))
	assert.Equal(t, 10, WholeDaysBetween(base.AddDate(0, 0, -10), base))
	assert.Equal(t, -3, WholeDaysBetween(base, base.AddDate(0, 0, -3)))

	// Partial days never count: 23h apart but same calendar day distance.
	late := time.Date(2026, 4, 19, 23, 30, 0, 0, MX)
	early := time.Date(2026, 4, 20, 0, 15, 0, 0, MX)
	assert.Equal(t, 1, WholeDaysBetween(late, early))
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2026, 4, 20, 15, 45, 12, 0, MX)

	start := StartOfDay(ts)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 20, start.Day())

	end := EndOfDay(ts)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 20, end.Day())
}
