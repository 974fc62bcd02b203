package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2026-03-14", DayKey(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-03-14", DayKey(time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)))

	// Local times convert to UTC before keying.
	ist := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, "2026-03-13", DayKey(time.Date(2026, 3, 14, 1, 0, 0, 0, ist)))
}

func TestNextReset(t *testing.T) {
	midnight := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, midnight, NextReset(time.Date(2026, 3, 14, 0, 0, 0, 1, time.UTC)))
	assert.Equal(t, midnight, NextReset(time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)))

	// Strictly after: exactly midnight rolls to the next one.
	assert.Equal(t, midnight.AddDate(0, 0, 1), NextReset(midnight))
}

func TestNextReset_MonthBoundary(t *testing.T) {
	got := NextReset(time.Date(2026, 1, 31, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)
}
