package meetings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindowExplicitMonth(t *testing.T) {
	now := time.Date(2025, 3, 9, 18, 30, 0, 0, time.UTC)

	start, end := MonthWindow(now, "2025-10")
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthWindowDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	start, end := MonthWindow(now, "")
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthWindowYearRollover(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	start, end := MonthWindow(now, "2025-12")
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestMonthWindowNonUTCReference(t *testing.T) {
	// 23:30 on Jan 31 in UTC-5 is already February in UTC.
	est := time.FixedZone("EST", -5*3600)
	now := time.Date(2025, 1, 31, 23, 30, 0, 0, est)

	start, _ := MonthWindow(now, "")
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestMonthWindowMalformedSelectorFallsBack(t *testing.T) {
	now := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)

	start, end := MonthWindow(now, "october")
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestInWindowHalfOpenBoundary(t *testing.T) {
	start := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, InWindow(ptrTime(start), start, end), "monthStart is included")
	assert.False(t, InWindow(ptrTime(end), start, end), "nextMonthStart is excluded")
	assert.True(t, InWindow(ptrTime(end.Add(-time.Second)), start, end))
	assert.False(t, InWindow(nil, start, end))
}
