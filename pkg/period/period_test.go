package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekKeyMondayAnchor(t *testing.T) {
	// 2025-06-11 is a Wednesday; its week starts Monday 2025-06-09.
	wed := time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), WeekKey(wed))

	// A Monday maps to itself, a Sunday to the previous Monday.
	mon := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	require.Equal(t, mon, WeekKey(mon))
	sun := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	require.Equal(t, mon, WeekKey(sun))
}

func TestWeekBoundsHalfOpen(t *testing.T) {
	start, end := WeekBounds(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))
	require.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), end)
}

func TestPayDateOffset(t *testing.T) {
	end := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC), PayDate(end, 1))
	require.Equal(t, time.Date(2025, 8, 16, 0, 0, 0, 0, time.UTC), PayDate(end, 2))
	// Zero and negative offsets fall back to one month.
	require.Equal(t, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC), PayDate(end, 0))
}
