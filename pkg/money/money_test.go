package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	require.Equal(t, "0.13", Round2(decimal.RequireFromString("0.125")).StringFixed(2))
	require.Equal(t, "-0.13", Round2(decimal.RequireFromString("-0.125")).StringFixed(2))
	require.Equal(t, "1.00", Round2(decimal.RequireFromString("1.004")).StringFixed(2))
}

func TestAmountRoundsPerLine(t *testing.T) {
	// 0.35 * 1000 is exact; 0.0333 * 100 is not.
	require.Equal(t, "350.00", Amount(decimal.RequireFromString("0.35"), decimal.NewFromInt(1000)).StringFixed(2))
	require.Equal(t, "3.33", Amount(decimal.RequireFromString("0.0333"), decimal.NewFromInt(100)).StringFixed(2))
}

func TestPercentZeroWhole(t *testing.T) {
	require.True(t, Percent(decimal.NewFromInt(50), decimal.Zero).IsZero())
	require.Equal(t, "42.86", Percent(decimal.NewFromInt(300), decimal.NewFromInt(700)).StringFixed(2))
}
