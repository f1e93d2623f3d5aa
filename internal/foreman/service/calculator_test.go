package service

import (
	"testing"

	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func entry(full, half bool, footage string) foremandomain.DailyEntry {
	return foremandomain.DailyEntry{
		FullDay:   full,
		HalfDay:   half,
		FootageFt: decimal.RequireFromString(footage),
	}
}

func TestCalculateWeekPayFullWeek(t *testing.T) {
	// Four full days, one half day, 4200 ft of conduit.
	entries := []foremandomain.DailyEntry{
		entry(true, false, "900"),
		entry(true, false, "1100"),
		entry(true, false, "800"),
		entry(true, false, "1000"),
		entry(false, true, "400"),
	}

	details := CalculateWeekPay(entries)
	require.Equal(t, 4, details.FullDays)
	require.Equal(t, 1, details.HalfDays)
	require.Equal(t, "1350.00", details.DayPay.StringFixed(2))

	require.Equal(t, "500.00", details.Tier1Feet.StringFixed(2))
	require.Equal(t, "3700.00", details.Tier2Feet.StringFixed(2))
	require.Equal(t, "1235.00", details.ConduitPay.StringFixed(2))

	require.True(t, details.BonusEligible)
	require.Equal(t, "300.00", details.BonusPay.StringFixed(2))
	require.Equal(t, "2885.00", details.TotalPay.StringFixed(2))
}

func TestCalculateWeekPayBelowTierLimit(t *testing.T) {
	details := CalculateWeekPay([]foremandomain.DailyEntry{entry(true, false, "300")})
	require.Equal(t, "300.00", details.Tier1Feet.StringFixed(2))
	require.True(t, details.Tier2Feet.IsZero())
	require.Equal(t, "75.00", details.ConduitPay.StringFixed(2))
	require.False(t, details.BonusEligible)
}

func TestCalculateWeekPayBonusBoundary(t *testing.T) {
	// Exactly at threshold the bonus pays; one foot short it does not.
	at := CalculateWeekPay([]foremandomain.DailyEntry{entry(false, false, "4000")})
	require.True(t, at.BonusEligible)
	require.Equal(t, "300.00", at.BonusPay.StringFixed(2))

	under := CalculateWeekPay([]foremandomain.DailyEntry{entry(false, false, "3999")})
	require.False(t, under.BonusEligible)
	require.True(t, under.BonusPay.IsZero())
}

func TestCalculateWeekPayConduitOnlyDay(t *testing.T) {
	// Neither day flag set: valid entry, footage still counts, no
	// day pay.
	details := CalculateWeekPay([]foremandomain.DailyEntry{entry(false, false, "600")})
	require.Zero(t, details.FullDays)
	require.Zero(t, details.HalfDays)
	require.True(t, details.DayPay.IsZero())
	// 500*0.25 + 100*0.30
	require.Equal(t, "155.00", details.ConduitPay.StringFixed(2))
	require.Equal(t, "155.00", details.TotalPay.StringFixed(2))
}

func TestCalculateWeekPayMonotonicInFootage(t *testing.T) {
	prev := decimal.Zero
	for _, footage := range []string{"0", "250", "500", "1500", "3999", "4000", "6000"} {
		details := CalculateWeekPay([]foremandomain.DailyEntry{entry(false, false, footage)})
		require.True(t, details.TotalPay.GreaterThanOrEqual(prev),
			"total pay decreased at %s ft", footage)
		prev = details.TotalPay
	}
}

func TestProgressForCapsDisplayPercent(t *testing.T) {
	percent, eligible := ProgressFor(decimal.NewFromInt(2000))
	require.Equal(t, "50.00", percent.StringFixed(2))
	require.False(t, eligible)

	percent, eligible = ProgressFor(decimal.NewFromInt(5000))
	require.Equal(t, "100.00", percent.StringFixed(2))
	require.True(t, eligible)
}
