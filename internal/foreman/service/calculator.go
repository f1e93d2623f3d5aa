package service

import (
	"github.com/shopspring/decimal"

	foremandomain "github.com/groundworklabs/groundwork/internal/foreman/domain"
	"github.com/groundworklabs/groundwork/pkg/money"
)

// CalculateWeekPay applies the foreman formula to one week of entries:
// day pay, tiered conduit pay, then the flat weekly volume bonus.
func CalculateWeekPay(entries []foremandomain.DailyEntry) foremandomain.PayDetails {
	details := foremandomain.PayDetails{
		BonusThreshold: foremandomain.BonusThresholdFt,
	}

	footage := decimal.Zero
	for _, entry := range entries {
		if entry.FullDay {
			details.FullDays++
		} else if entry.HalfDay {
			details.HalfDays++
		}
		footage = footage.Add(entry.FootageFt)
	}
	details.FootageFt = footage

	details.DayPay = foremandomain.FullDayRate.Mul(decimal.NewFromInt(int64(details.FullDays))).
		Add(foremandomain.HalfDayRate.Mul(decimal.NewFromInt(int64(details.HalfDays))))

	details.Tier1Feet = decimal.Min(footage, foremandomain.Tier1LimitFt)
	details.Tier2Feet = decimal.Max(footage.Sub(foremandomain.Tier1LimitFt), decimal.Zero)
	details.ConduitPay = money.Round2(
		details.Tier1Feet.Mul(foremandomain.Tier1Rate).
			Add(details.Tier2Feet.Mul(foremandomain.Tier2Rate)),
	)

	details.BonusEligible = footage.GreaterThanOrEqual(foremandomain.BonusThresholdFt)
	if details.BonusEligible {
		details.BonusPay = foremandomain.BonusAmount
	} else {
		details.BonusPay = decimal.Zero
	}

	details.TotalPay = money.Round2(details.DayPay.Add(details.ConduitPay).Add(details.BonusPay))
	return details
}

// ProgressFor projects the bonus state from a week's footage.
func ProgressFor(footage decimal.Decimal) (percent decimal.Decimal, eligible bool) {
	eligible = footage.GreaterThanOrEqual(foremandomain.BonusThresholdFt)
	percent = money.Percent(footage, foremandomain.BonusThresholdFt)
	hundred := decimal.NewFromInt(100)
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	return percent, eligible
}
