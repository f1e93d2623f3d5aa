// Package money holds the monetary rounding rules shared by every
// calculation path. All amounts are rounded to 2 decimals, half away
// from zero, at the line level; totals are sums of rounded lines.
package money

import "github.com/shopspring/decimal"

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Amount multiplies rate by quantity and rounds the result.
func Amount(rate, qty decimal.Decimal) decimal.Decimal {
	return Round2(rate.Mul(qty))
}

// Percent returns part/whole*100 rounded to 2 decimals, or zero when
// whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return Round2(part.Div(whole).Mul(decimal.NewFromInt(100)))
}
