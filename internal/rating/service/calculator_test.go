package service

import (
	"testing"

	ratecarddomain "github.com/groundworklabs/groundwork/internal/ratecard/domain"
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func triple(code, company, worker, investor string) ratingdomain.RateTriple {
	return ratingdomain.RateTriple{
		Code:         code,
		Unit:         ratecarddomain.UnitLength,
		CompanyRate:  decimal.RequireFromString(company),
		WorkerRate:   decimal.RequireFromString(worker),
		InvestorRate: decimal.RequireFromString(investor),
	}
}

func TestCalculateBoreSpan(t *testing.T) {
	lines := []ratingdomain.LineInput{
		{Code: "BSPD82C", Quantity: decimal.NewFromInt(1000), Unit: ratecarddomain.UnitLength},
	}
	rates := map[string]ratingdomain.RateTriple{
		"BSPD82C": triple("BSPD82C", "0.70", "0.35", "0.05"),
	}

	result, err := Calculate(lines, rates)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	require.Equal(t, "700.00", result.CompanyTotal.StringFixed(2))
	require.Equal(t, "350.00", result.WorkerTotal.StringFixed(2))
	require.Equal(t, "50.00", result.InvestorTotal.StringFixed(2))
	require.Equal(t, "300.00", result.Margin.StringFixed(2))
	require.Equal(t, "42.86", result.MarginPercent.StringFixed(2))
}

func TestCalculateTotalsSumRoundedLines(t *testing.T) {
	// Each line rounds to 0.33; the total must be 0.66, not
	// round(0.665) of the unrounded sum.
	lines := []ratingdomain.LineInput{
		{Code: "A", Quantity: decimal.NewFromInt(1)},
		{Code: "B", Quantity: decimal.NewFromInt(1)},
	}
	rates := map[string]ratingdomain.RateTriple{
		"A": triple("A", "0.3333", "0", "0"),
		"B": triple("B", "0.3333", "0", "0"),
	}

	result, err := Calculate(lines, rates)
	require.NoError(t, err)
	require.Equal(t, "0.66", result.CompanyTotal.StringFixed(2))
}

func TestCalculateZeroCompanyTotal(t *testing.T) {
	lines := []ratingdomain.LineInput{
		{Code: "FREE", Quantity: decimal.NewFromInt(10)},
	}
	rates := map[string]ratingdomain.RateTriple{
		"FREE": triple("FREE", "0", "1.00", "0"),
	}

	result, err := Calculate(lines, rates)
	require.NoError(t, err)
	require.Equal(t, "-10.00", result.Margin.StringFixed(2))
	require.True(t, result.MarginPercent.IsZero())
}

func TestCalculateRejectsEmptyAndNegative(t *testing.T) {
	_, err := Calculate(nil, nil)
	require.ErrorIs(t, err, ratingdomain.ErrNoLineItems)

	lines := []ratingdomain.LineInput{
		{Code: "A", Quantity: decimal.NewFromInt(-1)},
	}
	_, err = Calculate(lines, map[string]ratingdomain.RateTriple{"A": triple("A", "1", "1", "1")})
	require.ErrorIs(t, err, ratingdomain.ErrNegativeQuantity)
}

func TestCalculateUnknownCodes(t *testing.T) {
	lines := []ratingdomain.LineInput{
		{Code: "KNOWN", Quantity: decimal.NewFromInt(1)},
		{Code: "MISSING1", Quantity: decimal.NewFromInt(1)},
		{Code: "MISSING2", Quantity: decimal.NewFromInt(1)},
	}
	rates := map[string]ratingdomain.RateTriple{
		"KNOWN": triple("KNOWN", "1", "1", "1"),
	}

	_, err := Calculate(lines, rates)
	var unknown *ratingdomain.UnknownRateCodeError
	require.ErrorAs(t, err, &unknown)
	require.ElementsMatch(t, []string{"MISSING1", "MISSING2"}, unknown.Codes)
}
