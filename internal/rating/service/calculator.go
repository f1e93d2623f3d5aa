package service

import (
	ratingdomain "github.com/groundworklabs/groundwork/internal/rating/domain"
	"github.com/groundworklabs/groundwork/pkg/money"
)

// Calculate prices each line against its resolved rate triple. Amounts
// are rounded per line, half away from zero, and totals are sums of the
// rounded lines so the stored totals always reconcile against the
// stored detail. Margin percent is zero when company total is zero.
func Calculate(lines []ratingdomain.LineInput, rates map[string]ratingdomain.RateTriple) (ratingdomain.CalculationResult, error) {
	if len(lines) == 0 {
		return ratingdomain.CalculationResult{}, ratingdomain.ErrNoLineItems
	}

	result := ratingdomain.CalculationResult{
		Lines: make([]ratingdomain.LineResult, 0, len(lines)),
	}

	missing := make([]string, 0)
	for _, line := range lines {
		if line.Quantity.IsNegative() {
			return ratingdomain.CalculationResult{}, ratingdomain.ErrNegativeQuantity
		}

		triple, ok := rates[line.Code]
		if !ok {
			missing = append(missing, line.Code)
			continue
		}

		lr := ratingdomain.LineResult{
			Code:           line.Code,
			Unit:           string(triple.Unit),
			Quantity:       line.Quantity,
			CompanyRate:    triple.CompanyRate,
			WorkerRate:     triple.WorkerRate,
			InvestorRate:   triple.InvestorRate,
			CompanyAmount:  money.Amount(triple.CompanyRate, line.Quantity),
			WorkerAmount:   money.Amount(triple.WorkerRate, line.Quantity),
			InvestorAmount: money.Amount(triple.InvestorRate, line.Quantity),
		}
		result.Lines = append(result.Lines, lr)

		result.CompanyTotal = result.CompanyTotal.Add(lr.CompanyAmount)
		result.WorkerTotal = result.WorkerTotal.Add(lr.WorkerAmount)
		result.InvestorTotal = result.InvestorTotal.Add(lr.InvestorAmount)
	}
	if len(missing) > 0 {
		return ratingdomain.CalculationResult{}, &ratingdomain.UnknownRateCodeError{Codes: missing}
	}

	result.Margin = result.CompanyTotal.Sub(result.WorkerTotal).Sub(result.InvestorTotal)
	result.MarginPercent = money.Percent(result.Margin, result.CompanyTotal)
	return result, nil
}
