// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"math"

	"github.com/pdiddy/listing-finder/pkg/types"
)

// MonthlyMortgage computes the standard amortized payment (PMT) for a loan
// at the given annual rate over termYears.
func MonthlyMortgage(loan float64, annualRate float64, termYears int) float64 {
	n := float64(termYears * 12)
	if n <= 0 {
		return 0
	}
	monthly := annualRate / 12
	if monthly == 0 {
		return loan / n
	}
	f := math.Pow(1+monthly, n)
	return loan * monthly * f / (f - 1)
}

// NetMonthlyCost estimates the all-in monthly cost of owning: mortgage on
// the financed portion, recurring fee, property tax, insurance, utilities,
// and internet, minus the roommate rent offset. Negative results are
// possible and meaningful (the unit more than pays for its carry).
func NetMonthlyCost(price, fee, rentOffset int, cfg types.CostConfig) float64 {
	p := float64(price)
	loan := p * (1 - cfg.DownPaymentPct)
	mortgage := MonthlyMortgage(loan, cfg.InterestRate, cfg.LoanTermYears)
	propertyTax := p * cfg.PropertyTaxRate / 12

	total := mortgage + float64(fee) + propertyTax +
		float64(cfg.InsuranceMonthly) + float64(cfg.UtilitiesMonthly) + float64(cfg.InternetMonthly)

	return math.Round((total-float64(rentOffset))*100) / 100
}
