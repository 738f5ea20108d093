// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"math"
	"testing"

	"github.com/pdiddy/listing-finder/pkg/types"
)

func testCostConfig() types.CostConfig {
	return types.CostConfig{
		InterestRate:     0.065,
		DownPaymentPct:   0.20,
		LoanTermYears:    30,
		PropertyTaxRate:  0.012,
		InsuranceMonthly: 150,
		UtilitiesMonthly: 250,
		InternetMonthly:  60,
		FallbackRents:    map[string]int{"Quincy": 1_800, "Cambridge": 2_500},
		MetroRent:        1_800,
	}
}

func TestMonthlyMortgage(t *testing.T) {
	// $400k at 6.5% over 30 years: the textbook PMT is ~$2,528.27.
	got := MonthlyMortgage(400_000, 0.065, 30)
	if math.Abs(got-2528.27) > 0.5 {
		t.Fatalf("MonthlyMortgage = %v, want ≈2528.27", got)
	}
}

func TestMonthlyMortgageZeroRate(t *testing.T) {
	got := MonthlyMortgage(360_000, 0, 30)
	if math.Abs(got-1_000) > 1e-9 {
		t.Fatalf("zero-rate mortgage = %v, want 1000", got)
	}
}

func TestNetMonthlyCost(t *testing.T) {
	cfg := testCostConfig()
	got := NetMonthlyCost(500_000, 300, 1_200, cfg)

	mortgage := MonthlyMortgage(400_000, 0.065, 30)
	want := mortgage + 300 + 500_000*0.012/12 + 150 + 250 + 60 - 1_200
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("NetMonthlyCost = %v, want %v", got, want)
	}
}

func TestNetMonthlyCostMoreOffsetIsCheaper(t *testing.T) {
	cfg := testCostConfig()
	without := NetMonthlyCost(450_000, 200, 0, cfg)
	with := NetMonthlyCost(450_000, 200, 1_500, cfg)
	if with >= without {
		t.Fatalf("offset did not lower cost: %v >= %v", with, without)
	}
}

func TestRentOffset(t *testing.T) {
	cfg := testCostConfig()

	tests := []struct {
		name string
		l    types.Listing
		want int
	}{
		{"studio", types.Listing{Town: "Quincy"}, 0},
		{"one bed", types.Listing{Town: "Quincy", Beds: ptrInt(1)}, 0},
		{"provider estimate split", types.Listing{Beds: ptrInt(2), RentEstimate: 3_000}, int(1_500 * 1.05)},
		{"town fallback", types.Listing{Town: "Cambridge", Beds: ptrInt(3)}, int(2_500 * 0.65)},
		{"metro fallback", types.Listing{Town: "Elsewhere", Beds: ptrInt(2)}, int(1_800 * 0.65)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RentOffset(tt.l, cfg); got != tt.want {
				t.Errorf("RentOffset = %d, want %d", got, tt.want)
			}
		})
	}
}
