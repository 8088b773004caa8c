package valuation

import (
	"errors"
	"math"
	"testing"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

func peersWithMultiples(multiples ...float64) []models.ComparableCompany {
	peers := make([]models.ComparableCompany, len(multiples))
	names := []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}
	for i, m := range multiples {
		peers[i] = models.ComparableCompany{Name: names[i], Sector: "saas", RevenueMultiple: m}
	}
	return peers
}

func TestComputeComparables_MedianRevenueMultiple(t *testing.T) {
	// Unprofitable company: EBITDA blend is skipped, no growth data, so
	// value = revenue * median multiple = 10M * 6 = 60M.
	input := models.ValuationInput{
		Sector:      "saas",
		Stage:       models.StageSeriesA,
		Revenue:     10_000_000,
		EBITDA:      -1_000_000,
		Comparables: peersWithMultiples(4, 6, 8),
	}
	res, err := ComputeComparables(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeComparables returned error: %v", err)
	}
	if math.Abs(res.EquityValue-60_000_000) > 0.01 {
		t.Errorf("Expected 60000000, got %f", res.EquityValue)
	}
	if res.Breakdown["ebitda_weight"] != 0 {
		t.Errorf("Expected zero EBITDA weight for unprofitable company, got %f", res.Breakdown["ebitda_weight"])
	}
}

func TestComputeComparables_EvenCountMedian(t *testing.T) {
	// Median of [4,6,8,10] is 7.
	input := models.ValuationInput{
		Sector:      "saas",
		Revenue:     10_000_000,
		Comparables: peersWithMultiples(4, 6, 8, 10),
	}
	res, err := ComputeComparables(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeComparables returned error: %v", err)
	}
	if math.Abs(res.Breakdown["median_revenue_multiple"]-7) > 1e-9 {
		t.Errorf("Expected median multiple 7, got %f", res.Breakdown["median_revenue_multiple"])
	}
}

func TestComputeComparables_GrowthAdjustmentClamped(t *testing.T) {
	// Company grows 400%, peers grow 10%: raw ratio (1+4)/(1+0.1) = 4.55
	// clamps at 2.0.
	peers := peersWithMultiples(6, 6, 6)
	for i := range peers {
		peers[i].GrowthRate = 0.1
	}
	input := models.ValuationInput{
		Sector:      "saas",
		Revenue:     10_000_000,
		GrowthRate:  4.0,
		Comparables: peers,
	}
	res, err := ComputeComparables(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeComparables returned error: %v", err)
	}
	if res.Breakdown["growth_adjustment"] != 2.0 {
		t.Errorf("Expected growth adjustment capped at 2.0, got %f", res.Breakdown["growth_adjustment"])
	}
	if math.Abs(res.EquityValue-120_000_000) > 0.01 {
		t.Errorf("Expected 120000000, got %f", res.EquityValue)
	}
}

func TestComputeComparables_NetDebtAndCash(t *testing.T) {
	input := models.ValuationInput{
		Sector:      "saas",
		Revenue:     10_000_000,
		NetDebt:     5_000_000,
		CashBalance: 2_000_000,
		Comparables: peersWithMultiples(6, 6, 6),
	}
	res, err := ComputeComparables(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeComparables returned error: %v", err)
	}
	// EV 60M - 5M debt + 2M cash = 57M.
	if math.Abs(res.EquityValue-57_000_000) > 0.01 {
		t.Errorf("Expected 57000000, got %f", res.EquityValue)
	}
}

func TestComputeComparables_SectorFallback(t *testing.T) {
	peers := []models.ComparableCompany{
		{Name: "FinPeer", Sector: "fintech", RevenueMultiple: 5},
		{Name: "BioPeer", Sector: "biotech", RevenueMultiple: 7},
	}
	input := models.ValuationInput{
		Sector:      "saas",
		Revenue:     10_000_000,
		Comparables: peers,
	}
	res, err := ComputeComparables(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeComparables returned error: %v", err)
	}
	// No sector match: full set is used and flagged in the insights.
	if res.Breakdown["comparable_count"] != 2 {
		t.Errorf("Expected fallback to full peer set, got count %f", res.Breakdown["comparable_count"])
	}
	if len(res.Insights) == 0 {
		t.Error("Expected an insight about the sector fallback")
	}
}

func TestComputeComparables_Validation(t *testing.T) {
	tables := benchmarks.Default()
	cases := []struct {
		name  string
		input models.ValuationInput
	}{
		{"zero revenue", models.ValuationInput{Sector: "saas", Comparables: peersWithMultiples(6)}},
		{"no comparables", models.ValuationInput{Sector: "saas", Revenue: 1e6}},
		{"no usable multiples", models.ValuationInput{
			Sector:  "saas",
			Revenue: 1e6,
			Comparables: []models.ComparableCompany{
				{Name: "Alpha", Sector: "saas", RevenueMultiple: 0},
			},
		}},
	}
	for _, tc := range cases {
		_, err := ComputeComparables(tc.input, tables)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}
