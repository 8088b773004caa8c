package valuation

import (
	"errors"
	"math"
	"testing"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

func TestComputeVCMethod_MarketSizeOnly(t *testing.T) {
	// Pre-revenue seed company with a 500M addressable market:
	// exit revenue = 500M * 0.02 = 10M
	// exit value   = 10M * 8 (saas multiple) = 80M
	// raw post     = 80M / 10 (seed ROI) = 8M
	// rounds       = round(6 / 2.5) = 2, retention = 0.78^2 = 0.6084
	// post-money   = 8M * 0.6084 = 4.8672M
	// pre-money    = 4.8672M - 2M round = 2.8672M
	input := models.ValuationInput{
		Sector:     "saas",
		Stage:      models.StageSeed,
		MarketSize: 500_000_000,
	}
	res, err := ComputeVCMethod(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeVCMethod returned error: %v", err)
	}
	if math.Abs(res.EquityValue-2_867_200) > 1 {
		t.Errorf("Expected pre-money 2867200, got %f", res.EquityValue)
	}
	if math.Abs(res.Breakdown["dilution_retention"]-0.6084) > 1e-9 {
		t.Errorf("Expected retention 0.6084, got %f", res.Breakdown["dilution_retention"])
	}
	if res.Breakdown["future_rounds"] != 2 {
		t.Errorf("Expected 2 future rounds, got %f", res.Breakdown["future_rounds"])
	}
	if math.Abs(res.Breakdown["required_ownership"]-2_000_000/4_867_200.0) > 1e-9 {
		t.Errorf("Unexpected required ownership %f", res.Breakdown["required_ownership"])
	}
}

func TestComputeVCMethod_RevenuePathUsesProjection(t *testing.T) {
	input := models.ValuationInput{
		Sector:     "saas",
		Stage:      models.StageSeriesA,
		Revenue:    5_000_000,
		GrowthRate: 0.8,
	}
	res, err := ComputeVCMethod(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeVCMethod returned error: %v", err)
	}
	series := res.Series["projected_revenue"]
	if len(series) != 5 {
		t.Fatalf("Expected 5-year revenue series for series-a, got %d", len(series))
	}
	if res.Breakdown["exit_revenue"] != series[len(series)-1] {
		t.Errorf("Exit revenue %f should equal final projected year %f",
			res.Breakdown["exit_revenue"], series[len(series)-1])
	}
	if res.EquityValue < 0 {
		t.Errorf("Pre-money must be >= 0, got %f", res.EquityValue)
	}
}

func TestComputeVCMethod_RoundExceedsPostMoney(t *testing.T) {
	// A tiny market makes the implied post-money smaller than the assumed
	// round; pre-money floors at zero instead of going negative.
	input := models.ValuationInput{
		Sector:     "saas",
		Stage:      models.StageSeed,
		MarketSize: 10_000_000,
	}
	res, err := ComputeVCMethod(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeVCMethod returned error: %v", err)
	}
	if res.EquityValue != 0 {
		t.Errorf("Expected pre-money 0, got %f", res.EquityValue)
	}
	if res.Breakdown["required_ownership"] != 1 {
		t.Errorf("Expected required ownership clamped to 1, got %f", res.Breakdown["required_ownership"])
	}
}

func TestComputeVCMethod_Validation(t *testing.T) {
	tables := benchmarks.Default()
	cases := []struct {
		name  string
		input models.ValuationInput
	}{
		{"nothing to project", models.ValuationInput{Sector: "saas", Stage: models.StageSeed}},
		{"growth too high", models.ValuationInput{Sector: "saas", Stage: models.StageSeed, Revenue: 1e6, GrowthRate: 6}},
		{"unknown stage", models.ValuationInput{Sector: "saas", Stage: models.Stage("mezzanine"), MarketSize: 1e8}},
	}
	for _, tc := range cases {
		_, err := ComputeVCMethod(tc.input, tables)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}
