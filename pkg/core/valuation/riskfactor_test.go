package valuation

import (
	"errors"
	"math"
	"testing"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

func riskInput(baseline float64, ratings []models.RiskRating) models.ValuationInput {
	return models.ValuationInput{
		Stage:             models.StageSeed,
		BaselineValuation: baseline,
		RiskRatings:       ratings,
	}
}

func TestComputeRiskFactorSummation_BalancedRatingsKeepBaseline(t *testing.T) {
	// One low-risk and one high-risk factor with equal weight cancel out;
	// the neutral factor contributes nothing regardless of weight.
	input := riskInput(1_000_000, []models.RiskRating{
		{Name: "management", Rating: 1, Weight: 1},
		{Name: "competition", Rating: 5, Weight: 1},
		{Name: "technology", Rating: 3, Weight: 2},
	})
	res, err := ComputeRiskFactorSummation(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeRiskFactorSummation returned error: %v", err)
	}
	if res.EquityValue != 1_000_000 {
		t.Errorf("Expected baseline 1000000 back, got %f", res.EquityValue)
	}
	if res.Breakdown["total_adjustment"] != 0 {
		t.Errorf("Expected zero net adjustment, got %f", res.Breakdown["total_adjustment"])
	}
}

func TestComputeRiskFactorSummation_NormalizedWeightedStep(t *testing.T) {
	// Two factors, equal weight (normalized to 0.5 each):
	// management rating 1 -> (3-1)*0.125*0.5 = +0.125 of baseline
	// technology rating 3 -> 0
	// value = 1M * 1.125 = 1.125M
	input := riskInput(1_000_000, []models.RiskRating{
		{Name: "management", Rating: 1, Weight: 1},
		{Name: "technology", Rating: 3, Weight: 1},
	})
	res, err := ComputeRiskFactorSummation(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeRiskFactorSummation returned error: %v", err)
	}
	if math.Abs(res.EquityValue-1_125_000) > 0.01 {
		t.Errorf("Expected 1125000, got %f", res.EquityValue)
	}
	if math.Abs(res.Breakdown["management"]-125_000) > 0.01 {
		t.Errorf("Expected management adjustment 125000, got %f", res.Breakdown["management"])
	}
}

func TestComputeRiskFactorSummation_FloorsAtZero(t *testing.T) {
	// Every factor at maximum risk: adjustment is bounded by the step and
	// normalized weights, and the result never goes negative.
	input := riskInput(100_000, []models.RiskRating{
		{Name: "management", Rating: 5, Weight: 1},
		{Name: "competition", Rating: 5, Weight: 1},
	})
	res, err := ComputeRiskFactorSummation(input, benchmarks.Default())
	if err != nil {
		t.Fatalf("ComputeRiskFactorSummation returned error: %v", err)
	}
	if res.EquityValue < 0 {
		t.Errorf("Equity value must be >= 0, got %f", res.EquityValue)
	}
	// (3-5)*0.125*0.5 twice = -0.25 of baseline: 75000.
	if math.Abs(res.EquityValue-75_000) > 0.01 {
		t.Errorf("Expected 75000, got %f", res.EquityValue)
	}
}

func TestComputeRiskFactorSummation_Validation(t *testing.T) {
	tables := benchmarks.Default()
	cases := []struct {
		name  string
		input models.ValuationInput
	}{
		{"zero baseline", riskInput(0, []models.RiskRating{{Name: "management", Rating: 3, Weight: 1}})},
		{"no ratings", riskInput(1_000_000, nil)},
		{"rating out of range", riskInput(1_000_000, []models.RiskRating{{Name: "management", Rating: 6, Weight: 1}})},
		{"negative weight", riskInput(1_000_000, []models.RiskRating{{Name: "management", Rating: 3, Weight: -1}})},
	}
	for _, tc := range cases {
		_, err := ComputeRiskFactorSummation(tc.input, tables)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}
