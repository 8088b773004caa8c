package valuation

import (
	"fmt"
	"math"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

// ComputeScorecard adjusts a peer-baseline valuation by weighted qualitative
// comparisons. Each factor is rated 0-10 against the peer average of 5; the
// weighted deviations produce a single adjustment factor applied to the
// baseline.
func ComputeScorecard(input models.ValuationInput, tables *benchmarks.Tables) (*models.MethodResult, error) {
	var violations []string
	if input.BaselineValuation <= 0 {
		violations = append(violations, "baseline valuation must be positive for scorecard")
	}
	if len(input.ScorecardFactors) < 3 {
		violations = append(violations, fmt.Sprintf("scorecard requires at least 3 weighted factors, got %d", len(input.ScorecardFactors)))
	}
	weightSum := 0.0
	for _, f := range input.ScorecardFactors {
		if f.Rating < 0 || f.Rating > 10 {
			violations = append(violations, fmt.Sprintf("factor %q rating %.1f outside 0-10", f.Name, f.Rating))
		}
		if f.Weight < 0 {
			violations = append(violations, fmt.Sprintf("factor %q has negative weight", f.Name))
		}
		weightSum += f.Weight
	}
	if len(input.ScorecardFactors) > 0 && math.Abs(weightSum-1.0) > 1e-6 {
		violations = append(violations, fmt.Sprintf("factor weights sum to %.4f, must sum to 1.0", weightSum))
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Method: models.MethodScorecard, Violations: violations}
	}

	// adjustment per factor: rating/5 - 1, i.e. [-1, +1] around peer parity.
	overallAdjustment := 0.0
	breakdown := map[string]float64{"baseline": input.BaselineValuation}
	for _, f := range input.ScorecardFactors {
		adj := f.Rating/5 - 1
		breakdown[f.Name] = f.Weight * adj
		overallAdjustment += f.Weight * adj
	}

	value := input.BaselineValuation * (1 + overallAdjustment)
	breakdown["adjustmentFactor"] = overallAdjustment

	result := &models.MethodResult{
		Method:      models.MethodScorecard,
		EquityValue: clampEquity(value),
		Breakdown:   breakdown,
		Assumptions: map[string]float64{
			"peerAverageRating": 5,
		},
		RiskFactors: map[string]float64{
			"baseline_risk":   clamp(1-math.Log10(math.Max(input.BaselineValuation, 1))/9, 0, 1),
			"adjustment_risk": clamp(math.Abs(overallAdjustment), 0, 1),
		},
	}
	result.Confidence = scorecardConfidence(input.ScorecardFactors, overallAdjustment, input.BaselineValuation)

	if overallAdjustment < -0.4 {
		result.Insights = append(result.Insights,
			"Company rates well below its peer baseline across weighted factors")
	} else if overallAdjustment > 0.4 {
		result.Insights = append(result.Insights,
			"Company rates well above its peer baseline across weighted factors")
	}

	return result, nil
}

func scorecardConfidence(factors []models.FactorRating, overallAdjustment, baseline float64) float64 {
	score := 65.0

	// Extreme net adjustment means the baseline is a poor anchor.
	if math.Abs(overallAdjustment) > 0.5 {
		score -= 15
	} else if math.Abs(overallAdjustment) > 0.3 {
		score -= 8
	}

	// Low rating variance means consistent, more trustworthy scoring.
	mean := 0.0
	for _, f := range factors {
		mean += f.Rating
	}
	mean /= float64(len(factors))
	variance := 0.0
	for _, f := range factors {
		variance += (f.Rating - mean) * (f.Rating - mean)
	}
	variance /= float64(len(factors))
	if variance < 2 {
		score += 8
	} else if variance > 8 {
		score -= 8
	}

	// Baselines far outside the typical startup range are suspect.
	if baseline < 100_000 || baseline > 1_000_000_000 {
		score -= 10
	}

	return clampConfidence(score)
}
