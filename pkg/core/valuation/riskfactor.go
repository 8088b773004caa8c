package valuation

import (
	"fmt"
	"math"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

// ComputeRiskFactorSummation adjusts a baseline valuation by summing
// weighted deviations of risk ratings from neutral. Ratings run 1-5 with 3
// neutral; each step away from neutral moves the valuation by a fixed
// fraction of the baseline, scaled by the factor's normalized importance.
func ComputeRiskFactorSummation(input models.ValuationInput, tables *benchmarks.Tables) (*models.MethodResult, error) {
	var violations []string
	if input.BaselineValuation <= 0 {
		violations = append(violations, "baseline valuation must be positive for risk factor summation")
	}
	if len(input.RiskRatings) == 0 {
		violations = append(violations, "at least one risk rating is required")
	}
	totalWeight := 0.0
	for _, r := range input.RiskRatings {
		if r.Rating < 1 || r.Rating > 5 {
			violations = append(violations, fmt.Sprintf("risk %q rating %d outside 1-5", r.Name, r.Rating))
		}
		if r.Weight < 0 {
			violations = append(violations, fmt.Sprintf("risk %q has negative weight", r.Name))
		}
		totalWeight += r.Weight
	}
	if len(input.RiskRatings) > 0 && totalWeight <= 0 {
		violations = append(violations, "risk rating weights must sum to a positive value")
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Method: models.MethodRiskFactorSummation, Violations: violations}
	}

	// Weights are normalized so the maximum swing is bounded regardless of
	// how many factors the caller rates.
	step := tables.RiskStep
	totalAdjustment := 0.0
	breakdown := map[string]float64{"baseline": input.BaselineValuation}
	extremes := 0
	for _, r := range input.RiskRatings {
		weight := r.Weight / totalWeight
		adj := float64(3-r.Rating) * step * weight * input.BaselineValuation
		breakdown[r.Name] = adj
		totalAdjustment += adj
		if r.Rating == 1 || r.Rating == 5 {
			extremes++
		}
	}

	value := math.Max(0, input.BaselineValuation+totalAdjustment)
	breakdown["total_adjustment"] = totalAdjustment

	relativeAdjustment := totalAdjustment / input.BaselineValuation
	result := &models.MethodResult{
		Method:      models.MethodRiskFactorSummation,
		EquityValue: clampEquity(value),
		Breakdown:   breakdown,
		Assumptions: map[string]float64{
			"stepFraction":  step,
			"neutralRating": 3,
		},
		RiskFactors: map[string]float64{
			"adjustment_magnitude": clamp(math.Abs(relativeAdjustment), 0, 1),
			"rating_polarization":  float64(extremes) / float64(len(input.RiskRatings)),
		},
	}
	result.Confidence = riskSummationConfidence(relativeAdjustment, extremes, len(input.RiskRatings))

	if relativeAdjustment < -0.15 {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Risk profile reduces the baseline by %.0f%%", -100*relativeAdjustment))
	} else if relativeAdjustment > 0.15 {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Risk profile lifts the baseline by %.0f%%", 100*relativeAdjustment))
	}

	return result, nil
}

func riskSummationConfidence(relativeAdjustment float64, extremes, total int) float64 {
	score := 60.0

	// A large net move means the baseline and the ratings disagree badly.
	if math.Abs(relativeAdjustment) > 0.2 {
		score -= 12
	} else if math.Abs(relativeAdjustment) > 0.1 {
		score -= 6
	}

	// Ratings clustered at the extremes suggest anchored or careless scoring.
	polarization := float64(extremes) / float64(total)
	if polarization > 0.5 {
		score -= 15
	} else if polarization > 0.25 {
		score -= 7
	}

	// More rated dimensions give a fuller risk picture.
	if total >= 8 {
		score += 8
	} else if total < 5 {
		score -= 5
	}

	return clampConfidence(score)
}
