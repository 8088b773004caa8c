package valuation

import (
	"fmt"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

// berkusFactor is one named rating on the fixed five-factor scale.
type berkusFactor struct {
	name   string
	rating float64
}

// ComputeBerkus values a pre-revenue company from five 0-10 risk-reduction
// ratings. Each rating earns a fraction of the stage-capped per-factor
// maximum; the rated sum is scaled by sector and location multipliers and
// added to the stage base value, clamped to the stage cap.
func ComputeBerkus(input models.ValuationInput, tables *benchmarks.Tables) (*models.MethodResult, error) {
	var violations []string
	if input.Revenue > tables.PreRevenueThreshold {
		violations = append(violations,
			fmt.Sprintf("revenue %.0f exceeds pre-revenue threshold %.0f; Berkus method not applicable", input.Revenue, tables.PreRevenueThreshold))
	}
	if input.BerkusRatings == nil {
		violations = append(violations, "berkus ratings are required")
	}
	stage, ok := tables.Stage(input.Stage)
	if !ok {
		violations = append(violations, fmt.Sprintf("unknown stage %q", input.Stage))
	} else if stage.BerkusFactorMax <= 0 {
		violations = append(violations, fmt.Sprintf("Berkus method not applicable for stage %s", input.Stage))
	}
	var factors []berkusFactor
	if input.BerkusRatings != nil {
		factors = berkusFactors(*input.BerkusRatings)
		for _, f := range factors {
			if f.rating < 0 || f.rating > 10 {
				violations = append(violations, fmt.Sprintf("rating %q = %.1f outside 0-10", f.name, f.rating))
			}
		}
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Method: models.MethodBerkus, Violations: violations}
	}

	sector := tables.Sector(input.Sector)
	location := tables.Location(input.Location)

	factorSum := 0.0
	breakdown := map[string]float64{"stage_base": stage.BerkusBase}
	for _, f := range factors {
		contribution := f.rating / 10 * stage.BerkusFactorMax
		breakdown[f.name] = contribution
		factorSum += contribution
	}

	// Multipliers apply to the rated sum only, so an all-zero rating set
	// still values the company at exactly the stage base.
	value := stage.BerkusBase + factorSum*sector.BerkusMultiplier*location
	capped := false
	if stage.BerkusCap > 0 && value > stage.BerkusCap {
		value = stage.BerkusCap
		capped = true
	}

	breakdown["factor_sum"] = factorSum
	breakdown["sector_multiplier"] = sector.BerkusMultiplier
	breakdown["location_multiplier"] = location

	r := *input.BerkusRatings
	result := &models.MethodResult{
		Method:      models.MethodBerkus,
		EquityValue: clampEquity(value),
		Breakdown:   breakdown,
		Assumptions: map[string]float64{
			"factorMax": stage.BerkusFactorMax,
			"stageCap":  stage.BerkusCap,
		},
		RiskFactors: map[string]float64{
			"execution_risk":  1 - r.Team/10,
			"technology_risk": 1 - r.Prototype/10,
			"market_risk":     1 - r.Rollout/10,
		},
	}
	result.Confidence = berkusConfidence(input, factors)

	if capped {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Valuation capped at the %.0f stage maximum", stage.BerkusCap))
	}
	if !input.PrototypeExists && r.Prototype > 5 {
		result.Insights = append(result.Insights,
			"Prototype rating is high but no working prototype was reported")
	}

	return result, nil
}

func berkusFactors(r models.BerkusRatings) []berkusFactor {
	return []berkusFactor{
		{"sound_idea", r.SoundIdea},
		{"prototype", r.Prototype},
		{"team", r.Team},
		{"relationships", r.Relationships},
		{"rollout", r.Rollout},
	}
}

func berkusConfidence(input models.ValuationInput, factors []berkusFactor) float64 {
	score := 55.0

	// Traction evidence raises trust in the ratings.
	if input.PrototypeExists {
		score += 8
	}
	if input.CustomerCount > 0 {
		score += 7
	}
	if input.EmployeeCount > 2 {
		score += 5
	}

	// Completeness: rated factors at zero suggest missing information.
	zeroed := 0
	for _, f := range factors {
		if f.rating == 0 {
			zeroed++
		}
	}
	score -= float64(zeroed) * 3

	// Idea-only companies are the least knowable.
	if input.Stage == models.StageIdea {
		score -= 12
	}

	return clampConfidence(score)
}
