package valuation

import (
	"fmt"
	"math"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

// Assumed share of the addressable market captured by exit when no revenue
// history exists to project from.
const assumedMarketCapture = 0.02

// ComputeVCMethod applies the venture-capital method: project revenue to a
// stage-dependent exit year, value the exit with a sector multiple, discount
// back through the investor's target ROI, and adjust for dilution from the
// rounds expected before exit.
func ComputeVCMethod(input models.ValuationInput, tables *benchmarks.Tables) (*models.MethodResult, error) {
	var violations []string
	hasRevenuePath := input.Revenue > 0 && input.GrowthRate > 0
	if !hasRevenuePath && input.MarketSize <= 0 {
		violations = append(violations, "VC method requires either revenue with growth rate, or market size")
	}
	if hasRevenuePath && input.GrowthRate > tables.MaxGrowthRate {
		violations = append(violations, fmt.Sprintf("growth rate %.2f exceeds maximum %.2f", input.GrowthRate, tables.MaxGrowthRate))
	}
	stage, ok := tables.Stage(input.Stage)
	if !ok {
		violations = append(violations, fmt.Sprintf("unknown stage %q", input.Stage))
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Method: models.MethodVCMethod, Violations: violations}
	}

	sector := tables.Sector(input.Sector)
	years := stage.YearsToExit

	// Exit-year revenue: decaying-growth projection when revenue exists,
	// otherwise an assumed capture of the addressable market.
	var exitRevenue float64
	var revenueSeries []float64
	if hasRevenuePath {
		revenueSeries = ProjectRevenue(input.Revenue, input.GrowthRate, tables.GrowthDecay, sector.TerminalGrowth, years)
		exitRevenue = revenueSeries[years-1]
	} else {
		exitRevenue = input.MarketSize * assumedMarketCapture
	}

	exitValue := exitRevenue * sector.RevenueExitMultiple
	rawPostMoney := exitValue / stage.TargetROI

	// Future rounds dilute today's investors; roughly one round every
	// 2.5 years until exit.
	rounds := int(math.Round(float64(years) / 2.5))
	if rounds < 1 {
		rounds = 1
	}
	retention := math.Pow(1-tables.DilutionPerRound, float64(rounds))
	postMoney := rawPostMoney * retention

	preMoney := math.Max(0, postMoney-stage.AssumedRoundSize)
	requiredOwnership := 1.0
	if postMoney > 0 {
		requiredOwnership = clamp(stage.AssumedRoundSize/postMoney, 0, 1)
	}
	if err := checkFinite(models.MethodVCMethod, "pre-money valuation", preMoney); err != nil {
		return nil, err
	}

	result := &models.MethodResult{
		Method:      models.MethodVCMethod,
		EquityValue: clampEquity(preMoney),
		Breakdown: map[string]float64{
			"exit_revenue":       exitRevenue,
			"exit_value":         exitValue,
			"raw_post_money":     rawPostMoney,
			"post_money":         postMoney,
			"pre_money":          preMoney,
			"required_ownership": requiredOwnership,
			"dilution_retention": retention,
			"future_rounds":      float64(rounds),
		},
		Assumptions: map[string]float64{
			"yearsToExit":      float64(years),
			"targetROI":        stage.TargetROI,
			"exitMultiple":     sector.RevenueExitMultiple,
			"dilutionPerRound": tables.DilutionPerRound,
			"assumedRoundSize": stage.AssumedRoundSize,
		},
		RiskFactors: vcRiskFactors(input, exitRevenue),
	}
	if revenueSeries != nil {
		result.Series = map[string][]float64{"projected_revenue": revenueSeries}
	}
	result.Confidence = vcConfidence(input, exitRevenue, hasRevenuePath)

	if input.MarketSize > 0 && exitRevenue > 0.5*input.MarketSize {
		result.Insights = append(result.Insights,
			"Projected exit revenue exceeds half the stated market size; exit assumptions look aggressive")
	}
	if !hasRevenuePath {
		result.Insights = append(result.Insights,
			fmt.Sprintf("No revenue history; exit revenue assumes %.0f%% market capture", 100*assumedMarketCapture))
	}
	if postMoney > 0 && preMoney == 0 {
		result.Insights = append(result.Insights,
			"Assumed round size exceeds the implied post-money valuation")
	}

	return result, nil
}

func vcConfidence(input models.ValuationInput, exitRevenue float64, hasRevenuePath bool) float64 {
	score := 55.0

	// Revenue magnitude anchors the projection.
	switch {
	case input.Revenue >= 10_000_000:
		score += 12
	case input.Revenue >= 1_000_000:
		score += 6
	case !hasRevenuePath:
		score -= 12
	}

	// Growth strength supports a venture-scale exit.
	if input.GrowthRate > 0.5 {
		score += 5
	}

	// Stage maturity shortens the projection horizon.
	switch input.Stage {
	case models.StageSeriesA, models.StageSeriesB, models.StageGrowth:
		score += 8
	case models.StageSeed:
		score += 2
	default:
		score -= 5
	}

	// Market-size plausibility.
	if input.MarketSize > 0 {
		share := exitRevenue / input.MarketSize
		if share > 0.5 {
			score -= 15
		} else if share > 0.2 {
			score -= 7
		}
	}

	return clampConfidence(score)
}

func vcRiskFactors(input models.ValuationInput, exitRevenue float64) map[string]float64 {
	marketRisk := 0.5
	if input.MarketSize > 0 {
		marketRisk = clamp(exitRevenue/input.MarketSize, 0, 1)
	}
	return map[string]float64{
		"exit_timing_risk": 0.4,
		"market_risk":      marketRisk,
		"dilution_risk":    clamp(1-input.Revenue/10_000_000, 0, 1),
	}
}
