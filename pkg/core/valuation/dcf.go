package valuation

import (
	"fmt"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/core/marketdata"
	"startup_valuation/pkg/models"
)

// ComputeDCF performs a discounted-cash-flow valuation:
// free cash flow is projected over the benchmark horizon with decaying
// growth and a margin ramp toward the sector target, discounted at a
// stage-adjusted WACC, with a Gordon Growth terminal value.
func ComputeDCF(input models.ValuationInput, tables *benchmarks.Tables, market marketdata.Snapshot) (*models.MethodResult, error) {
	var violations []string
	if input.Revenue <= 0 {
		violations = append(violations, "revenue must be positive for DCF")
	}
	if input.GrowthRate <= 0 {
		violations = append(violations, "growth rate must be positive for DCF")
	} else if input.GrowthRate > tables.MaxGrowthRate {
		violations = append(violations, fmt.Sprintf("growth rate %.2f exceeds maximum %.2f", input.GrowthRate, tables.MaxGrowthRate))
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Method: models.MethodDCF, Violations: violations}
	}

	sector := tables.Sector(input.Sector)
	stage, ok := tables.Stage(input.Stage)
	if !ok {
		return nil, &models.ValidationError{
			Method:     models.MethodDCF,
			Violations: []string{fmt.Sprintf("unknown stage %q", input.Stage)},
		}
	}

	wacc := discountRate(sector, stage, market)
	years := tables.ProjectionYears
	taxRate := tables.TaxRate

	growthPath := DecayingGrowthPath(input.GrowthRate, tables.GrowthDecay, sector.TerminalGrowth, years)

	revenues := make([]float64, years)
	fcfs := make([]float64, years)
	discountFactors := make([]float64, years)

	revenue := input.Revenue
	cumDiscount := 1.0
	pvFCF := 0.0

	for i := 0; i < years; i++ {
		revenue *= 1 + growthPath[i]
		revenues[i] = revenue

		// Margin ramps linearly from the current margin toward the sector target.
		progress := float64(i+1) / float64(years)
		margin := input.OperatingMargin + (sector.TargetOperatingMargin-input.OperatingMargin)*progress

		ebit := revenue * margin
		nopat := ebit * (1 - taxRate)
		depreciation := revenue * sector.DepreciationRate
		capex := revenue * sector.CapexRate
		nwcChange := revenue * sector.NWCRate

		// FCF = NOPAT + D&A - CapEx - dNWC
		fcf := nopat + depreciation - capex - nwcChange
		fcfs[i] = fcf

		cumDiscount /= 1 + wacc
		discountFactors[i] = cumDiscount
		pvFCF += fcf * cumDiscount
	}

	// Terminal value via Gordon Growth; fall back to a flat FCF multiple
	// when the perpetuity formula is undefined.
	finalFCF := fcfs[years-1]
	var terminalValue float64
	if wacc > sector.TerminalGrowth {
		terminalValue = finalFCF * (1 + sector.TerminalGrowth) / (wacc - sector.TerminalGrowth)
	} else {
		terminalValue = finalFCF * tables.TerminalFCFMultiple
	}
	pvTerminal := terminalValue * cumDiscount

	enterpriseValue := pvFCF + pvTerminal
	equityValue := enterpriseValue - input.NetDebt + input.CashBalance
	if err := checkFinite(models.MethodDCF, "equity value", equityValue); err != nil {
		return nil, err
	}

	result := &models.MethodResult{
		Method:      models.MethodDCF,
		EquityValue: clampEquity(equityValue),
		Breakdown: map[string]float64{
			"pv_fcf":           pvFCF,
			"pv_terminal":      pvTerminal,
			"terminal_value":   terminalValue,
			"enterprise_value": enterpriseValue,
			"net_debt":         input.NetDebt,
			"cash":             input.CashBalance,
		},
		Series: map[string][]float64{
			"projected_revenue": revenues,
			"projected_fcf":     fcfs,
			"discount_factors":  discountFactors,
		},
		Assumptions: map[string]float64{
			"projectionYears": float64(years),
			"taxRate":         taxRate,
			"wacc":            wacc,
			"terminalGrowth":  sector.TerminalGrowth,
			"targetMargin":    sector.TargetOperatingMargin,
			"growthDecay":     tables.GrowthDecay,
		},
		RiskFactors: dcfRiskFactors(input, tables),
	}
	result.Confidence = dcfConfidence(input, enterpriseValue, pvTerminal)

	if enterpriseValue > 0 && pvTerminal/enterpriseValue > 0.75 {
		result.Insights = append(result.Insights,
			fmt.Sprintf("Terminal value contributes %.0f%% of enterprise value; the valuation is highly sensitive to terminal assumptions", 100*pvTerminal/enterpriseValue))
	}
	if equityValue < 0 {
		result.Insights = append(result.Insights,
			"Projected cash flows do not cover net debt; equity value floored at zero")
	}
	if input.OperatingMargin < 0 {
		result.Insights = append(result.Insights,
			"Current operating margin is negative; projection assumes recovery toward the sector target")
	}

	return result, nil
}

// discountRate derives the WACC from the CAPM cost of equity (using injected
// market data) plus the stage risk premium, floored at the sector benchmark
// so thin market data cannot understate startup risk.
func discountRate(sector benchmarks.SectorParams, stage benchmarks.StageParams, market marketdata.Snapshot) float64 {
	beta := market.IndustryBeta
	if beta <= 0 {
		beta = sector.IndustryBeta
	}
	costOfEquity := market.RiskFreeRate + beta*market.MarketRiskPremium
	base := costOfEquity
	if sector.WACC > base {
		base = sector.WACC
	}
	return base + stage.WACCPremium
}

func dcfConfidence(input models.ValuationInput, enterpriseValue, pvTerminal float64) float64 {
	score := 70.0

	// Growth realism: hypergrowth projections are fragile.
	switch {
	case input.GrowthRate > 3.0:
		score -= 20
	case input.GrowthRate > 2.0:
		score -= 12
	case input.GrowthRate > 1.0:
		score -= 6
	}

	// Margin sign: a money-losing base year makes the ramp speculative.
	if input.OperatingMargin < 0 {
		score -= 10
	} else if input.OperatingMargin > 0.10 {
		score += 5
	}

	// Stage maturity: DCF is most trustworthy for later stages.
	switch input.Stage {
	case models.StageGrowth, models.StageSeriesB:
		score += 10
	case models.StageSeriesA:
		score += 2
	case models.StageSeed:
		score -= 8
	default:
		score -= 15
	}

	// Terminal-value dominance erodes trust in the explicit projection.
	if enterpriseValue > 0 && pvTerminal/enterpriseValue > 0.8 {
		score -= 8
	}

	return clampConfidence(score)
}

func dcfRiskFactors(input models.ValuationInput, tables *benchmarks.Tables) map[string]float64 {
	sector := tables.Sector(input.Sector)
	return map[string]float64{
		"growth_risk": clamp(input.GrowthRate/tables.MaxGrowthRate, 0, 1),
		"margin_risk": clamp((sector.TargetOperatingMargin-input.OperatingMargin)/(sector.TargetOperatingMargin+0.01), 0, 1),
		"scale_risk":  1 / (1 + input.Revenue/10_000_000),
	}
}
