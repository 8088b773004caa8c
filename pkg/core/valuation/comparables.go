package valuation

import (
	"fmt"
	"math"
	"sort"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/models"
)

// ComputeComparables values the company against a peer set: median revenue
// and EBITDA multiples (filtered by sector when possible), blended by EBITDA
// margin, with a growth-ratio adjustment against the peer median growth.
func ComputeComparables(input models.ValuationInput, tables *benchmarks.Tables) (*models.MethodResult, error) {
	var violations []string
	if input.Revenue <= 0 {
		violations = append(violations, "revenue must be positive for comparable analysis")
	}
	if len(input.Comparables) == 0 {
		violations = append(violations, "at least one comparable company is required")
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Method: models.MethodComparables, Violations: violations}
	}

	peers, sectorFiltered := filterComparables(input.Comparables, input.Sector)

	var revMultiples, ebitdaMultiples, growthRates []float64
	for _, p := range peers {
		if p.RevenueMultiple > 0 {
			revMultiples = append(revMultiples, p.RevenueMultiple)
		}
		if p.EBITDAMultiple > 0 {
			ebitdaMultiples = append(ebitdaMultiples, p.EBITDAMultiple)
		}
		if p.GrowthRate > 0 {
			growthRates = append(growthRates, p.GrowthRate)
		}
	}
	if len(revMultiples) == 0 {
		return nil, &models.ValidationError{
			Method:     models.MethodComparables,
			Violations: []string{"no comparable has a positive revenue multiple"},
		}
	}

	medianRevMultiple := median(revMultiples)
	revenueValuation := input.Revenue * medianRevMultiple

	// Blend in the EBITDA view when the company is actually profitable on
	// an EBITDA basis; the margin decides how much to trust it.
	blended := revenueValuation
	ebitdaWeight := 0.0
	medianEBITDAMultiple := 0.0
	if input.EBITDA > 0 && len(ebitdaMultiples) > 0 {
		medianEBITDAMultiple = median(ebitdaMultiples)
		ebitdaValuation := input.EBITDA * medianEBITDAMultiple
		ebitdaMargin := input.EBITDA / input.Revenue
		ebitdaWeight = clamp(ebitdaMargin*2, 0, 0.7)
		blended = (1-ebitdaWeight)*revenueValuation + ebitdaWeight*ebitdaValuation
	}

	// Growth premium/discount relative to the peer median, clamped so one
	// outlier input cannot dominate the multiple.
	growthAdjustment := 1.0
	if len(growthRates) > 0 && input.GrowthRate > 0 {
		peerGrowth := median(growthRates)
		if peerGrowth > 0 {
			growthAdjustment = clamp((1+input.GrowthRate)/(1+peerGrowth), 0.5, 2.0)
		}
	}

	enterpriseValue := blended * growthAdjustment
	equityValue := enterpriseValue - input.NetDebt + input.CashBalance
	if err := checkFinite(models.MethodComparables, "equity value", equityValue); err != nil {
		return nil, err
	}

	dispersion := coefficientOfVariation(revMultiples)
	result := &models.MethodResult{
		Method:      models.MethodComparables,
		EquityValue: clampEquity(equityValue),
		Breakdown: map[string]float64{
			"median_revenue_multiple": medianRevMultiple,
			"median_ebitda_multiple":  medianEBITDAMultiple,
			"revenue_valuation":       revenueValuation,
			"ebitda_weight":           ebitdaWeight,
			"growth_adjustment":       growthAdjustment,
			"enterprise_value":        enterpriseValue,
			"comparable_count":        float64(len(peers)),
		},
		Assumptions: map[string]float64{
			"growthAdjustmentFloor": 0.5,
			"growthAdjustmentCap":   2.0,
		},
		RiskFactors: map[string]float64{
			"multiple_dispersion": clamp(dispersion, 0, 1),
			"sample_size_risk":    clamp(1-float64(len(peers))/10, 0, 1),
		},
	}
	result.Confidence = comparablesConfidence(len(peers), dispersion, sectorFiltered)

	if !sectorFiltered {
		result.Insights = append(result.Insights,
			fmt.Sprintf("No comparables matched sector %q; using the full peer set", input.Sector))
	}
	if input.EBITDA <= 0 {
		result.Insights = append(result.Insights,
			"EBITDA is not positive; valuation rests on the revenue multiple alone")
	}
	if dispersion > 0.6 {
		result.Insights = append(result.Insights,
			"Peer multiples are widely dispersed; the median is a weak anchor")
	}

	return result, nil
}

// filterComparables keeps sector-matching peers when any exist, otherwise
// falls back to the full set. The second return reports whether the sector
// filter applied.
func filterComparables(comps []models.ComparableCompany, sector string) ([]models.ComparableCompany, bool) {
	if sector == "" {
		return comps, true
	}
	var matched []models.ComparableCompany
	for _, c := range comps {
		if c.Sector == "" || c.Sector == sector {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return comps, false
	}
	return matched, true
}

// median returns the middle value; for even counts, the mean of the two
// middle values.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / math.Abs(mean)
}

func comparablesConfidence(count int, dispersion float64, sectorFiltered bool) float64 {
	score := 50.0

	// More peers, more signal.
	score += math.Min(20, float64(count)*4)

	// Dispersion of the revenue multiples (coefficient of variation).
	score -= math.Min(25, dispersion*50)

	if !sectorFiltered {
		score -= 8
	}

	return clampConfidence(score)
}
