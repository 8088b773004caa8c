package hybrid

import (
	"math"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/core/marketdata"
	"startup_valuation/pkg/core/valuation"
	"startup_valuation/pkg/models"
)

// Fixed envelope applied to methods that cannot be meaningfully re-run with
// scaled inputs (rating-driven methods).
const scenarioEnvelope = 0.30

// Input scaling for re-runnable methods.
const (
	conservativeScale       = 0.80
	optimisticScale         = 1.20
	conservativeGrowthScale = 0.85
	optimisticGrowthScale   = 1.15
)

// scenarioBands builds the conservative/base/optimistic envelope. Methods
// driven by financial inputs (DCF, VC, comparables) are re-run against
// scaled-down and scaled-up inputs; rating-driven methods get the fixed
// ±30% envelope. Per-method scenario values are merged with the same
// normalized weights as the base estimate.
func scenarioBands(input models.ValuationInput, tables *benchmarks.Tables, market marketdata.Snapshot, result *models.HybridResult) models.ScenarioBands {
	conservative := 0.0
	optimistic := 0.0

	// Fixed method order keeps the float summation reproducible.
	for _, method := range weightOrder(result.Weights) {
		weight := result.Weights[method]
		baseValue := result.MethodResults[method].EquityValue
		lo, hi := methodScenario(method, input, tables, market, baseValue)
		conservative += weight * lo
		optimistic += weight * hi
	}

	base := result.WeightedAverage
	return models.ScenarioBands{
		Conservative: math.Min(conservative, base),
		Base:         base,
		Optimistic:   math.Max(optimistic, base),
	}
}

func methodScenario(method models.Method, input models.ValuationInput, tables *benchmarks.Tables, market marketdata.Snapshot, baseValue float64) (float64, float64) {
	envelope := func() (float64, float64) {
		return baseValue * (1 - scenarioEnvelope), baseValue * (1 + scenarioEnvelope)
	}

	rerun := func(in models.ValuationInput) (float64, bool) {
		var res *models.MethodResult
		var err error
		switch method {
		case models.MethodDCF:
			res, err = valuation.ComputeDCF(in, tables, market)
		case models.MethodVCMethod:
			res, err = valuation.ComputeVCMethod(in, tables)
		case models.MethodComparables:
			res, err = valuation.ComputeComparables(in, tables)
		default:
			return 0, false
		}
		if err != nil {
			return 0, false
		}
		return res.EquityValue, true
	}

	switch method {
	case models.MethodDCF, models.MethodVCMethod, models.MethodComparables:
		lo, okLo := rerun(scaleInput(input, conservativeScale, conservativeGrowthScale))
		hi, okHi := rerun(scaleInput(input, optimisticScale, optimisticGrowthScale))
		if !okLo || !okHi {
			return envelope()
		}
		// A scenario re-run can cross the base value (e.g. growth scaling
		// through a multiple clamp); keep the band ordered.
		return math.Min(lo, hi), math.Max(lo, hi)
	default:
		return envelope()
	}
}

// scaleInput returns a copy of the input with its financial drivers scaled.
// Rating inputs are left untouched; the input itself is never mutated.
func scaleInput(in models.ValuationInput, scale, growthScale float64) models.ValuationInput {
	in.Revenue *= scale
	in.EBITDA *= scale
	in.MarketSize *= scale
	in.GrowthRate *= growthScale
	return in
}
