package valuation

import (
	"fmt"
	"math"

	"startup_valuation/pkg/models"
)

// DecayingGrowthPath projects a per-year growth schedule: the initial rate
// decays by the given multiplier each year and is floored at the terminal
// rate. Year 1 uses the undecayed initial rate.
func DecayingGrowthPath(initial, decay, terminal float64, years int) []float64 {
	path := make([]float64, years)
	g := initial
	for i := 0; i < years; i++ {
		if g < terminal {
			g = terminal
		}
		path[i] = g
		g *= decay
	}
	return path
}

// ProjectRevenue compounds revenue along a decaying growth path and returns
// the per-year revenue series (length == years).
func ProjectRevenue(revenue, initialGrowth, decay, terminal float64, years int) []float64 {
	path := DecayingGrowthPath(initialGrowth, decay, terminal, years)
	out := make([]float64, years)
	r := revenue
	for i, g := range path {
		r *= 1 + g
		out[i] = r
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// clampConfidence bounds a confidence score to the 0-100 contract.
func clampConfidence(c float64) float64 {
	return clamp(c, 0, 100)
}

// clampEquity enforces the equity-value >= 0 invariant.
func clampEquity(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// checkFinite converts a NaN or Inf intermediate into an explicit
// NumericalError instead of letting it propagate as a corrupt number.
func checkFinite(method models.Method, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &models.NumericalError{
			Op:     string(method),
			Detail: fmt.Sprintf("%s is not finite", name),
		}
	}
	return nil
}
