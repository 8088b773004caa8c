package hybrid

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/core/marketdata"
	"startup_valuation/pkg/models"
)

// Options configures one hybrid valuation request.
type Options struct {
	Tables  *benchmarks.Tables   // nil uses the built-in defaults
	Market  *marketdata.Snapshot // nil uses the documented fallback
	Timeout time.Duration        // 0 means no deadline beyond ctx
}

// Outcome is the tagged success-or-failure result of one method. The
// combiner reduces a slice of these; tests can inject stubs directly.
type Outcome struct {
	Method models.Method
	Result *models.MethodResult
	Err    error
}

// ComputeValuation runs every method applicable to the input's stage in
// parallel, merges the survivors into a weighted hybrid estimate with
// scenario bands, and attaches non-fatal sanity flags. One failed method
// only shifts weight to the others; a result is returned unless every
// method fails.
func ComputeValuation(ctx context.Context, input models.ValuationInput, opts Options) (*models.HybridResult, error) {
	tables := opts.Tables
	if tables == nil {
		tables = benchmarks.Default()
	}
	market := marketdata.DefaultSnapshot()
	if opts.Market != nil {
		market = *opts.Market
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	weights, err := ApplicableMethods(input.Stage, tables)
	if err != nil {
		return nil, err
	}

	runners := runnersFor(weights, tables, market)
	outcomes, err := runParallel(ctx, input, runners)
	if err != nil {
		return nil, err
	}

	result, err := Combine(input.Stage, weights, outcomes)
	if err != nil {
		return nil, err
	}

	result.Scenarios = scenarioBands(input, tables, market, result)
	result.SanityFlags = sanityFlags(input, tables, result)
	return result, nil
}

// runParallel fans the calculators out across goroutines and joins them.
// Calculators are pure and independent, so no ordering applies. A cancelled
// context abandons the request; partial outcomes are discarded.
func runParallel(ctx context.Context, input models.ValuationInput, runners []methodRunner) ([]Outcome, error) {
	// An already-cancelled request never starts.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("valuation cancelled: %w", err)
	}

	outcomes := make([]Outcome, len(runners))
	var wg sync.WaitGroup
	for i, r := range runners {
		wg.Add(1)
		go func(i int, r methodRunner) {
			defer wg.Done()
			res, err := r.run(input)
			outcomes[i] = Outcome{Method: r.method, Result: res, Err: err}
		}(i, r)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return outcomes, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("valuation cancelled: %w", ctx.Err())
	}
}

// Combine is the pure reducer: it excludes failed methods, renormalizes the
// surviving weights (stage base × confidence multiplier) to sum to 1.0,
// and produces the weighted average and overall confidence.
func Combine(stage models.Stage, baseWeights benchmarks.MethodWeights, outcomes []Outcome) (*models.HybridResult, error) {
	results := make(map[models.Method]*models.MethodResult)
	failures := make(map[models.Method]string)
	rawWeights := make(map[models.Method]float64)
	rawSum := 0.0

	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			reason := "no result"
			if o.Err != nil {
				reason = o.Err.Error()
			}
			failures[o.Method] = reason
			continue
		}
		results[o.Method] = o.Result
		w := baseWeights[o.Method] * confidenceMultiplier(o.Result.Confidence)
		rawWeights[o.Method] = w
		rawSum += w
	}

	if len(results) == 0 || rawSum <= 0 {
		return nil, &models.NoApplicableMethodError{Stage: stage, Failures: failures}
	}

	// Summation runs in a fixed method order; ranging over the map would
	// randomize the float addition order and break bitwise reproducibility.
	weights := make(map[models.Method]float64, len(rawWeights))
	values := make([]float64, 0, len(rawWeights))
	weightedAverage := 0.0
	weightedConfidence := 0.0
	for _, method := range weightOrder(rawWeights) {
		norm := rawWeights[method] / rawSum
		weights[method] = norm
		weightedAverage += norm * results[method].EquityValue
		weightedConfidence += norm * results[method].Confidence
		values = append(values, results[method].EquityValue)
	}

	return &models.HybridResult{
		RequestID:         uuid.NewString(),
		Stage:             stage,
		MethodResults:     results,
		FailedMethods:     failures,
		Weights:           weights,
		WeightedAverage:   weightedAverage,
		OverallConfidence: overallConfidence(weightedConfidence, values),
	}, nil
}

// weightOrder returns the methods of a weight map sorted by name.
func weightOrder(weights map[models.Method]float64) []models.Method {
	methods := make([]models.Method, 0, len(weights))
	for m := range weights {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

// confidenceMultiplier maps a 0-100 confidence onto the [0.8, 1.2] weight
// multiplier.
func confidenceMultiplier(confidence float64) float64 {
	return 0.8 + confidence/100*0.4
}

// overallConfidence blends the weighted per-method confidence with a
// triangulation bonus for agreeing method count and a dispersion penalty
// based on the coefficient of variation across method results. values holds
// the surviving equity values in the caller's fixed method order.
func overallConfidence(weightedConfidence float64, values []float64) float64 {
	score := weightedConfidence

	bonus := 4 * float64(len(values)-1)
	if bonus > 12 {
		bonus = 12
	}
	score += bonus

	if len(values) >= 2 {
		m := 0.0
		for _, v := range values {
			m += v
		}
		m /= float64(len(values))
		if m > 0 {
			variance := 0.0
			for _, v := range values {
				variance += (v - m) * (v - m)
			}
			variance /= float64(len(values))
			cv := math.Sqrt(variance) / m
			penalty := cv * 25
			if penalty > 25 {
				penalty = 25
			}
			score -= penalty
		}
	}

	return math.Max(0, math.Min(100, score))
}

// sanityFlags emits non-fatal plausibility warnings. None of these fail the
// request; they annotate it.
func sanityFlags(input models.ValuationInput, tables *benchmarks.Tables, result *models.HybridResult) []models.SanityFlag {
	var flags []models.SanityFlag

	if input.MarketSize > 0 && result.WeightedAverage > 0.3*input.MarketSize {
		flags = append(flags, models.SanityFlag{
			Code: "exceeds_tam_fraction",
			Message: fmt.Sprintf("valuation %.0f exceeds 30%% of the %.0f addressable market",
				result.WeightedAverage, input.MarketSize),
		})
	}
	if stage, ok := tables.Stage(input.Stage); ok && stage.PlausibleValueCap > 0 && result.WeightedAverage > stage.PlausibleValueCap {
		flags = append(flags, models.SanityFlag{
			Code: "implausible_for_stage",
			Message: fmt.Sprintf("valuation %.0f is implausible for stage %s (typical ceiling %.0f)",
				result.WeightedAverage, input.Stage, stage.PlausibleValueCap),
		})
	}
	if input.CAC > 0 && input.LTV > 0 {
		ratio := input.CAC / input.LTV
		if ratio > 0.3 {
			flags = append(flags, models.SanityFlag{
				Code:    "cac_ltv_ratio",
				Message: fmt.Sprintf("CAC/LTV ratio %.2f exceeds the recommended maximum of 0.30", ratio),
			})
		}
	}
	return flags
}
