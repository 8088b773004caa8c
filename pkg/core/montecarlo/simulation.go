package montecarlo

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/core/marketdata"
	"startup_valuation/pkg/models"
)

const (
	defaultIterations = 10_000
	defaultBuckets    = 50
	defaultConfidence = 0.80

	// Iterations are processed in fixed-size batches, each with its own
	// seeded RNG, so results are reproducible regardless of worker count.
	batchSize       = 1024
	batchSeedStride = 7919
)

// Default multiplicative variation ranges per simulated variable.
var defaultVariationRanges = map[string]float64{
	"revenue":          0.20,
	"operating_margin": 0.15,
	"growth_rate":      0.30,
	"market_size":      0.25,
}

// Params configures one simulation run. Zero values select the documented
// defaults.
type Params struct {
	Iterations       int
	Seed             *int64  // nil draws a time-based seed
	ConfidenceLevel  float64 // Central interval width, e.g. 0.80; 0 uses the default
	HistogramBuckets int
	Workers          int
	RiskVariation    float64            // Std-dev of the aggregate risk multiplier
	VariationRanges  map[string]float64 // Per-variable overrides
	Tables           *benchmarks.Tables
	Market           *marketdata.Snapshot
}

// Run executes the Monte Carlo risk path: correlated sampling of the key
// input variables via Cholesky factorization, a revenue-multiple valuation
// per draw, then percentile, histogram, sensitivity, and volatility
// reduction over all outcomes. Cancellation via ctx discards all partial
// work; a rerun starts from iteration zero.
func Run(ctx context.Context, input models.ValuationInput, params Params) (*models.SimulationResult, error) {
	if input.Revenue <= 0 {
		return nil, &models.ValidationError{
			Method:     "monte_carlo",
			Violations: []string{"revenue must be positive for simulation"},
		}
	}

	tables := params.Tables
	if tables == nil {
		tables = benchmarks.Default()
	}
	market := marketdata.DefaultSnapshot()
	if params.Market != nil {
		market = *params.Market
	}
	iterations := params.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	buckets := params.HistogramBuckets
	if buckets <= 0 {
		buckets = defaultBuckets
	}
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	riskVariation := params.RiskVariation
	if riskVariation <= 0 {
		riskVariation = 0.15
	}
	level := params.ConfidenceLevel
	if level <= 0 || level >= 1 {
		level = defaultConfidence
	}
	seed := time.Now().UnixNano()
	if params.Seed != nil {
		seed = *params.Seed
	}

	variation := make([]float64, numVariables)
	for i, name := range VariableNames {
		variation[i] = defaultVariationRanges[name]
		if v, ok := params.VariationRanges[name]; ok && v >= 0 {
			variation[i] = v
		}
	}

	sector := tables.Sector(input.Sector)
	matrix := BuildCorrelationMatrix(sector.Volatility, market.MarketVolatility)
	l, err := Cholesky(matrix)
	if err != nil {
		return nil, fmt.Errorf("building correlated sampler: %w", err)
	}

	// Base values for the tracked variables. A missing market size gets a
	// notional TAM so the variable stays defined; its zero base correlation
	// contribution keeps it from distorting outcomes.
	base := [numVariables]float64{
		input.Revenue,
		input.OperatingMargin,
		input.GrowthRate,
		input.MarketSize,
	}
	if base[varMarketSize] <= 0 {
		base[varMarketSize] = input.Revenue * 100
	}

	outcomes := make([]float64, iterations)
	samples := make([][]float64, numVariables)
	for i := range samples {
		samples[i] = make([]float64, iterations)
	}

	numBatches := (iterations + batchSize - 1) / batchSize
	batchCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			z := make([]float64, numVariables)
			zc := make([]float64, numVariables)
			for b := range batchCh {
				src := newNormalSource(seed + int64(b)*batchSeedStride)
				start := b * batchSize
				end := start + batchSize
				if end > iterations {
					end = iterations
				}
				for i := start; i < end; i++ {
					src.fill(z)
					correlate(l, z, zc)

					var vals [numVariables]float64
					for j := 0; j < numVariables; j++ {
						factor := 1 + zc[j]*variation[j]
						if factor < 0.05 {
							factor = 0.05
						}
						vals[j] = base[j] * factor
						samples[j][i] = vals[j]
					}

					risk := 1 + src.normal()*riskVariation*sector.Volatility
					if risk < 0.5 {
						risk = 0.5
					} else if risk > 1.5 {
						risk = 1.5
					}

					outcomes[i] = iterationValuation(vals, base[varMarketSize], sector.RevenueExitMultiple, risk)
				}
			}
		}()
	}

dispatch:
	for b := 0; b < numBatches; b++ {
		select {
		case batchCh <- b:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(batchCh)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		// Partial results are discarded; a cancelled run is restartable
		// from iteration zero.
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	return reduce(input, outcomes, samples, buckets, seed, level)
}

// iterationValuation recomputes a valuation for one perturbed draw: a
// revenue multiple shaped by growth and margin factors, a market-size
// factor relative to the unperturbed base, and the aggregate risk
// multiplier.
func iterationValuation(vals [numVariables]float64, baseMarketSize, revenueMultiple, risk float64) float64 {
	growthFactor := clampFloat(1+vals[varGrowth], 0.25, 4.0)
	marginFactor := clampFloat(1+vals[varMargin], 0.5, 2.0)
	sizeFactor := clampFloat(sqrtRatio(vals[varMarketSize], baseMarketSize), 0.7, 1.3)
	v := vals[varRevenue] * revenueMultiple * growthFactor * marginFactor * sizeFactor * risk
	if v < 0 {
		v = 0
	}
	return v
}

func reduce(input models.ValuationInput, outcomes []float64, samples [][]float64, buckets int, seed int64, level float64) (*models.SimulationResult, error) {
	sorted := sortCopy(outcomes)

	expected := mean(outcomes)
	if err := checkReduced(expected); err != nil {
		return nil, err
	}

	sensitivity := make([]models.SensitivityEntry, 0, numVariables)
	volatility := make(map[string]float64, numVariables+1)
	for i, name := range VariableNames {
		corr := pearson(samples[i], outcomes)
		sensitivity = append(sensitivity, models.SensitivityEntry{
			Variable:    name,
			Correlation: corr,
			Impact:      absFloat(corr),
		})
		volatility[name] = coefficientOfVariation(samples[i])
	}
	volatility["valuation"] = coefficientOfVariation(outcomes)

	// Rank by impact; ties break on name so output is deterministic.
	sort.Slice(sensitivity, func(a, b int) bool {
		if sensitivity[a].Impact != sensitivity[b].Impact {
			return sensitivity[a].Impact > sensitivity[b].Impact
		}
		return sensitivity[a].Variable < sensitivity[b].Variable
	})

	return &models.SimulationResult{
		RequestID:     uuid.NewString(),
		Iterations:    len(outcomes),
		Seed:          seed,
		ExpectedValue: expected,
		Percentiles: models.Percentiles{
			P10: nearestRankPercentile(sorted, 10),
			P25: nearestRankPercentile(sorted, 25),
			P50: nearestRankPercentile(sorted, 50),
			P75: nearestRankPercentile(sorted, 75),
			P90: nearestRankPercentile(sorted, 90),
		},
		Interval: models.ConfidenceInterval{
			Level: level,
			Low:   nearestRankPercentile(sorted, 100*(1-level)/2),
			High:  nearestRankPercentile(sorted, 100*(1+level)/2),
		},
		Histogram:   buildHistogram(sorted, buckets),
		Sensitivity: sensitivity,
		Volatility:  volatility,
	}, nil
}

func checkReduced(expected float64) error {
	if math.IsNaN(expected) || math.IsInf(expected, 0) {
		return &models.NumericalError{Op: "simulation", Detail: "expected value is not finite"}
	}
	return nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sqrtRatio(v, base float64) float64 {
	if base <= 0 {
		return 1
	}
	ratio := v / base
	if ratio <= 0 {
		return 0
	}
	// sqrt dampens the market-size effect relative to revenue.
	return math.Sqrt(ratio)
}
