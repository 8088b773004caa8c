package montecarlo

import (
	"context"
	"errors"
	"math"
	"testing"

	"startup_valuation/pkg/models"
)

func simInput() models.ValuationInput {
	return models.ValuationInput{
		Sector:          "saas",
		Stage:           models.StageSeriesA,
		Revenue:         30_000_000,
		GrowthRate:      1.2,
		OperatingMargin: 0.05,
		MarketSize:      4_000_000_000,
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	seed := int64(12345)
	run := func(workers int) *models.SimulationResult {
		res, err := Run(context.Background(), simInput(), Params{
			Iterations: 4096,
			Seed:       &seed,
			Workers:    workers,
		})
		if err != nil {
			t.Fatalf("Run with %d workers failed: %v", workers, err)
		}
		return res
	}

	a := run(1)
	b := run(4)
	if a.ExpectedValue != b.ExpectedValue {
		t.Errorf("Expected value differs across worker counts: %f vs %f", a.ExpectedValue, b.ExpectedValue)
	}
	if a.Percentiles != b.Percentiles {
		t.Errorf("Percentiles differ across worker counts: %+v vs %+v", a.Percentiles, b.Percentiles)
	}
	for name, v := range a.Volatility {
		if b.Volatility[name] != v {
			t.Errorf("Volatility %q differs: %f vs %f", name, v, b.Volatility[name])
		}
	}
}

func TestRun_PercentilesMonotonic(t *testing.T) {
	seed := int64(7)
	res, err := Run(context.Background(), simInput(), Params{Iterations: 2000, Seed: &seed})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	p := res.Percentiles
	if !(p.P10 <= p.P25 && p.P25 <= p.P50 && p.P50 <= p.P75 && p.P75 <= p.P90) {
		t.Errorf("Percentiles not monotonic: %+v", p)
	}
	if res.ExpectedValue <= 0 {
		t.Errorf("Expected positive expected value, got %f", res.ExpectedValue)
	}
	// Default 80% interval spans P10..P90 exactly under nearest-rank.
	if res.Interval.Level != 0.8 {
		t.Errorf("Expected default confidence level 0.8, got %f", res.Interval.Level)
	}
	if res.Interval.Low != p.P10 || res.Interval.High != p.P90 {
		t.Errorf("80%% interval [%f, %f] should match P10/P90 [%f, %f]",
			res.Interval.Low, res.Interval.High, p.P10, p.P90)
	}
}

func TestRun_CustomConfidenceLevel(t *testing.T) {
	seed := int64(7)
	res, err := Run(context.Background(), simInput(), Params{Iterations: 2000, Seed: &seed, ConfidenceLevel: 0.5})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Interval.Low != res.Percentiles.P25 || res.Interval.High != res.Percentiles.P75 {
		t.Errorf("50%% interval [%f, %f] should match P25/P75 [%f, %f]",
			res.Interval.Low, res.Interval.High, res.Percentiles.P25, res.Percentiles.P75)
	}
	if res.Interval.High < res.Interval.Low {
		t.Errorf("Interval inverted: %+v", res.Interval)
	}
}

func TestRun_SingleIteration(t *testing.T) {
	seed := int64(1)
	res, err := Run(context.Background(), simInput(), Params{Iterations: 1, Seed: &seed})
	if err != nil {
		t.Fatalf("Run with one iteration failed: %v", err)
	}
	if res.Iterations != 1 {
		t.Errorf("Expected 1 iteration, got %d", res.Iterations)
	}
	// All percentiles collapse to the single outcome.
	p := res.Percentiles
	if p.P10 != p.P90 || p.P50 != res.ExpectedValue {
		t.Errorf("Degenerate percentiles wrong: %+v, expected %f", p, res.ExpectedValue)
	}
	if len(res.Histogram) != 1 {
		t.Errorf("Expected single histogram bucket, got %d", len(res.Histogram))
	}
}

func TestRun_HistogramAccountsForEveryOutcome(t *testing.T) {
	seed := int64(99)
	const iters = 3000
	res, err := Run(context.Background(), simInput(), Params{Iterations: iters, Seed: &seed, HistogramBuckets: 40})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Histogram) != 40 {
		t.Fatalf("Expected 40 buckets, got %d", len(res.Histogram))
	}
	total := 0
	freq := 0.0
	for _, b := range res.Histogram {
		total += b.Count
		freq += b.Frequency
	}
	if total != iters {
		t.Errorf("Histogram counts sum to %d, want %d", total, iters)
	}
	if math.Abs(freq-1) > 1e-9 {
		t.Errorf("Histogram frequencies sum to %f, want 1", freq)
	}
}

func TestRun_SensitivityCoversAllVariables(t *testing.T) {
	seed := int64(5)
	res, err := Run(context.Background(), simInput(), Params{Iterations: 2000, Seed: &seed})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Sensitivity) != numVariables {
		t.Fatalf("Expected %d sensitivity entries, got %d", numVariables, len(res.Sensitivity))
	}
	for i := 1; i < len(res.Sensitivity); i++ {
		if res.Sensitivity[i].Impact > res.Sensitivity[i-1].Impact {
			t.Errorf("Sensitivity not sorted by impact: %+v", res.Sensitivity)
		}
	}
	// Revenue enters the valuation directly and positively correlated.
	for _, s := range res.Sensitivity {
		if s.Variable == "revenue" && s.Correlation <= 0 {
			t.Errorf("Expected positive revenue correlation, got %f", s.Correlation)
		}
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, simInput(), Params{Iterations: 100_000})
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}

func TestRun_RejectsZeroRevenue(t *testing.T) {
	input := simInput()
	input.Revenue = 0
	_, err := Run(context.Background(), input, Params{Iterations: 10})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for zero revenue, got %v", err)
	}
}

func TestNormalSource_MomentsAndDeterminism(t *testing.T) {
	const draws = 50_000
	src := newNormalSource(2024)
	values := make([]float64, draws)
	for i := range values {
		values[i] = src.normal()
	}
	m := mean(values)
	sd := stdDev(values, m)
	if math.Abs(m) > 0.02 {
		t.Errorf("Sample mean %f too far from 0", m)
	}
	if math.Abs(sd-1) > 0.02 {
		t.Errorf("Sample std dev %f too far from 1", sd)
	}

	a := newNormalSource(7)
	b := newNormalSource(7)
	for i := 0; i < 100; i++ {
		if a.normal() != b.normal() {
			t.Fatal("Same seed produced different draws")
		}
	}
}
