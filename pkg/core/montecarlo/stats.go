package montecarlo

import (
	"math"
	"sort"

	"startup_valuation/pkg/models"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// nearestRankPercentile returns the p-th percentile of a sorted slice using
// the nearest-rank definition: the value at rank ceil(p/100 · n).
func nearestRankPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(n)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}

// pearson computes the Pearson correlation of two equal-length series.
// Zero variance in either series yields 0 rather than a division by zero.
func pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0
	}
	mx, my := mean(x), mean(y)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// coefficientOfVariation is stddev/|mean|; a zero mean yields 0.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m == 0 {
		return 0
	}
	return stdDev(values, m) / math.Abs(m)
}

// buildHistogram bins outcomes into a normalized histogram over [min, max].
// Degenerate distributions (min == max) collapse to a single full bucket.
func buildHistogram(sorted []float64, buckets int) []models.HistogramBucket {
	n := len(sorted)
	if n == 0 || buckets <= 0 {
		return nil
	}
	lo, hi := sorted[0], sorted[n-1]
	if lo == hi {
		return []models.HistogramBucket{{Low: lo, High: hi, Count: n, Frequency: 1}}
	}
	width := (hi - lo) / float64(buckets)
	out := make([]models.HistogramBucket, buckets)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = lo + float64(i+1)*width
	}
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		out[idx].Count++
	}
	for i := range out {
		out[i].Frequency = float64(out[i].Count) / float64(n)
	}
	return out
}

// sortCopy returns an ascending-sorted copy, leaving the input untouched.
func sortCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}
