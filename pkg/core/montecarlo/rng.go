package montecarlo

import (
	"math"
	"math/rand"
)

// normalSource draws standard normal variates via the Box–Muller transform:
// z = sqrt(-2 ln u) · cos(2πv) with u, v uniform on (0,1). Each worker batch
// owns its own source, so parallel execution stays reproducible for a given
// seed.
type normalSource struct {
	r *rand.Rand
}

func newNormalSource(seed int64) *normalSource {
	return &normalSource{r: rand.New(rand.NewSource(seed))}
}

// normal returns one standard normal draw.
func (s *normalSource) normal() float64 {
	// 1 - Float64() maps [0,1) onto (0,1], keeping the log argument positive.
	u := 1 - s.r.Float64()
	v := s.r.Float64()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

// fill populates z with independent standard normals.
func (s *normalSource) fill(z []float64) {
	for i := range z {
		z[i] = s.normal()
	}
}
