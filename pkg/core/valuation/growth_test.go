package valuation

import (
	"math"
	"testing"
)

func TestDecayingGrowthPath(t *testing.T) {
	// 1.2 decaying by 0.85 per year: 1.2, 1.02, 0.867, 0.73695, 0.6264075.
	path := DecayingGrowthPath(1.2, 0.85, 0.025, 5)
	want := []float64{1.2, 1.02, 0.867, 0.73695, 0.6264075}
	if len(path) != len(want) {
		t.Fatalf("Path length %d, want %d", len(path), len(want))
	}
	for i := range want {
		if math.Abs(path[i]-want[i]) > 1e-9 {
			t.Errorf("Year %d growth %f, want %f", i+1, path[i], want[i])
		}
	}
}

func TestDecayingGrowthPath_TerminalFloor(t *testing.T) {
	// A low starting rate decays below terminal quickly and sticks there.
	path := DecayingGrowthPath(0.04, 0.85, 0.03, 6)
	for i, g := range path {
		if g < 0.03 {
			t.Errorf("Year %d growth %f below the 0.03 terminal floor", i+1, g)
		}
	}
	if path[len(path)-1] != 0.03 {
		t.Errorf("Expected final year at the terminal rate, got %f", path[len(path)-1])
	}
}

func TestProjectRevenue_Compounds(t *testing.T) {
	series := ProjectRevenue(1_000_000, 0.5, 0.85, 0.025, 3)
	// 1M * 1.5 = 1.5M; * 1.425 = 2.1375M; * ~1.361 = ...
	if math.Abs(series[0]-1_500_000) > 1 {
		t.Errorf("Year 1 revenue %f, want 1500000", series[0])
	}
	if math.Abs(series[1]-1_500_000*1.425) > 1 {
		t.Errorf("Year 2 revenue %f, want %f", series[1], 1_500_000*1.425)
	}
	for i := 1; i < len(series); i++ {
		if series[i] <= series[i-1] {
			t.Errorf("Revenue must grow along a positive path: %v", series)
		}
	}
}
