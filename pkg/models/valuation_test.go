package models

import "testing"

func TestParseStage(t *testing.T) {
	cases := []struct {
		in   string
		want Stage
		ok   bool
	}{
		{"seed", StageSeed, true},
		{"Series A", StageSeriesA, true},
		{"series_b", StageSeriesB, true},
		{" PRE-SEED ", StagePreSeed, true},
		{"growth", StageGrowth, true},
		{"mezzanine", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStage(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStage(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStagePreRevenue(t *testing.T) {
	if !StageIdea.PreRevenue() || !StagePreSeed.PreRevenue() {
		t.Error("idea and pre-seed are pre-revenue stages")
	}
	if StageSeed.PreRevenue() || StageSeriesA.PreRevenue() {
		t.Error("seed and later stages are not pre-revenue")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Method: MethodDCF, Violations: []string{"revenue must be positive", "growth rate must be positive"}}
	want := "validation failed for dcf: revenue must be positive; growth rate must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
