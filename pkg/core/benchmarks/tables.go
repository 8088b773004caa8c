package benchmarks

import (
	"fmt"
	"math"

	"startup_valuation/pkg/models"
)

// SectorParams holds the sector-level benchmark parameters consumed by the
// calculators. Rates are decimal fractions of revenue unless noted.
type SectorParams struct {
	WACC                  float64 `json:"wacc" yaml:"wacc"`                                       // Base discount rate before stage premium
	TerminalGrowth        float64 `json:"terminal_growth" yaml:"terminal_growth"`                 // Perpetuity growth rate
	TargetOperatingMargin float64 `json:"target_operating_margin" yaml:"target_operating_margin"` // Mature EBIT margin the DCF interpolates toward
	DepreciationRate      float64 `json:"depreciation_rate" yaml:"depreciation_rate"`
	CapexRate             float64 `json:"capex_rate" yaml:"capex_rate"`
	NWCRate               float64 `json:"nwc_rate" yaml:"nwc_rate"` // Working-capital change as % of revenue
	RevenueExitMultiple   float64 `json:"revenue_exit_multiple" yaml:"revenue_exit_multiple"`
	BerkusMultiplier      float64 `json:"berkus_multiplier" yaml:"berkus_multiplier"`
	Volatility            float64 `json:"volatility" yaml:"volatility"` // Relative market volatility, 1.0 = average
	IndustryBeta          float64 `json:"industry_beta" yaml:"industry_beta"`
}

// StageParams holds the stage-level benchmark parameters.
type StageParams struct {
	WACCPremium       float64 `json:"wacc_premium" yaml:"wacc_premium"` // Added to sector WACC for stage risk
	BerkusBase        float64 `json:"berkus_base" yaml:"berkus_base"`
	BerkusFactorMax   float64 `json:"berkus_factor_max" yaml:"berkus_factor_max"` // Max value per rated factor
	BerkusCap         float64 `json:"berkus_cap" yaml:"berkus_cap"`               // Stage maximum on total value
	YearsToExit       int     `json:"years_to_exit" yaml:"years_to_exit"`
	TargetROI         float64 `json:"target_roi" yaml:"target_roi"`
	AssumedRoundSize  float64 `json:"assumed_round_size" yaml:"assumed_round_size"`
	PlausibleValueCap float64 `json:"plausible_value_cap" yaml:"plausible_value_cap"` // Sanity-flag threshold, not a clamp
}

// Tables is the full immutable benchmark set. It is built once at startup
// (Default, optionally overridden from a file) and shared by reference;
// nothing in the engine mutates it after Validate.
type Tables struct {
	Sectors   map[string]SectorParams        `json:"sectors" yaml:"sectors"`
	Stages    map[models.Stage]StageParams   `json:"stages" yaml:"stages"`
	Locations map[string]float64             `json:"locations" yaml:"locations"` // Region risk multipliers
	Weights   map[models.Stage]MethodWeights `json:"method_weights" yaml:"method_weights"`

	TaxRate             float64 `json:"tax_rate" yaml:"tax_rate"`
	ProjectionYears     int     `json:"projection_years" yaml:"projection_years"`
	GrowthDecay         float64 `json:"growth_decay" yaml:"growth_decay"` // Per-year multiplier on growth rate
	TerminalFCFMultiple float64 `json:"terminal_fcf_multiple" yaml:"terminal_fcf_multiple"`
	PreRevenueThreshold float64 `json:"pre_revenue_threshold" yaml:"pre_revenue_threshold"` // Berkus inapplicable above this revenue
	RiskStep            float64 `json:"risk_step" yaml:"risk_step"`                         // Baseline fraction per risk-rating step
	DilutionPerRound    float64 `json:"dilution_per_round" yaml:"dilution_per_round"`
	MaxGrowthRate       float64 `json:"max_growth_rate" yaml:"max_growth_rate"` // Validation ceiling (5.0 == 500%)
}

// MethodWeights maps each applicable method to its stage-base weight.
// Weights for a stage sum to 1.0 before confidence adjustment.
type MethodWeights map[models.Method]float64

// Default returns the built-in benchmark tables. Callers treat the result as
// read-only; Load starts from a copy of these and applies file overrides.
func Default() *Tables {
	return &Tables{
		Sectors: map[string]SectorParams{
			"saas": {
				WACC: 0.12, TerminalGrowth: 0.025, TargetOperatingMargin: 0.25,
				DepreciationRate: 0.05, CapexRate: 0.06, NWCRate: 0.02,
				RevenueExitMultiple: 8.0, BerkusMultiplier: 1.25, Volatility: 1.1, IndustryBeta: 1.3,
			},
			"fintech": {
				WACC: 0.13, TerminalGrowth: 0.025, TargetOperatingMargin: 0.22,
				DepreciationRate: 0.04, CapexRate: 0.05, NWCRate: 0.03,
				RevenueExitMultiple: 6.5, BerkusMultiplier: 1.2, Volatility: 1.2, IndustryBeta: 1.4,
			},
			"marketplace": {
				WACC: 0.13, TerminalGrowth: 0.02, TargetOperatingMargin: 0.18,
				DepreciationRate: 0.04, CapexRate: 0.05, NWCRate: 0.03,
				RevenueExitMultiple: 5.0, BerkusMultiplier: 1.1, Volatility: 1.15, IndustryBeta: 1.35,
			},
			"ecommerce": {
				WACC: 0.12, TerminalGrowth: 0.02, TargetOperatingMargin: 0.12,
				DepreciationRate: 0.03, CapexRate: 0.04, NWCRate: 0.06,
				RevenueExitMultiple: 2.5, BerkusMultiplier: 0.95, Volatility: 1.0, IndustryBeta: 1.1,
			},
			"healthtech": {
				WACC: 0.14, TerminalGrowth: 0.03, TargetOperatingMargin: 0.20,
				DepreciationRate: 0.05, CapexRate: 0.07, NWCRate: 0.03,
				RevenueExitMultiple: 6.0, BerkusMultiplier: 1.15, Volatility: 1.05, IndustryBeta: 1.2,
			},
			"deeptech": {
				WACC: 0.15, TerminalGrowth: 0.03, TargetOperatingMargin: 0.22,
				DepreciationRate: 0.07, CapexRate: 0.09, NWCRate: 0.02,
				RevenueExitMultiple: 7.0, BerkusMultiplier: 1.2, Volatility: 1.3, IndustryBeta: 1.5,
			},
			"hardware": {
				WACC: 0.14, TerminalGrowth: 0.02, TargetOperatingMargin: 0.10,
				DepreciationRate: 0.08, CapexRate: 0.10, NWCRate: 0.08,
				RevenueExitMultiple: 2.0, BerkusMultiplier: 0.9, Volatility: 1.1, IndustryBeta: 1.2,
			},
			"other": {
				WACC: 0.13, TerminalGrowth: 0.02, TargetOperatingMargin: 0.15,
				DepreciationRate: 0.05, CapexRate: 0.06, NWCRate: 0.04,
				RevenueExitMultiple: 4.0, BerkusMultiplier: 1.0, Volatility: 1.0, IndustryBeta: 1.0,
			},
		},
		Stages: map[models.Stage]StageParams{
			models.StageIdea: {
				WACCPremium: 0.12, BerkusBase: 100_000, BerkusFactorMax: 250_000, BerkusCap: 1_000_000,
				YearsToExit: 8, TargetROI: 20, AssumedRoundSize: 250_000, PlausibleValueCap: 5_000_000,
			},
			models.StagePreSeed: {
				WACCPremium: 0.10, BerkusBase: 250_000, BerkusFactorMax: 500_000, BerkusCap: 2_500_000,
				YearsToExit: 7, TargetROI: 15, AssumedRoundSize: 500_000, PlausibleValueCap: 15_000_000,
			},
			models.StageSeed: {
				WACCPremium: 0.08, BerkusBase: 500_000, BerkusFactorMax: 500_000, BerkusCap: 3_000_000,
				YearsToExit: 6, TargetROI: 10, AssumedRoundSize: 2_000_000, PlausibleValueCap: 50_000_000,
			},
			models.StageSeriesA: {
				WACCPremium: 0.06, BerkusBase: 0, BerkusFactorMax: 0, BerkusCap: 0,
				YearsToExit: 5, TargetROI: 6, AssumedRoundSize: 8_000_000, PlausibleValueCap: 500_000_000,
			},
			models.StageSeriesB: {
				WACCPremium: 0.04, BerkusBase: 0, BerkusFactorMax: 0, BerkusCap: 0,
				YearsToExit: 4, TargetROI: 4, AssumedRoundSize: 20_000_000, PlausibleValueCap: 2_000_000_000,
			},
			models.StageGrowth: {
				WACCPremium: 0.02, BerkusBase: 0, BerkusFactorMax: 0, BerkusCap: 0,
				YearsToExit: 3, TargetROI: 3, AssumedRoundSize: 50_000_000, PlausibleValueCap: 10_000_000_000,
			},
		},
		Locations: map[string]float64{
			"north_america": 1.0,
			"europe":        0.9,
			"asia_pacific":  0.85,
			"latin_america": 0.8,
			"africa":        0.75,
		},
		Weights: map[models.Stage]MethodWeights{
			models.StageIdea: {
				models.MethodBerkus: 0.50, models.MethodScorecard: 0.30, models.MethodRiskFactorSummation: 0.20,
			},
			models.StagePreSeed: {
				models.MethodBerkus: 0.40, models.MethodScorecard: 0.35, models.MethodRiskFactorSummation: 0.25,
			},
			models.StageSeed: {
				models.MethodBerkus: 0.15, models.MethodScorecard: 0.30,
				models.MethodRiskFactorSummation: 0.20, models.MethodVCMethod: 0.35,
			},
			models.StageSeriesA: {
				models.MethodDCF: 0.30, models.MethodComparables: 0.25, models.MethodVCMethod: 0.25,
				models.MethodScorecard: 0.10, models.MethodRiskFactorSummation: 0.10,
			},
			models.StageSeriesB: {
				models.MethodDCF: 0.35, models.MethodComparables: 0.30, models.MethodVCMethod: 0.20,
				models.MethodScorecard: 0.08, models.MethodRiskFactorSummation: 0.07,
			},
			models.StageGrowth: {
				models.MethodDCF: 0.45, models.MethodComparables: 0.35, models.MethodVCMethod: 0.20,
			},
		},
		TaxRate:             0.25,
		ProjectionYears:     5,
		GrowthDecay:         0.85,
		TerminalFCFMultiple: 8.0,
		PreRevenueThreshold: 500_000,
		RiskStep:            0.125,
		DilutionPerRound:    0.22,
		MaxGrowthRate:       5.0,
	}
}

// Sector resolves sector parameters, falling back to "other" for unknown
// sectors rather than failing.
func (t *Tables) Sector(name string) SectorParams {
	if p, ok := t.Sectors[name]; ok {
		return p
	}
	return t.Sectors["other"]
}

// Stage resolves stage parameters. The second return is false for stages
// absent from the table.
func (t *Tables) Stage(stage models.Stage) (StageParams, bool) {
	p, ok := t.Stages[stage]
	return p, ok
}

// Location resolves a region risk multiplier. Unknown regions get the same
// conservative 0.8 default the original region table used.
func (t *Tables) Location(name string) float64 {
	if name == "" {
		return 1.0
	}
	if m, ok := t.Locations[name]; ok {
		return m
	}
	return 0.8
}

// MethodWeightsFor returns the stage-base weight table for a stage.
func (t *Tables) MethodWeightsFor(stage models.Stage) (MethodWeights, bool) {
	w, ok := t.Weights[stage]
	return w, ok
}

// Validate checks internal consistency of the tables. It runs once at load
// time so the calculators can assume well-formed parameters.
func (t *Tables) Validate() error {
	if _, ok := t.Sectors["other"]; !ok {
		return fmt.Errorf("benchmarks: sector table must include the \"other\" fallback")
	}
	for name, s := range t.Sectors {
		if s.WACC <= 0 {
			return fmt.Errorf("benchmarks: sector %q has non-positive WACC", name)
		}
		if s.TerminalGrowth >= s.WACC {
			return fmt.Errorf("benchmarks: sector %q terminal growth %.3f >= WACC %.3f", name, s.TerminalGrowth, s.WACC)
		}
		if s.Volatility <= 0 {
			return fmt.Errorf("benchmarks: sector %q has non-positive volatility", name)
		}
	}
	for stage, w := range t.Weights {
		sum := 0.0
		for m, v := range w {
			if v < 0 {
				return fmt.Errorf("benchmarks: negative weight %.3f for %s at stage %s", v, m, stage)
			}
			sum += v
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return fmt.Errorf("benchmarks: method weights for stage %s sum to %.6f, want 1.0", stage, sum)
		}
		if _, ok := t.Stages[stage]; !ok {
			return fmt.Errorf("benchmarks: weight table references unknown stage %s", stage)
		}
	}
	for stage, p := range t.Stages {
		if p.YearsToExit <= 0 {
			return fmt.Errorf("benchmarks: stage %s has non-positive years to exit", stage)
		}
		if p.TargetROI <= 0 {
			return fmt.Errorf("benchmarks: stage %s has non-positive target ROI", stage)
		}
	}
	if t.TaxRate < 0 || t.TaxRate >= 1 {
		return fmt.Errorf("benchmarks: tax rate %.3f out of range [0,1)", t.TaxRate)
	}
	if t.ProjectionYears <= 0 {
		return fmt.Errorf("benchmarks: projection years must be positive")
	}
	if t.GrowthDecay <= 0 || t.GrowthDecay > 1 {
		return fmt.Errorf("benchmarks: growth decay %.3f out of range (0,1]", t.GrowthDecay)
	}
	if t.DilutionPerRound < 0 || t.DilutionPerRound >= 1 {
		return fmt.Errorf("benchmarks: dilution per round %.3f out of range [0,1)", t.DilutionPerRound)
	}
	return nil
}
