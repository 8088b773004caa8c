package models

import "strings"

// Stage identifies the funding stage of the company being valued.
// Stages gate which valuation methods apply and select benchmark parameters.
type Stage string

const (
	StageIdea    Stage = "idea"
	StagePreSeed Stage = "pre-seed"
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series-a"
	StageSeriesB Stage = "series-b"
	StageGrowth  Stage = "growth"
)

// ParseStage normalizes a user-facing stage string ("Series A", "pre_seed")
// into a canonical Stage. Returns false if the stage is unknown.
func ParseStage(s string) (Stage, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	norm = strings.ReplaceAll(norm, " ", "-")
	switch Stage(norm) {
	case StageIdea, StagePreSeed, StageSeed, StageSeriesA, StageSeriesB, StageGrowth:
		return Stage(norm), true
	}
	return "", false
}

// PreRevenue reports whether the stage is treated as pre-revenue for
// method selection (idea and pre-seed).
func (s Stage) PreRevenue() bool {
	return s == StageIdea || s == StagePreSeed
}

// Method identifies one of the quantitative valuation methods.
type Method string

const (
	MethodDCF                 Method = "dcf"
	MethodBerkus              Method = "berkus"
	MethodScorecard           Method = "scorecard"
	MethodRiskFactorSummation Method = "risk_factor_summation"
	MethodVCMethod            Method = "vc_method"
	MethodComparables         Method = "comparables"
)

// BerkusRatings holds the five 0-10 risk-reduction ratings used by the
// Berkus method.
type BerkusRatings struct {
	SoundIdea     float64 `json:"sound_idea"`
	Prototype     float64 `json:"prototype"`
	Team          float64 `json:"team"`
	Relationships float64 `json:"relationships"`
	Rollout       float64 `json:"rollout"`
}

// FactorRating is one weighted qualitative rating for the scorecard method.
// Rating is on a 0-10 scale where 5 is peer-average.
type FactorRating struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Weight float64 `json:"weight"`
}

// RiskRating is one rated risk dimension for risk-factor summation.
// Rating is 1-5 where 3 is neutral; Weight is the relative importance.
type RiskRating struct {
	Name   string  `json:"name"`
	Rating int     `json:"rating"`
	Weight float64 `json:"weight"`
}

// ComparableCompany is one peer used by the comparable-company method.
// Multiples are enterprise-value multiples already normalized by the caller.
type ComparableCompany struct {
	Name            string  `json:"name"`
	Sector          string  `json:"sector"`
	Stage           Stage   `json:"stage,omitempty"`
	Revenue         float64 `json:"revenue"`
	EBITDA          float64 `json:"ebitda"`
	RevenueMultiple float64 `json:"revenue_multiple"`
	EBITDAMultiple  float64 `json:"ebitda_multiple"`
	GrowthRate      float64 `json:"growth_rate"`
}

// ValuationInput is the immutable normalized snapshot every calculator
// consumes. It is passed by value; calculators never mutate it. All currency
// amounts are USD, all rates are decimal fractions (0.25 == 25%).
type ValuationInput struct {
	CompanyName string `json:"company_name,omitempty"`
	Sector      string `json:"sector"`
	Stage       Stage  `json:"stage"`
	Location    string `json:"location,omitempty"`

	// Financials
	Revenue         float64 `json:"revenue"`          // Trailing annual revenue
	GrowthRate      float64 `json:"growth_rate"`      // YoY, 1.2 == 120%
	GrossMargin     float64 `json:"gross_margin"`     // Fraction of revenue
	OperatingMargin float64 `json:"operating_margin"` // EBIT margin, may be negative
	EBITDA          float64 `json:"ebitda"`
	BurnRate        float64 `json:"burn_rate"`     // Monthly net burn
	RunwayMonths    float64 `json:"runway_months"` // Months of cash left
	CashBalance     float64 `json:"cash_balance"`
	NetDebt         float64 `json:"net_debt"`

	// Scale / traction
	FoundersCount int     `json:"founders_count"`
	EmployeeCount int     `json:"employee_count"`
	CustomerCount int     `json:"customer_count"`
	MarketSize    float64 `json:"market_size"` // TAM

	// Unit economics (optional; zero means unknown)
	CAC float64 `json:"cac,omitempty"`
	LTV float64 `json:"ltv,omitempty"`

	// Method-specific inputs
	PrototypeExists   bool                `json:"prototype_exists"`
	BerkusRatings     *BerkusRatings      `json:"berkus_ratings,omitempty"`
	BaselineValuation float64             `json:"baseline_valuation,omitempty"`
	ScorecardFactors  []FactorRating      `json:"scorecard_factors,omitempty"`
	RiskRatings       []RiskRating        `json:"risk_ratings,omitempty"`
	Comparables       []ComparableCompany `json:"comparables,omitempty"`
}

// MethodResult is the output of one calculator. Calculators produce results
// independently and never read another method's result.
type MethodResult struct {
	Method      Method               `json:"method"`
	EquityValue float64              `json:"equity_value"` // Always >= 0
	Confidence  float64              `json:"confidence"`   // 0-100
	Breakdown   map[string]float64   `json:"breakdown"`
	Series      map[string][]float64 `json:"series,omitempty"` // Year-by-year projections, where applicable
	Assumptions map[string]float64   `json:"assumptions"`
	RiskFactors map[string]float64   `json:"risk_factors"` // Named risks, 0-1 each
	Insights    []string             `json:"insights"`
}

// Percentiles holds the nearest-rank percentile ladder of simulated outcomes.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// HistogramBucket is one bin of the normalized outcome histogram.
type HistogramBucket struct {
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"` // Count / iterations
}

// SensitivityEntry ranks one tracked variable by its absolute Pearson
// correlation with the simulated valuation.
type SensitivityEntry struct {
	Variable    string  `json:"variable"`
	Correlation float64 `json:"correlation"`
	Impact      float64 `json:"impact"` // |Correlation|
}

// ConfidenceInterval is the central interval of simulated outcomes at the
// requested confidence level.
type ConfidenceInterval struct {
	Level float64 `json:"level"` // e.g. 0.80
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// SimulationResult is the output of one Monte Carlo run.
type SimulationResult struct {
	RequestID     string             `json:"request_id"`
	Iterations    int                `json:"iterations"`
	Seed          int64              `json:"seed"`
	ExpectedValue float64            `json:"expected_value"`
	Percentiles   Percentiles        `json:"percentiles"`
	Interval      ConfidenceInterval `json:"confidence_interval"`
	Histogram     []HistogramBucket  `json:"histogram"`
	Sensitivity   []SensitivityEntry `json:"sensitivity_analysis"`
	Volatility    map[string]float64 `json:"volatility_measures"` // Coefficient of variation per variable
}

// ScenarioBands are the conservative/base/optimistic valuation envelope.
type ScenarioBands struct {
	Conservative float64 `json:"conservative"`
	Base         float64 `json:"base"`
	Optimistic   float64 `json:"optimistic"`
}

// SanityFlag is a non-fatal plausibility warning attached to a HybridResult.
type SanityFlag struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HybridResult is the merged output of all surviving methods.
type HybridResult struct {
	RequestID         string                   `json:"request_id"`
	Stage             Stage                    `json:"stage"`
	MethodResults     map[Method]*MethodResult `json:"per_method_results"`
	FailedMethods     map[Method]string        `json:"failed_methods,omitempty"` // Method -> failure reason
	Weights           map[Method]float64       `json:"weights"`                  // Sum to 1.0 over surviving methods
	WeightedAverage   float64                  `json:"weighted_average"`
	Scenarios         ScenarioBands            `json:"scenarios"`
	OverallConfidence float64                  `json:"overall_confidence"` // 0-100
	SanityFlags       []SanityFlag             `json:"sanity_flags,omitempty"`
}
