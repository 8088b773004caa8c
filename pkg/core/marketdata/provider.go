package marketdata

import "context"

// Snapshot carries the live market parameters the engine consumes. The
// engine itself performs no fetching; callers resolve a Snapshot up front
// and pass it in.
type Snapshot struct {
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium"`
	MarketVolatility  float64 `json:"market_volatility"` // Relative level, 1.0 = average
	IndustryBeta      float64 `json:"industry_beta"`     // 0 means "use the sector table"
}

// Provider retrieves current market data. Implementations may hit an
// external service; the engine only ever sees the resulting Snapshot.
type Provider interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// DefaultSnapshot is the documented fallback used when no live data is
// available: 3% risk-free rate, 5.5% market risk premium, average volatility.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		RiskFreeRate:      0.03,
		MarketRiskPremium: 0.055,
		MarketVolatility:  1.0,
	}
}

// StaticProvider always returns a fixed Snapshot. It is the fallback
// Provider and the one tests inject.
type StaticProvider struct {
	Snapshot Snapshot
}

func (p StaticProvider) Fetch(ctx context.Context) (Snapshot, error) {
	return p.Snapshot, nil
}

// Resolve fetches from the provider, falling back to DefaultSnapshot when
// the provider is nil or fails. Failures are absorbed here: the engine
// never retries, per the error-handling contract.
func Resolve(ctx context.Context, p Provider) Snapshot {
	if p == nil {
		return DefaultSnapshot()
	}
	snap, err := p.Fetch(ctx)
	if err != nil {
		return DefaultSnapshot()
	}
	if snap.MarketVolatility <= 0 {
		snap.MarketVolatility = 1.0
	}
	return snap
}
