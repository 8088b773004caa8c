package marketdata

import (
	"context"
	"errors"
	"testing"
)

type failingProvider struct{}

func (failingProvider) Fetch(ctx context.Context) (Snapshot, error) {
	return Snapshot{}, errors.New("upstream unavailable")
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	want := DefaultSnapshot()

	if got := Resolve(ctx, nil); got != want {
		t.Errorf("nil provider should resolve to the default snapshot, got %+v", got)
	}
	if got := Resolve(ctx, failingProvider{}); got != want {
		t.Errorf("failing provider should resolve to the default snapshot, got %+v", got)
	}

	custom := Snapshot{RiskFreeRate: 0.045, MarketRiskPremium: 0.06, MarketVolatility: 1.4, IndustryBeta: 1.1}
	if got := Resolve(ctx, StaticProvider{Snapshot: custom}); got != custom {
		t.Errorf("Static provider snapshot not passed through: %+v", got)
	}

	// A provider returning zero volatility gets the neutral level filled in.
	flat := Snapshot{RiskFreeRate: 0.04, MarketRiskPremium: 0.05}
	got := Resolve(ctx, StaticProvider{Snapshot: flat})
	if got.MarketVolatility != 1.0 {
		t.Errorf("Zero volatility should normalize to 1.0, got %f", got.MarketVolatility)
	}
}
