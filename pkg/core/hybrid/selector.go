package hybrid

import (
	"fmt"
	"sort"

	"startup_valuation/pkg/core/benchmarks"
	"startup_valuation/pkg/core/marketdata"
	"startup_valuation/pkg/core/valuation"
	"startup_valuation/pkg/models"
)

// ApplicableMethods returns the stage-base weight table for the input's
// stage. Pre-revenue stages carry only the qualitative methods; revenue
// stages add DCF and comparables with weight shifting toward them as the
// company matures.
func ApplicableMethods(stage models.Stage, tables *benchmarks.Tables) (benchmarks.MethodWeights, error) {
	weights, ok := tables.MethodWeightsFor(stage)
	if !ok {
		return nil, &models.ValidationError{
			Violations: []string{fmt.Sprintf("unknown stage %q", stage)},
		}
	}
	return weights, nil
}

// methodRunner executes one calculator against a fixed input.
type methodRunner struct {
	method models.Method
	run    func(models.ValuationInput) (*models.MethodResult, error)
}

// runnersFor binds each applicable method to its calculator. The returned
// slice is ordered by method name so downstream iteration is deterministic.
func runnersFor(weights benchmarks.MethodWeights, tables *benchmarks.Tables, market marketdata.Snapshot) []methodRunner {
	runners := make([]methodRunner, 0, len(weights))
	for method := range weights {
		switch method {
		case models.MethodDCF:
			runners = append(runners, methodRunner{method, func(in models.ValuationInput) (*models.MethodResult, error) {
				return valuation.ComputeDCF(in, tables, market)
			}})
		case models.MethodBerkus:
			runners = append(runners, methodRunner{method, func(in models.ValuationInput) (*models.MethodResult, error) {
				return valuation.ComputeBerkus(in, tables)
			}})
		case models.MethodScorecard:
			runners = append(runners, methodRunner{method, func(in models.ValuationInput) (*models.MethodResult, error) {
				return valuation.ComputeScorecard(in, tables)
			}})
		case models.MethodRiskFactorSummation:
			runners = append(runners, methodRunner{method, func(in models.ValuationInput) (*models.MethodResult, error) {
				return valuation.ComputeRiskFactorSummation(in, tables)
			}})
		case models.MethodVCMethod:
			runners = append(runners, methodRunner{method, func(in models.ValuationInput) (*models.MethodResult, error) {
				return valuation.ComputeVCMethod(in, tables)
			}})
		case models.MethodComparables:
			runners = append(runners, methodRunner{method, func(in models.ValuationInput) (*models.MethodResult, error) {
				return valuation.ComputeComparables(in, tables)
			}})
		}
	}
	sort.Slice(runners, func(i, j int) bool { return runners[i].method < runners[j].method })
	return runners
}
