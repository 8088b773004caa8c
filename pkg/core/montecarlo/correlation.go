package montecarlo

import (
	"fmt"
	"math"

	"startup_valuation/pkg/models"
)

// Variables tracked by the simulation, in matrix order.
const (
	varRevenue = iota
	varMargin
	varGrowth
	varMarketSize
	numVariables
)

// VariableNames lists the simulated variables in matrix order.
var VariableNames = [numVariables]string{"revenue", "operating_margin", "growth_rate", "market_size"}

// Domain base correlations between the tracked variables. Revenue moves
// with growth and market size; margin trades off mildly against growth.
var baseCorrelation = [numVariables][numVariables]float64{
	{1.00, 0.30, 0.50, 0.40},
	{0.30, 1.00, -0.20, 0.10},
	{0.50, -0.20, 1.00, 0.30},
	{0.40, 0.10, 0.30, 1.00},
}

// BuildCorrelationMatrix produces the correlation matrix for a run. Higher
// sector or market volatility weakens the cross-variable structure; the
// adjustment shrinks every off-diagonal entry by a common factor in (0,1],
// which keeps the matrix symmetric, unit-diagonal, and positive definite.
func BuildCorrelationMatrix(sectorVolatility, marketVolatility float64) [][]float64 {
	if sectorVolatility <= 0 {
		sectorVolatility = 1
	}
	if marketVolatility <= 0 {
		marketVolatility = 1
	}
	combined := sectorVolatility * marketVolatility
	shrink := math.Max(0.6, math.Min(1.0, 1/(0.6+0.4*combined)))

	m := make([][]float64, numVariables)
	for i := range m {
		m[i] = make([]float64, numVariables)
		for j := range m[i] {
			if i == j {
				m[i][j] = 1
			} else {
				m[i][j] = baseCorrelation[i][j] * shrink
			}
		}
	}
	return m
}

// ValidateCorrelationMatrix checks shape, symmetry, and the unit diagonal.
// Positive-semi-definiteness is enforced later by the Cholesky factorization
// itself, which fails hard on any negative radicand.
func ValidateCorrelationMatrix(m [][]float64) error {
	n := len(m)
	if n == 0 {
		return &models.NumericalError{Op: "correlation", Detail: "empty matrix"}
	}
	for i, row := range m {
		if len(row) != n {
			return &models.NumericalError{Op: "correlation", Detail: fmt.Sprintf("row %d has %d columns, want %d", i, len(row), n)}
		}
		if math.Abs(m[i][i]-1) > 1e-9 {
			return &models.NumericalError{Op: "correlation", Detail: fmt.Sprintf("diagonal entry [%d][%d] = %f, want 1", i, i, m[i][i])}
		}
		for j := 0; j < i; j++ {
			if math.Abs(m[i][j]-m[j][i]) > 1e-9 {
				return &models.NumericalError{Op: "correlation", Detail: fmt.Sprintf("matrix not symmetric at [%d][%d]", i, j)}
			}
			if m[i][j] < -1 || m[i][j] > 1 {
				return &models.NumericalError{Op: "correlation", Detail: fmt.Sprintf("correlation [%d][%d] = %f outside [-1,1]", i, j, m[i][j])}
			}
		}
	}
	return nil
}
