package montecarlo

import (
	"fmt"
	"math"

	"startup_valuation/pkg/models"
)

// Cholesky factors a symmetric positive-semi-definite matrix M into the
// lower-triangular L with L·Lᵗ = M. A negative radicand (matrix not PSD) or
// a zero pivot is a hard NumericalError; the result is never silently
// coerced to NaN or zero.
func Cholesky(m [][]float64) ([][]float64, error) {
	if err := ValidateCorrelationMatrix(m); err != nil {
		return nil, err
	}
	n := len(m)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := 0.0
			for k := 0; k < j; k++ {
				sum += l[i][k] * l[j][k]
			}
			if i == j {
				radicand := m[i][i] - sum
				if radicand < 0 {
					return nil, &models.NumericalError{
						Op:     "cholesky",
						Detail: fmt.Sprintf("negative radicand %g at row %d; matrix is not positive semi-definite", radicand, i),
					}
				}
				l[i][i] = math.Sqrt(radicand)
			} else {
				if l[j][j] == 0 {
					return nil, &models.NumericalError{
						Op:     "cholesky",
						Detail: fmt.Sprintf("zero pivot at row %d; matrix is rank-deficient", j),
					}
				}
				l[i][j] = (m[i][j] - sum) / l[j][j]
			}
		}
	}
	return l, nil
}

// correlate transforms independent standard normals into correlated ones:
// z_corr = L·z_indep. The result is written into out to avoid per-iteration
// allocation.
func correlate(l [][]float64, z, out []float64) {
	for i := range l {
		sum := 0.0
		for k := 0; k <= i; k++ {
			sum += l[i][k] * z[k]
		}
		out[i] = sum
	}
}
