package linsolve

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// denseLU factors A as a dense matrix, for small systems and debugging
func (s *Solver) denseLU(b, x []float64) error {
	var (
		lu mat.LU
		A  = s.A.ToDense()
	)
	lu.Factorize(A.M)
	if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > mat.ConditionTolerance {
		s.Residual = math.Inf(1)
		return s.fail("singular matrix")
	}
	xv := mat.NewVecDense(s.n, x)
	if err := lu.SolveVecTo(xv, false, mat.NewVecDense(s.n, b)); err != nil {
		s.Residual = math.Inf(1)
		return s.fail(err.Error())
	}
	s.Iterations = 1
	s.Residual = s.residual(b, x, make([]float64, s.n))
	return nil
}
