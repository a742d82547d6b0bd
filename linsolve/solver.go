package linsolve

import (
	"errors"
	"fmt"
	"math"

	iterative "gonum.org/v1/exp/linsolve"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godiffusion/utils"
)

// SolveError reports why a solve did not converge
type SolveError struct {
	Reason     string
	Iterations int
	Residual   float64
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("linear solver failed: %s after %d iterations, residual %.3e",
		e.Reason, e.Iterations, e.Residual)
}

// Solver solves A·x = b for one matrix and any number of right hand sides
type Solver struct {
	Params     Parameters
	Iterations int     // of the last solve, restart cycles for GMRES
	Residual   float64 // final ||b - A·x||

	A  utils.CSR
	n  int
	pc preconditioner // nil without preconditioning
}

func NewSolver(p Parameters) (*Solver, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Solver{Params: p}, nil
}

// SetMatrix installs A and builds the preconditioner
func (s *Solver) SetMatrix(A utils.CSR) (err error) {
	nr, nc := A.Dims()
	if nr != nc {
		return fmt.Errorf("matrix is %d x %d, not square", nr, nc)
	}
	s.A, s.n, s.pc = A, nr, nil
	if s.Params.Method == LU {
		return
	}
	if s.Params.Method == CG {
		for i, d := range A.Diagonal() {
			if d <= 0 {
				return fmt.Errorf("cg needs a positive definite matrix, diagonal %d is %g", i, d)
			}
		}
	}
	switch s.Params.Preconditioner {
	case Jacobi:
		s.pc, err = newJacobi(A)
	case ILU0:
		s.pc, err = newILU0(A)
	}
	return
}

// Solve overwrites x, which holds the initial guess on entry
func (s *Solver) Solve(b, x []float64) error {
	if s.n == 0 && s.A.M == nil {
		return fmt.Errorf("no matrix set")
	}
	if len(b) != s.n || len(x) != s.n {
		return fmt.Errorf("system of size %d given vectors of length %d and %d", s.n, len(b), len(x))
	}
	s.Iterations, s.Residual = 0, 0
	if s.n == 0 {
		return nil
	}
	if s.Params.Method == LU {
		return s.denseLU(b, x)
	}
	bnorm := floats.Norm(b, 2)
	// Stop at ||r|| < tol·||b||, the weaker of the two tolerances
	tol := math.Max(s.Params.RelativeTolerance, s.Params.AbsoluteTolerance/bnorm)
	if bnorm == 0 || tol >= 1 {
		for i := range x {
			x[i] = 0
		}
		s.Residual = bnorm
		return nil
	}
	var (
		method   iterative.Method
		settings = &iterative.Settings{
			InitX:         mat.NewVecDense(s.n, append([]float64(nil), x...)),
			Dst:           mat.NewVecDense(s.n, x),
			Tolerance:     math.Max(tol, 1.e-16),
			MaxIterations: s.Params.MaxIterations,
		}
	)
	if s.pc != nil {
		settings.PreconSolve = s.preconSolve
	}
	switch s.Params.Method {
	case CG:
		method = &iterative.CG{}
	case BiCGStab:
		method = &iterative.BiCGStab{}
	default:
		method = &iterative.GMRES{Restart: min(s.Params.Restart, s.n)}
	}
	result, err := iterative.Iterative(s.A, mat.NewVecDense(s.n, b), method, settings)
	if result != nil {
		s.Iterations = result.Stats.Iterations
	}
	s.Residual = s.residual(b, x, make([]float64, s.n))
	var breakdown *iterative.BreakdownError
	switch {
	case errors.Is(err, iterative.ErrIterationLimit):
		return s.fail("maximum iterations reached")
	case errors.As(err, &breakdown):
		return s.fail(breakdown.Error())
	case err != nil:
		return s.fail(err.Error())
	case utils.IsNan(x):
		return s.fail("non-finite solution")
	}
	return nil
}

// preconSolve adapts the preconditioner to the reverse communication of the
// iterative methods
func (s *Solver) preconSolve(dst *mat.VecDense, trans bool, rhs mat.Vector) error {
	var (
		r = make([]float64, rhs.Len())
		z = make([]float64, rhs.Len())
	)
	for i := range r {
		r[i] = rhs.AtVec(i)
	}
	if trans {
		s.pc.ApplyTrans(r, z)
	} else {
		s.pc.Apply(r, z)
	}
	for i, v := range z {
		dst.SetVec(i, v)
	}
	return nil
}

// residual sets r = b - A·x and returns its norm
func (s *Solver) residual(b, x, r []float64) float64 {
	s.A.MulVec(x, r)
	floats.SubTo(r, b, r)
	return floats.Norm(r, 2)
}

func (s *Solver) fail(reason string) error {
	return &SolveError{Reason: reason, Iterations: s.Iterations, Residual: s.Residual}
}
