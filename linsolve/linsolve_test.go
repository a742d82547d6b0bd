package linsolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godiffusion/utils"
)

// tridiagonal matrix with the given sub, main and super diagonal values
func tridiag(n int, lo, d, up float64) utils.CSR {
	A := utils.NewDOK(n, n)
	for i := 0; i < n; i++ {
		A.Set(i, i, d)
		if i > 0 {
			A.Set(i, i-1, lo)
		}
		if i < n-1 {
			A.Set(i, i+1, up)
		}
	}
	return A.ToCSR()
}

// rhs for a known solution
func manufacture(A utils.CSR) (b, exact []float64) {
	n, _ := A.Dims()
	exact = make([]float64, n)
	for i := range exact {
		exact[i] = float64(i%7) - 2.5
	}
	b = make([]float64, n)
	A.MulVec(exact, b)
	return
}

func solve(t *testing.T, A utils.CSR, method, pc string) {
	t.Helper()
	b, exact := manufacture(A)
	s, err := NewSolver(NewParameters(method, pc))
	require.NoError(t, err)
	require.NoError(t, s.SetMatrix(A))
	x := make([]float64, len(b))
	require.NoError(t, s.Solve(b, x), s.Params.String())
	assert.InDeltaSlice(t, exact, x, 1.e-7, s.Params.String())
	assert.Greater(t, s.Iterations, 0)
}

func TestSymmetricPositiveDefinite(t *testing.T) {
	A := tridiag(40, -1, 2, -1)
	for _, method := range []string{CG, BiCGStab, GMRES, LU} {
		for _, pc := range []string{None, Jacobi, ILU0} {
			solve(t, A, method, pc)
		}
	}
}

func TestNonSymmetric(t *testing.T) {
	A := tridiag(40, -1.5, 3, -0.5)
	for _, method := range []string{BiCGStab, GMRES, LU} {
		for _, pc := range []string{None, Jacobi, ILU0} {
			solve(t, A, method, pc)
		}
	}
}

func TestSaddlePointWithZeroDiagonal(t *testing.T) {
	A := utils.NewDOK(3, 3)
	for _, e := range [][3]float64{{0, 0, 2}, {0, 1, 1}, {1, 1, 3}, {1, 2, 1}, {2, 0, 1}, {2, 1, 1}} {
		A.Set(int(e[0]), int(e[1]), e[2])
	}
	// (2,2) is zero: Jacobi and ILU(0) cannot be built, plain GMRES works
	solve(t, A.ToCSR(), GMRES, None)

	s, err := NewSolver(NewParameters(GMRES, Jacobi))
	require.NoError(t, err)
	assert.Error(t, s.SetMatrix(A.ToCSR()))
	s, err = NewSolver(NewParameters(BiCGStab, ILU0))
	require.NoError(t, err)
	assert.Error(t, s.SetMatrix(A.ToCSR()))
}

func TestFailures(t *testing.T) {
	_, err := NewSolver(NewParameters("qmr", None))
	assert.Error(t, err)
	_, err = NewSolver(NewParameters(CG, "amg"))
	assert.Error(t, err)

	// Not enough iterations
	A := tridiag(100, -1, 2, -1)
	p := NewParameters(CG, None)
	p.MaxIterations = 3
	s, err := NewSolver(p)
	require.NoError(t, err)
	require.NoError(t, s.SetMatrix(A))
	b, _ := manufacture(A)
	err = s.Solve(b, make([]float64, 100))
	var se *SolveError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Iterations)
	assert.Greater(t, se.Residual, 0.)

	// Singular
	S := utils.NewDOK(2, 2)
	S.Set(0, 0, 1)
	S.Set(0, 1, 1)
	S.Set(1, 0, 1)
	S.Set(1, 1, 1)
	s, err = NewSolver(NewParameters(LU, None))
	require.NoError(t, err)
	require.NoError(t, s.SetMatrix(S.ToCSR()))
	err = s.Solve([]float64{1, 2}, make([]float64, 2))
	assert.True(t, errors.As(err, &se))

	// Indefinite for CG
	s, err = NewSolver(NewParameters(CG, None))
	require.NoError(t, err)
	assert.Error(t, s.SetMatrix(tridiag(4, 0, -1, 0)))

	require.NoError(t, s.SetMatrix(tridiag(4, -1, 2, -1)))
	assert.Error(t, s.Solve([]float64{1}, make([]float64, 4)))
}

func TestZeroRightHandSide(t *testing.T) {
	s, err := NewSolver(NewParameters(GMRES, None))
	require.NoError(t, err)
	require.NoError(t, s.SetMatrix(tridiag(5, -1, 2, -1)))
	x := []float64{1, 2, 3, 4, 5}
	require.NoError(t, s.Solve(make([]float64, 5), x))
	assert.Equal(t, make([]float64, 5), x)
}

func TestParameters(t *testing.T) {
	p := Parameters{Method: BiCGStab}.Merge(NewParameters(CG, Jacobi))
	assert.Equal(t, BiCGStab, p.Method)
	assert.Equal(t, Jacobi, p.Preconditioner)
	assert.Equal(t, 5000, p.MaxIterations)
	assert.Equal(t, "gmres+none(50)", NewParameters(GMRES, None).String())
	assert.Equal(t, "lu", NewParameters(LU, None).String())
}

// ILU(0) of a tridiagonal matrix is its exact LU factorization
func TestILU0Transpose(t *testing.T) {
	A := tridiag(10, -1.5, 3, -0.5)
	pc, err := newILU0(A)
	require.NoError(t, err)
	_, exact := manufacture(A)
	r := mat.NewVecDense(10, nil)
	A.MulVecTo(r, true, mat.NewVecDense(10, exact))
	z := make([]float64, 10)
	pc.ApplyTrans(r.RawVector().Data, z)
	assert.InDeltaSlice(t, exact, z, 1.e-12)

	b, _ := manufacture(A)
	pc.Apply(b, z)
	assert.InDeltaSlice(t, exact, z, 1.e-12)
}

// A restart longer than the system is cut to its size
func TestGMRESRestartLongerThanSystem(t *testing.T) {
	p := NewParameters(GMRES, ILU0)
	p.Restart = 500
	s, err := NewSolver(p)
	require.NoError(t, err)
	A := tridiag(8, -1.5, 3, -0.5)
	require.NoError(t, s.SetMatrix(A))
	b, exact := manufacture(A)
	x := make([]float64, 8)
	require.NoError(t, s.Solve(b, x))
	assert.InDeltaSlice(t, exact, x, 1.e-9)
	assert.Less(t, s.Residual, 1.e-9)
}
