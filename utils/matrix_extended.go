package utils

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

var ErrSingular = errors.New("matrix is singular")

// Matrix is a small dense matrix used for element-local operators.
type Matrix struct {
	M        *mat.Dense
	readOnly bool
	name     string
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v\n", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{
		m,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func NewIdentity(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.M.Set(i, i, 1)
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) Data() []float64           { return m.M.RawMatrix().Data }

// Chainable methods (extended)
func (m *Matrix) SetReadOnly(name ...string) Matrix {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m *Matrix) SetWritable() Matrix {
	m.readOnly = false
	return *m
}

func (m Matrix) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, m.Data())
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	R.M.Copy(m.M.T())
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.M.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return R
}

func (m Matrix) MulVec(x []float64) (y []float64) {
	var (
		nr, _ = m.Dims()
	)
	y = make([]float64, nr)
	mat.NewVecDense(nr, y).MulVec(m.M, mat.NewVecDense(len(x), x))
	return
}

func (m Matrix) Add(A Matrix) (R Matrix) { // Does not change receiver
	R = m.Copy()
	R.M.Add(m.M, A.M)
	return
}

func (m Matrix) Subtract(A Matrix) (R Matrix) { // Does not change receiver
	R = m.Copy()
	R.M.Sub(m.M, A.M)
	return
}

func (m Matrix) Scale(a float64) (R Matrix) { // Does not change receiver
	R = m.Copy()
	R.M.Scale(a, m.M)
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) AddAt(i, j int, val float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m Matrix) SetRow(i int, row []float64) Matrix { // Changes receiver
	m.checkWritable()
	m.M.SetRow(i, row)
	return m
}

func (m Matrix) Row(i int) (row []float64) {
	_, nc := m.Dims()
	row = make([]float64, nc)
	mat.Row(row, i, m.M)
	return
}

func (m Matrix) Col(j int) (col []float64) {
	nr, _ := m.Dims()
	col = make([]float64, nr)
	mat.Col(col, j, m.M)
	return
}

func (m Matrix) Trace() float64 {
	var (
		nr, nc = m.Dims()
		tr     float64
	)
	for i := 0; i < nr && i < nc; i++ {
		tr += m.M.At(i, i)
	}
	return tr
}

func (m Matrix) FrobeniusNorm() float64 {
	return mat.Norm(m.M, 2)
}

// Max absolute entry
func (m Matrix) MaxAbs() (max float64) {
	for _, val := range m.Data() {
		if math.Abs(val) > max {
			max = math.Abs(val)
		}
	}
	return
}

func (m Matrix) IsSymmetric(tol float64) bool {
	nr, nc := m.Dims()
	if nr != nc {
		return false
	}
	for i := 0; i < nr; i++ {
		for j := i + 1; j < nc; j++ {
			if math.Abs(m.M.At(i, j)-m.M.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		err = fmt.Errorf("unable to invert a %dx%d matrix: %w", nr, nc, ErrSingular)
		return
	}
	R = NewMatrix(nr, nc)
	if ierr := R.M.Inverse(m.M); ierr != nil {
		err = fmt.Errorf("%v: %w", ierr, ErrSingular)
	}
	return
}

func (m Matrix) ConditionNumber() float64 {
	var (
		svd mat.SVD
	)
	if ok := svd.Factorize(m.M, mat.SVDNone); !ok {
		return math.Inf(1)
	}
	return svd.Cond()
}

func (m Matrix) Print(msgI ...string) (o string) {
	var (
		name = ""
	)
	if len(msgI) != 0 {
		name = msgI[0]
	}
	o = fmt.Sprintf("%s = \n%10.8v\n", name, mat.Formatted(m.M, mat.Squeeze()))
	return
}
