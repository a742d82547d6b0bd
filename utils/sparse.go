package utils

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK accumulates a global sparse matrix one entry at a time.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) Set(i, j int, val float64) { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, val)
}

// AddAt accumulates, contributions are never overwritten
func (m DOK) AddAt(i, j int, val float64) { // Changes receiver
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// ToCSR compresses the receiver, with column indices sorted within each row.
func (m DOK) ToCSR() CSR {
	var (
		nr, nc = m.Dims()
		raw    = m.M.ToCSR().RawMatrix()
		indptr = make([]int, nr+1)
		ind    = make([]int, len(raw.Ind))
		data   = make([]float64, len(raw.Data))
	)
	copy(indptr, raw.Indptr)
	for i := 0; i < nr; i++ {
		lo, hi := raw.Indptr[i], raw.Indptr[i+1]
		perm := make([]int, hi-lo)
		for k := range perm {
			perm[k] = lo + k
		}
		sort.Slice(perm, func(a, b int) bool { return raw.Ind[perm[a]] < raw.Ind[perm[b]] })
		for k, p := range perm {
			ind[lo+k] = raw.Ind[p]
			data[lo+k] = raw.Data[p]
		}
	}
	return CSR{
		M:        sparse.NewCSR(nr, nc, indptr, ind, data),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

// CSR is the compressed form handed to the linear solvers.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

func NewCSR(nr, nc int, indptr, ind []int, data []float64) (R CSR) {
	R = CSR{
		sparse.NewCSR(nr, nc, indptr, ind, data),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64               { return m.RawMatrix().Data }
func (m CSR) NNZ() int                      { return len(m.RawMatrix().Data) }

// At uses a binary search over the sorted row
func (m CSR) At(i, j int) float64 {
	var (
		raw    = m.RawMatrix()
		lo, hi = raw.Indptr[i], raw.Indptr[i+1]
	)
	k := lo + sort.SearchInts(raw.Ind[lo:hi], j)
	if k < hi && raw.Ind[k] == j {
		return raw.Data[k]
	}
	return 0
}

// MulVec computes y = A·x
func (m CSR) MulVec(x, y []float64) {
	var (
		raw   = m.RawMatrix()
		nr, _ = m.Dims()
	)
	for i := 0; i < nr; i++ {
		var sum float64
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			sum += raw.Data[k] * x[raw.Ind[k]]
		}
		y[i] = sum
	}
}

// MulVecTo stores A·x, or Aᵀ·x when trans is set, in dst
func (m CSR) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
		xs     = make([]float64, x.Len())
	)
	for i := range xs {
		xs[i] = x.AtVec(i)
	}
	if !trans {
		ys := make([]float64, nr)
		m.MulVec(xs, ys)
		dst.CopyVec(mat.NewVecDense(nr, ys))
		return
	}
	ys := make([]float64, nc)
	for i := 0; i < nr; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			ys[raw.Ind[k]] += raw.Data[k] * xs[i]
		}
	}
	dst.CopyVec(mat.NewVecDense(nc, ys))
}

func (m CSR) Diagonal() (diag []float64) {
	nr, _ := m.Dims()
	diag = make([]float64, nr)
	for i := range diag {
		diag[i] = m.At(i, i)
	}
	return
}

// DoRow calls fn for each stored entry of row i, in column order
func (m CSR) DoRow(i int, fn func(j int, v float64)) {
	raw := m.RawMatrix()
	for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
		fn(raw.Ind[k], raw.Data[k])
	}
}

func (m CSR) ToDense() (R Matrix) {
	nr, nc := m.Dims()
	R = NewMatrix(nr, nc)
	for i := 0; i < nr; i++ {
		m.DoRow(i, func(j int, v float64) {
			R.M.Set(i, j, v)
		})
	}
	return
}
