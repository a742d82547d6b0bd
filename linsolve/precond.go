package linsolve

import (
	"fmt"

	"github.com/notargets/godiffusion/utils"
)

// preconditioner applies z = M⁻¹·r, or z = M⁻ᵀ·r
type preconditioner interface {
	Apply(r, z []float64)
	ApplyTrans(r, z []float64)
}

type jacobi struct {
	inv []float64
}

func newJacobi(A utils.CSR) (*jacobi, error) {
	d := A.Diagonal()
	for i, v := range d {
		if v == 0 {
			return nil, fmt.Errorf("jacobi preconditioner: zero diagonal in row %d", i)
		}
		d[i] = 1 / v
	}
	return &jacobi{inv: d}, nil
}

func (p *jacobi) Apply(r, z []float64) {
	for i, v := range r {
		z[i] = p.inv[i] * v
	}
}

func (p *jacobi) ApplyTrans(r, z []float64) { p.Apply(r, z) }

// ilu0 holds the incomplete LU factors on the sparsity pattern of A, unit
// lower triangle implied
type ilu0 struct {
	indptr, ind []int
	lu          []float64
	diag        []int // position of the diagonal in each row
}

func newILU0(A utils.CSR) (*ilu0, error) {
	var (
		raw = A.RawMatrix()
		n   = len(raw.Indptr) - 1
		p   = &ilu0{
			indptr: raw.Indptr,
			ind:    raw.Ind,
			lu:     append([]float64(nil), raw.Data...),
			diag:   make([]int, n),
		}
		pos = make([]int, n) // column -> position in current row, -1 if absent
	)
	for i := range pos {
		pos[i] = -1
	}
	for i := 0; i < n; i++ {
		p.diag[i] = -1
		for k := p.indptr[i]; k < p.indptr[i+1]; k++ {
			pos[p.ind[k]] = k
			if p.ind[k] == i {
				p.diag[i] = k
			}
		}
		if p.diag[i] < 0 {
			return nil, fmt.Errorf("ilu0 preconditioner: missing diagonal in row %d", i)
		}
		// Columns are sorted, so the strictly lower part comes first
		for k := p.indptr[i]; k < p.diag[i]; k++ {
			col := p.ind[k]
			p.lu[k] /= p.lu[p.diag[col]]
			for kk := p.diag[col] + 1; kk < p.indptr[col+1]; kk++ {
				if at := pos[p.ind[kk]]; at >= 0 {
					p.lu[at] -= p.lu[k] * p.lu[kk]
				}
			}
		}
		if p.lu[p.diag[i]] == 0 {
			return nil, fmt.Errorf("ilu0 preconditioner: zero pivot in row %d", i)
		}
		for k := p.indptr[i]; k < p.indptr[i+1]; k++ {
			pos[p.ind[k]] = -1
		}
	}
	return p, nil
}

func (p *ilu0) Apply(r, z []float64) {
	n := len(p.diag)
	for i := 0; i < n; i++ {
		sum := r[i]
		for k := p.indptr[i]; k < p.diag[i]; k++ {
			sum -= p.lu[k] * z[p.ind[k]]
		}
		z[i] = sum
	}
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := p.diag[i] + 1; k < p.indptr[i+1]; k++ {
			sum -= p.lu[k] * z[p.ind[k]]
		}
		z[i] = sum / p.lu[p.diag[i]]
	}
}

// ApplyTrans solves Uᵀ·w = r then Lᵀ·z = w, sweeping the rows of the factors
// as columns of their transposes
func (p *ilu0) ApplyTrans(r, z []float64) {
	n := len(p.diag)
	copy(z, r)
	for i := 0; i < n; i++ {
		z[i] /= p.lu[p.diag[i]]
		for k := p.diag[i] + 1; k < p.indptr[i+1]; k++ {
			z[p.ind[k]] -= p.lu[k] * z[i]
		}
	}
	for i := n - 1; i >= 0; i-- {
		for k := p.indptr[i]; k < p.diag[i]; k++ {
			z[p.ind[k]] -= p.lu[k] * z[i]
		}
	}
}
