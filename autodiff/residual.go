package autodiff

import (
	"fmt"

	"github.com/notargets/godiffusion/utils"
)

// Residual collects one equation per owned unknown, rows [First, Last) of the
// global system, with columns over all NCols global unknowns. Contributions
// to a row accumulate.
type Residual struct {
	Name        string
	First, Last int
	NCols       int
	values      []float64
	jac         utils.DOK
}

func NewResidual(name string, first, last, ncols int) *Residual {
	return &Residual{
		Name:   name,
		First:  first,
		Last:   last,
		NCols:  ncols,
		values: make([]float64, last-first),
		jac:    utils.NewDOK(max(last-first, 1), max(ncols, 1)),
	}
}

// Add accumulates e into the equation of global row
func (r *Residual) Add(row int, e Expr) {
	if row < r.First || row >= r.Last {
		panic(fmt.Errorf("%s: row %d outside [%d,%d)", r.Name, row, r.First, r.Last))
	}
	i := row - r.First
	r.values[i] += e.Value
	for _, t := range e.Terms {
		if t.Coef != 0 {
			r.jac.AddAt(i, t.Index, t.Coef)
		}
	}
}

func (r *Residual) Values() []float64 { return r.values }

func (r *Residual) Rows() int { return r.Last - r.First }

// Jacobian returns the local rows in compressed form
func (r *Residual) Jacobian() utils.CSR {
	if r.Rows() == 0 {
		return utils.NewCSR(0, r.NCols, []int{0}, nil, nil)
	}
	return r.jac.ToCSR()
}

// Gather stacks the rows of per-partition residuals into one global system,
// ordered by First. The residuals must tile [0, n) without gaps.
func Gather(res []*Residual) (J utils.CSR, R []float64, err error) {
	var (
		indptr = []int{0}
		ind    []int
		data   []float64
		next   int
		ncols  int
	)
	for _, r := range res {
		if r.First != next {
			return J, nil, fmt.Errorf("residual %s starts at row %d, expected %d", r.Name, r.First, next)
		}
		next = r.Last
		ncols = max(ncols, r.NCols)
		if r.Rows() == 0 {
			continue
		}
		jac := r.Jacobian()
		for i := 0; i < r.Rows(); i++ {
			jac.DoRow(i, func(j int, v float64) {
				ind = append(ind, j)
				data = append(data, v)
			})
			indptr = append(indptr, len(ind))
		}
		R = append(R, r.values...)
	}
	if next != ncols {
		return J, nil, fmt.Errorf("gathered %d rows for %d unknowns", next, ncols)
	}
	J = utils.NewCSR(next, ncols, indptr, ind, data)
	return
}
