package assembly

import (
	"github.com/notargets/godiffusion/autodiff"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/operators"
	"github.com/notargets/godiffusion/utils"
)

// DirectSystem is A·x = b over rows [First, Last) of the global unknowns
type DirectSystem struct {
	First, Last int
	NCols       int
	A           utils.DOK
	B           []float64
}

func NewDirectSystem(first, last, ncols int) *DirectSystem {
	return &DirectSystem{
		First: first,
		Last:  last,
		NCols: ncols,
		A:     utils.NewDOK(max(last-first, 1), max(ncols, 1)),
		B:     make([]float64, last-first),
	}
}

func (s *DirectSystem) Matrix() utils.CSR {
	if s.Last == s.First {
		return utils.NewCSR(0, s.NCols, []int{0}, nil, nil)
	}
	return s.A.ToCSR()
}

// FEM assembles the P1 system for the unknowns of block nodes. Rows of
// Dirichlet nodes are dropped and their prescribed values move to the right
// hand side of the free rows. Needs the DIFFUSION_TENSOR cell field and the
// BOUNDARY_CONDITION and RHS node fields.
func (a *Assembler) FEM(nodes *autodiff.Block, sys *DirectSystem) error {
	fs, err := a.fields(fields.BoundaryCondition, fields.RHS)
	if err != nil {
		return err
	}
	var (
		bc, rhs = fs[0], fs[1]
		m       = a.Part.Mesh
	)
	for _, c := range a.cells() {
		var (
			verts = m.CellNodes(c)
			x     = make([][]float64, len(verts))
			f     [3]float64
		)
		for i, n := range verts {
			x[i] = m.NodeCoords(n)
			if i < 3 {
				f[i] = rhs.Real(n)
			}
		}
		D, err := a.tensor(c)
		if err != nil {
			return err
		}
		M, err := operators.TriangleStiffness(x, D)
		if err != nil {
			return err
		}
		b, err := operators.TriangleLoad(x, f)
		if err != nil {
			return err
		}
		for i, ni := range verts {
			if a.Part.Class(mesh.Node, ni).IsDirichlet() {
				val := bc.Real(ni)
				for j, nj := range verts {
					if a.rowOwned(mesh.Node, nj) {
						sys.B[nodes.Index(nj)-sys.First] -= val * M.At(j, i)
					}
				}
				continue
			}
			if !a.Part.Class(mesh.Node, ni).IsOwned() {
				continue
			}
			row := nodes.Index(ni) - sys.First
			sys.B[row] += b[i]
			for j, nj := range verts {
				if col := nodes.Index(nj); col >= 0 {
					sys.A.AddAt(row, col, M.At(i, j))
				}
			}
		}
	}
	return nil
}
