package assembly

import (
	"fmt"

	"github.com/notargets/godiffusion/autodiff"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/operators"
	"github.com/notargets/godiffusion/utils"
)

// VEMCellOf gathers the nodes and outward faces of cell c, face nodes given
// by their position in the cell
func VEMCellOf(m *mesh.Mesh, c int, D utils.Tensor) (cell operators.VEMCell, err error) {
	var (
		verts = m.CellNodes(c)
		local = make(map[int]int, len(verts))
	)
	cell.Tensor = D
	for i, n := range verts {
		local[n] = i
		cell.Nodes = append(cell.Nodes, m.NodeCoords(n))
	}
	for _, f := range m.CellFaces(c) {
		face := operators.VEMFace{Area: m.FaceArea(f), Normal: m.OrientedUnitNormal(f, c)}
		for _, n := range m.FaceNodes(f) {
			i, ok := local[n]
			if !ok {
				return cell, fmt.Errorf("%w: face %d node %d is not a node of cell %d",
					operators.ErrShapeMismatch, f, n, c)
			}
			face.Nodes = append(face.Nodes, i)
		}
		cell.Faces = append(cell.Faces, face)
	}
	return
}

// VEM writes Σ_j W_ij u_j − RHS_c V/nn into the rows of the owned free nodes
// of every local cell, evaluated at the current SOLUTION node field.
// Prescribed nodes enter with their BOUNDARY_CONDITION value as constants.
// RHS is a cell field holding the source at the cell centroid.
func (a *Assembler) VEM(nodes *autodiff.Block, res *autodiff.Residual) error {
	fs, err := a.fields(fields.Solution, fields.BoundaryCondition, fields.RHS)
	if err != nil {
		return err
	}
	var (
		sol, bc, rhs = fs[0], fs[1], fs[2]
		m            = a.Part.Mesh
	)
	for _, c := range a.cells() {
		D, err := a.tensor(c)
		if err != nil {
			return err
		}
		cell, err := VEMCellOf(m, c, D)
		if err != nil {
			return err
		}
		W, err := operators.VEMStiffness(cell)
		if err != nil {
			return fmt.Errorf("cell %d: %w", c, err)
		}
		var (
			verts = m.CellNodes(c)
			u     = make([]autodiff.Expr, len(verts))
			load  = rhs.Real(c) * m.CellVolume(c) / float64(len(verts))
		)
		for j, n := range verts {
			if a.Part.Class(mesh.Node, n).IsDirichlet() {
				u[j] = autodiff.Const(bc.Real(n))
			} else {
				u[j] = nodes.Var(n, sol.Real(n))
			}
		}
		for i, n := range verts {
			if !a.rowOwned(mesh.Node, n) {
				continue
			}
			res.Add(nodes.Index(n), autodiff.Sum(W.Row(i), u).AddConst(-load))
		}
	}
	return nil
}
