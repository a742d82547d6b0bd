package assembly

import (
	"fmt"

	"github.com/notargets/godiffusion/autodiff"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/operators"
	"github.com/notargets/godiffusion/utils"
)

// MFDUnknowns are the cell pressures and the face fluxes of the mixed scheme
type MFDUnknowns struct {
	Pressure, Flux *autodiff.Block
}

// RegisterMFD declares a pressure on every owned cell, then a flux on every
// owned face
func RegisterMFD(reg *autodiff.Registry, p *mesh.Partition) MFDUnknowns {
	m := p.Mesh
	return MFDUnknowns{
		Pressure: reg.RegisterUnknown(fields.Solution, mesh.Cell, m.NumElements, func(c int) bool {
			return p.Class(mesh.Cell, c).IsOwned()
		}),
		Flux: reg.RegisterUnknown(fields.FaceFlux, mesh.Face, m.NumFaces, func(f int) bool {
			return p.Class(mesh.Face, f).IsOwned()
		}),
	}
}

// MFDCellOf gathers the geometry of cell c for the mimetic inner product
func MFDCellOf(m *mesh.Mesh, c int, D utils.Tensor) (cell operators.MFDCell) {
	cell = operators.MFDCell{
		Volume:     m.CellVolume(c),
		Barycenter: m.CellBarycenter(c),
		Tensor:     D,
	}
	for _, f := range m.CellFaces(c) {
		cell.Faces = append(cell.Faces, operators.MFDFace{
			Area:        m.FaceArea(f),
			Normal:      m.FaceUnitNormal(f),
			Orientation: m.FaceOrientation(f, c),
			Barycenter:  m.FaceBarycenter(f),
		})
	}
	return
}

// MFD writes the mixed system into res, evaluated at the current SOLUTION
// (cells) and FACE_FLUX (faces) fields. For cell c with faces f and
// orientations a:
//
//	cell c:  Σ a|f|/V U_f − RHS_c
//	face f:  Σ_c [ (M_c U)_f − a|f|(P_c − λ_f) ]
//
// with λ_f the BOUNDARY_CONDITION on boundary faces and zero inside.
func (a *Assembler) MFD(u MFDUnknowns, res *autodiff.Residual) error {
	fs, err := a.fields(fields.Solution, fields.FaceFlux, fields.BoundaryCondition, fields.RHS)
	if err != nil {
		return err
	}
	var (
		pressure, flux, bc, rhs = fs[0], fs[1], fs[2], fs[3]
		m                       = a.Part.Mesh
	)
	for _, c := range a.cells() {
		D, err := a.tensor(c)
		if err != nil {
			return err
		}
		M, err := operators.MFDInnerProduct(MFDCellOf(m, c, D))
		if err != nil {
			return fmt.Errorf("cell %d: %w", c, err)
		}
		var (
			faces = m.CellFaces(c)
			U     = make([]autodiff.Expr, len(faces))
			P     = u.Pressure.Var(c, pressure.Real(c))
			vol   = m.CellVolume(c)
		)
		for i, f := range faces {
			U[i] = u.Flux.Var(f, flux.Real(f))
		}
		if a.Part.Class(mesh.Cell, c).IsOwned() {
			coef := make([]float64, len(faces))
			for i, f := range faces {
				coef[i] = m.FaceOrientation(f, c) * m.FaceArea(f) / vol
			}
			res.Add(u.Pressure.Index(c), autodiff.Sum(coef, U).AddConst(-rhs.Real(c)))
		}
		for i, f := range faces {
			if !a.Part.Class(mesh.Face, f).IsOwned() {
				continue
			}
			var lambda float64
			if m.FaceIsBoundary(f) {
				lambda = bc.Real(f)
			}
			jump := P.AddConst(-lambda).Scale(m.FaceOrientation(f, c) * m.FaceArea(f))
			res.Add(u.Flux.Index(f), autodiff.Sum(M.Row(i), U).Sub(jump))
		}
	}
	return nil
}

// ReconstructFlux sets the FLUX cell vector of every local cell from the
// FACE_FLUX values: (1/V) Σ a|f| U_f (x_f − x_c)
func (a *Assembler) ReconstructFlux() error {
	fs, err := a.fields(fields.FaceFlux, fields.Flux)
	if err != nil {
		return err
	}
	var (
		flux, cellFlux = fs[0], fs[1]
		m              = a.Part.Mesh
	)
	for _, c := range a.Part.Cells {
		var (
			q  = make([]float64, cellFlux.NComp)
			xc = m.CellBarycenter(c)
		)
		for _, f := range m.CellFaces(c) {
			w := m.FaceOrientation(f, c) * m.FaceArea(f) * flux.Real(f) / m.CellVolume(c)
			xf := m.FaceBarycenter(f)
			for d := range q {
				q[d] += w * (xf[d] - xc[d])
			}
		}
		cellFlux.SetVector(c, q)
	}
	return nil
}
