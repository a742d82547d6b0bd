package operators

import (
	"fmt"

	"github.com/notargets/godiffusion/utils"
)

// FrameTolerance bounds ‖RᵀN − V·D‖ in the Frobenius norm
const FrameTolerance = 1.e-3

// MFDFace is one face of a cell
type MFDFace struct {
	Area        float64
	Normal      []float64 // unit normal in the face's global orientation
	Orientation float64   // +1 if Normal points out of the cell, -1 otherwise
	Barycenter  []float64
}

// MFDCell is everything the mimetic inner product needs from one cell
type MFDCell struct {
	Volume     float64
	Barycenter []float64
	Faces      []MFDFace
	Tensor     utils.Tensor
}

// MFDFrame returns N, the face normals times D, and R, the oriented face
// areas times the offsets of the face barycenters from the cell barycenter
func MFDFrame(c MFDCell) (N, R utils.Matrix) {
	var (
		nf  = len(c.Faces)
		dim = c.Tensor.Dim
	)
	N, R = utils.NewMatrix(nf, dim), utils.NewMatrix(nf, dim)
	for i, f := range c.Faces {
		a := f.Orientation * f.Area
		for d := 0; d < dim; d++ {
			N.Set(i, d, f.Normal[d])
			R.Set(i, d, a*(f.Barycenter[d]-c.Barycenter[d]))
		}
	}
	N = N.Mul(c.Tensor.Matrix())
	return
}

// MFDInnerProduct returns the nf×nf flux inner product M = M0 + M1, with the
// consistency term M0 = R(RᵀN)⁻¹Rᵀ and the stability term
// M1 = γ(I − N(NᵀN)⁻¹Nᵀ), γ = tr(M0)/nf
func MFDInnerProduct(c MFDCell) (M utils.Matrix, err error) {
	var (
		nf   = len(c.Faces)
		N, R = MFDFrame(c)
	)
	if nf <= c.Tensor.Dim {
		return M, fmt.Errorf("%w: cell with %d faces in %dD", ErrShapeMismatch, nf, c.Tensor.Dim)
	}
	RtN := R.Transpose().Mul(N)
	test := RtN.Subtract(c.Tensor.Matrix().Scale(c.Volume))
	if diff := test.FrobeniusNorm(); diff > FrameTolerance {
		return M, fmt.Errorf("%w: diff = %.3e\n%s", ErrInconsistentFrame, diff, test.Print("RᵀN - V·D"))
	}
	RtNInv, err := RtN.Inverse()
	if err != nil {
		return M, fmt.Errorf("%w: %v", ErrDegenerateElement, err)
	}
	M0 := R.Mul(RtNInv).Mul(R.Transpose())

	NtNInv, err := N.Transpose().Mul(N).Inverse()
	if err != nil {
		return M, fmt.Errorf("%w: %v", ErrDegenerateElement, err)
	}
	gamma := M0.Trace() / float64(nf)
	M1 := utils.NewIdentity(nf).Subtract(N.Mul(NtNInv).Mul(N.Transpose())).Scale(gamma)
	M = M0.Add(M1)
	return
}
