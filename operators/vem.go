package operators

import (
	"fmt"
	"math"

	"github.com/notargets/godiffusion/utils"
)

// VEMFace is one face of a cell, its nodes given by position in VEMCell.Nodes
type VEMFace struct {
	Nodes  []int
	Area   float64
	Normal []float64 // unit, out of the cell
}

// VEMCell is everything the lowest order virtual element needs from one cell
type VEMCell struct {
	Nodes  [][]float64 // coordinates, 3 components
	Faces  []VEMFace
	Tensor utils.Tensor
}

// Centroid is the average of the cell nodes, the origin of the scaled monomials
func (c VEMCell) Centroid() []float64 {
	xc := make([]float64, 3)
	for _, x := range c.Nodes {
		for d := 0; d < 3; d++ {
			xc[d] += x[d] / float64(len(c.Nodes))
		}
	}
	return xc
}

// Diameter is the largest distance between two nodes
func (c VEMCell) Diameter() (diam float64) {
	for i := range c.Nodes {
		for j := i + 1; j < len(c.Nodes); j++ {
			diam = math.Max(diam, utils.Distance(c.Nodes[i], c.Nodes[j]))
		}
	}
	return
}

// VEMMatrices returns D, the nodal values of the scaled monomials
// 1, (x−xc)/h, ..., and B, their projections of the nodal basis: the nodal
// average for the constant and the boundary flux K∇mⱼ·n, lumped equally on
// the face nodes, for the linear monomials.
func VEMMatrices(c VEMCell) (D, B utils.Matrix, err error) {
	var (
		nn     = len(c.Nodes)
		dim    = c.Tensor.Dim
		npolys = dim + 1
		xc     = c.Centroid()
		diam   = c.Diameter()
	)
	if nn <= dim || diam == 0 {
		return D, B, fmt.Errorf("%w: %d nodes, diameter %g", ErrDegenerateElement, nn, diam)
	}
	D, B = utils.NewMatrix(nn, npolys), utils.NewMatrix(npolys, nn)
	for i, x := range c.Nodes {
		D.Set(i, 0, 1)
		B.Set(0, i, 1/float64(nn))
		for j := 1; j < npolys; j++ {
			D.Set(i, j, (x[j-1]-xc[j-1])/diam)
		}
	}
	for _, f := range c.Faces {
		var (
			kn  = c.Tensor.Apply(f.Normal)
			nfn = float64(len(f.Nodes))
		)
		for _, i := range f.Nodes {
			if i < 0 || i >= nn {
				return D, B, fmt.Errorf("%w: face node %d of %d", ErrShapeMismatch, i, nn)
			}
			for j := 1; j < npolys; j++ {
				B.AddAt(j, i, f.Area/nfn/diam*kn[j-1])
			}
		}
	}
	return
}

// VEMStiffness returns the nn×nn operator W = ΠᵀGΠ + S with Π = (BD)⁻¹B, G
// equal to BD with its constant row zeroed and S = (I − DΠ)ᵀ(I − DΠ).
// Polygons must have as many edges as nodes.
func VEMStiffness(c VEMCell) (W utils.Matrix, err error) {
	nn := len(c.Nodes)
	if c.Tensor.Dim == 2 && len(c.Faces) != nn {
		return W, fmt.Errorf("%w: polygon with %d nodes and %d faces", ErrShapeMismatch, nn, len(c.Faces))
	}
	D, B, err := VEMMatrices(c)
	if err != nil {
		return
	}
	G := B.Mul(D)
	GInv, err := G.Inverse()
	if err != nil {
		return W, fmt.Errorf("%w: %v, cond(B*D) = %.3e\n%s%s%s", ErrSingularProjection, err,
			G.ConditionNumber(), B.Print("B"), D.Print("D"), G.Print("B*D"))
	}
	Proj := GInv.Mul(B)
	Se := utils.NewIdentity(nn).Subtract(D.Mul(Proj))
	_, npolys := G.Dims()
	for j := 0; j < npolys; j++ {
		G.Set(0, j, 0)
	}
	W = Proj.Transpose().Mul(G).Mul(Proj).Add(Se.Transpose().Mul(Se))
	return
}
