package operators

import (
	"fmt"
	"math"

	"github.com/notargets/godiffusion/utils"
)

// Reference triangle shape products, halved: Kee from (ξ,ξ), Knn from (η,η)
// and Ken from (ξ,η) derivative pairs
var (
	kee = utils.NewMatrix(3, 3, []float64{
		0.5, -0.5, 0,
		-0.5, 0.5, 0,
		0, 0, 0,
	})
	knn = utils.NewMatrix(3, 3, []float64{
		0.5, 0, -0.5,
		0, 0, 0,
		-0.5, 0, 0.5,
	})
	ken = utils.NewMatrix(3, 3, []float64{
		0.5, 0, -0.5,
		-0.5, 0, 0.5,
		0, 0, 0,
	})
)

// affineMap returns the Jacobian of the map from the reference triangle and
// its determinant
func affineMap(x [][]float64) (Bk utils.Matrix, det float64, err error) {
	if len(x) != 3 {
		return Bk, 0, fmt.Errorf("%w: %d nodes", ErrNotTriangle, len(x))
	}
	Bk = utils.NewMatrix(2, 2, []float64{
		x[1][0] - x[0][0], x[2][0] - x[0][0],
		x[1][1] - x[0][1], x[2][1] - x[0][1],
	})
	det = Bk.At(0, 0)*Bk.At(1, 1) - Bk.At(0, 1)*Bk.At(1, 0)
	return
}

// TriangleStiffness returns the P1 stiffness matrix of ∫ D∇φⱼ·∇φᵢ over the
// triangle with vertex coordinates x, in vertex order
func TriangleStiffness(x [][]float64, D utils.Tensor) (M utils.Matrix, err error) {
	var (
		Bk  utils.Matrix
		det float64
	)
	if Bk, det, err = affineMap(x); err != nil {
		return
	}
	if D.Dim != 2 {
		return M, fmt.Errorf("%w: triangle stiffness needs a 2D tensor", ErrShapeMismatch)
	}
	BkInv, err := Bk.Inverse()
	if err != nil {
		return M, fmt.Errorf("%w: %v", ErrDegenerateElement, err)
	}
	Ck := BkInv.Mul(D.Matrix()).Mul(BkInv.Transpose())
	M = kee.Scale(Ck.At(0, 0)).
		Add(knn.Scale(Ck.At(1, 1))).
		Add(ken.Add(ken.Transpose()).Scale(Ck.At(0, 1))).
		Scale(math.Abs(det))
	return
}

// TriangleLoad lumps the vertex values f of the source onto the vertices:
// each gets the vertex average times a third of the area
func TriangleLoad(x [][]float64, f [3]float64) (b [3]float64, err error) {
	var det float64
	if _, det, err = affineMap(x); err != nil {
		return
	}
	v := (f[0] + f[1] + f[2]) * math.Abs(det) / 18
	b = [3]float64{v, v, v}
	return
}
