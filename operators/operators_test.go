package operators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/utils"
)

func TestTriangleStiffness(t *testing.T) {
	var (
		tris = [][][]float64{
			{{0, 0}, {1, 0}, {0, 1}},
			{{0.1, 0.2}, {1.3, 0.4}, {0.5, 1.7}},
			{{2, 1}, {2.5, 1.1}, {2.1, 1.9}},
		}
		anisotropic, _ = utils.NewTensor([]float64{100, 1, 0.5})
	)
	for _, x := range tris {
		area := 0.5 * math.Abs((x[1][0]-x[0][0])*(x[2][1]-x[0][1])-(x[2][0]-x[0][0])*(x[1][1]-x[0][1]))
		// Symmetric with constants in the null space
		M, err := TriangleStiffness(x, anisotropic)
		require.NoError(t, err)
		assert.True(t, M.IsSymmetric(1.e-12))
		for _, v := range M.MulVec([]float64{1, 1, 1}) {
			assert.InDelta(t, 0., v, 1.e-11)
		}
		// Linear field u = a·x: M u = ∫ D a·∇φ_i
		a := []float64{0.3, -1.2}
		u := make([]float64, 3)
		for i := range u {
			u[i] = a[0]*x[i][0] + a[1]*x[i][1]
		}
		Mu := M.MulVec(u)
		var s float64
		for _, v := range Mu {
			s += v
		}
		assert.InDelta(t, 0., s, 1.e-10)

		// Classical formula for D = I
		M, err = TriangleStiffness(x, utils.NewIsotropicTensor(2, 1))
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			bi := x[(i+1)%3][1] - x[(i+2)%3][1]
			ci := x[(i+2)%3][0] - x[(i+1)%3][0]
			for j := 0; j < 3; j++ {
				bj := x[(j+1)%3][1] - x[(j+2)%3][1]
				cj := x[(j+2)%3][0] - x[(j+1)%3][0]
				assert.InDelta(t, (bi*bj+ci*cj)/(4*area), M.At(i, j), 1.e-12)
			}
		}
	}
	// Reference triangle
	M, err := TriangleStiffness(tris[0], utils.NewIsotropicTensor(2, 1))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, -0.5, -0.5, -0.5, 0.5, 0, -0.5, 0, 0.5}, M.Data(), 1.e-15)
}

func TestTriangleErrors(t *testing.T) {
	D := utils.NewIsotropicTensor(2, 1)
	_, err := TriangleStiffness([][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, D)
	assert.True(t, errors.Is(err, ErrNotTriangle))
	_, err = TriangleStiffness([][]float64{{0, 0}, {1, 1}, {2, 2}}, D)
	assert.True(t, errors.Is(err, ErrDegenerateElement))
	_, err = TriangleStiffness([][]float64{{0, 0}, {1, 0}, {0, 1}}, utils.NewIsotropicTensor(3, 1))
	assert.True(t, errors.Is(err, ErrShapeMismatch))
	_, err = TriangleLoad([][]float64{{0, 0}, {1, 0}}, [3]float64{})
	assert.True(t, errors.Is(err, ErrNotTriangle))
}

func TestTriangleLoad(t *testing.T) {
	b, err := TriangleLoad([][]float64{{0, 0}, {2, 0}, {0, 3}}, [3]float64{1, 2, 3})
	require.NoError(t, err)
	// area 3, vertex average 2, a third each
	assert.InDeltaSlice(t, []float64{2, 2, 2}, b[:], 1.e-14)
}

func mfdCell(m *mesh.Mesh, c int, D utils.Tensor) (cell MFDCell) {
	cell = MFDCell{
		Volume:     m.CellVolume(c),
		Barycenter: m.CellBarycenter(c),
		Tensor:     D,
	}
	for _, f := range m.CellFaces(c) {
		cell.Faces = append(cell.Faces, MFDFace{
			Area:        m.FaceArea(f),
			Normal:      m.FaceUnitNormal(f),
			Orientation: m.FaceOrientation(f, c),
			Barycenter:  m.FaceBarycenter(f),
		})
	}
	return
}

func vemCell(m *mesh.Mesh, c int, D utils.Tensor) (cell VEMCell) {
	cell.Tensor = D
	local := make(map[int]int)
	for i, n := range m.CellNodes(c) {
		local[n] = i
		cell.Nodes = append(cell.Nodes, m.NodeCoords(n))
	}
	for _, f := range m.CellFaces(c) {
		face := VEMFace{Area: m.FaceArea(f), Normal: m.OrientedUnitNormal(f, c)}
		for _, n := range m.FaceNodes(f) {
			face.Nodes = append(face.Nodes, local[n])
		}
		cell.Faces = append(cell.Faces, face)
	}
	return
}

func testTensor(dim int) utils.Tensor {
	if dim == 2 {
		D, _ := utils.NewTensor([]float64{3, 1, 0.4})
		return D
	}
	D, _ := utils.NewTensor([]float64{10, 2, 1, 0.3, 0.1, 0.2})
	return D
}

func TestMFDInnerProduct(t *testing.T) {
	for _, shape := range []string{"tri", "quad", "hex", "tet"} {
		m, err := mesh.NewStructured(shape, 2)
		require.NoError(t, err)
		// Perturbed hexes have warped faces, for which the frame identity is only approximate
		if shape != "hex" {
			require.NoError(t, m.PerturbInterior(0.15, 3))
		}
		D := testTensor(m.Dim)
		for c := 0; c < m.NumElements; c++ {
			cell := mfdCell(m, c, D)
			N, R := MFDFrame(cell)
			diff := R.Transpose().Mul(N).Subtract(D.Matrix().Scale(cell.Volume))
			assert.Less(t, diff.FrobeniusNorm(), 1.e-12, "%s cell %d", shape, c)

			M, err := MFDInnerProduct(cell)
			require.NoError(t, err)
			assert.True(t, M.IsSymmetric(1.e-10))
			assert.Less(t, M.Mul(N).Subtract(R).MaxAbs(), 1.e-10)

			// Positive definite
			var eig mat.EigenSym
			nf, _ := M.Dims()
			require.True(t, eig.Factorize(mat.NewSymDense(nf, M.Data()), false))
			for _, ev := range eig.Values(nil) {
				assert.Greater(t, ev, 0.)
			}
		}
	}
}

func TestMFDInconsistentFrame(t *testing.T) {
	m, err := mesh.NewUnitSquareQuad(1)
	require.NoError(t, err)
	cell := mfdCell(m, 0, utils.NewIsotropicTensor(2, 1))
	cell.Volume *= 2
	_, err = MFDInnerProduct(cell)
	assert.True(t, errors.Is(err, ErrInconsistentFrame))
	assert.Contains(t, err.Error(), "RᵀN - V·D")

	cell = mfdCell(m, 0, utils.NewIsotropicTensor(2, 1))
	cell.Faces = cell.Faces[:2]
	_, err = MFDInnerProduct(cell)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestVEMStiffness(t *testing.T) {
	for _, shape := range []string{"tri", "quad", "hex", "tet"} {
		m, err := mesh.NewStructured(shape, 2)
		require.NoError(t, err)
		if shape != "hex" {
			require.NoError(t, m.PerturbInterior(0.15, 5))
		}
		D := testTensor(m.Dim)
		for c := 0; c < m.NumElements; c++ {
			cell := vemCell(m, c, D)
			Dm, B, err := VEMMatrices(cell)
			require.NoError(t, err)
			G := B.Mul(Dm)
			_, err = G.Inverse()
			require.NoError(t, err, "%s cell %d", shape, c)

			W, err := VEMStiffness(cell)
			require.NoError(t, err)
			nn := len(cell.Nodes)
			assert.True(t, W.IsSymmetric(1.e-10))
			for _, v := range W.MulVec(utils.ConstArray(nn, 1)) {
				assert.InDelta(t, 0., v, 1.e-10, "%s cell %d", shape, c)
			}
			// Rank deficient by exactly one
			var eig mat.EigenSym
			require.True(t, eig.Factorize(mat.NewSymDense(nn, W.Data()), false))
			ev := eig.Values(nil)
			assert.InDelta(t, 0., ev[0], 1.e-10)
			for _, e := range ev[1:] {
				assert.Greater(t, e, 1.e-8)
			}
		}
	}
}

// For a linear field the consistency term reproduces the exact energy
func TestVEMLinearEnergy(t *testing.T) {
	m, err := mesh.NewUnitSquareQuad(1)
	require.NoError(t, err)
	D := testTensor(2)
	cell := vemCell(m, 0, D)
	a := []float64{0.7, -0.2}
	u := make([]float64, len(cell.Nodes))
	for i, x := range cell.Nodes {
		u[i] = a[0]*x[0] + a[1]*x[1]
	}
	W, err := VEMStiffness(cell)
	require.NoError(t, err)
	var energy float64
	for i, v := range W.MulVec(u) {
		energy += u[i] * v
	}
	Da := D.Apply(a)
	assert.InDelta(t, a[0]*Da[0]+a[1]*Da[1], energy, 1.e-12)
}

func TestVEMErrors(t *testing.T) {
	m, err := mesh.NewUnitSquareQuad(1)
	require.NoError(t, err)
	D := utils.NewIsotropicTensor(2, 1)

	cell := vemCell(m, 0, D)
	cell.Faces = cell.Faces[:3]
	_, err = VEMStiffness(cell)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	// Collapsed onto a line, B·D loses rank
	cell = vemCell(m, 0, D)
	for i := range cell.Nodes {
		cell.Nodes[i] = []float64{float64(i), 0, 0}
	}
	for i := range cell.Faces {
		cell.Faces[i].Normal = []float64{0, 1, 0}
	}
	_, err = VEMStiffness(cell)
	assert.True(t, errors.Is(err, ErrSingularProjection))

	cell = vemCell(m, 0, D)
	cell.Faces[0].Nodes = []int{0, 7}
	_, _, err = VEMMatrices(cell)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}
