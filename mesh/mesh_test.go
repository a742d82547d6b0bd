package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/godiffusion/utils"
)

func TestUnitSquareTri(t *testing.T) {
	m, err := NewUnitSquareTri(4)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dim)
	assert.Equal(t, 25, m.NumVertices)
	assert.Equal(t, 32, m.NumElements)
	// Euler: E = V + F - 1 for a simply connected planar mesh
	assert.Equal(t, 25+32-1, m.NumFaces)

	var area float64
	for c := 0; c < m.NumElements; c++ {
		area += m.CellVolume(c)
		assert.Len(t, m.CellFaces(c), 3)
	}
	assert.InDelta(t, 1., area, 1.e-14)

	var nBoundaryFaces, nBoundaryNodes int
	for f := 0; f < m.NumFaces; f++ {
		if m.FaceIsBoundary(f) {
			nBoundaryFaces++
			assert.Equal(t, -1, m.FrontCell(f))
		}
	}
	for n := 0; n < m.NumVertices; n++ {
		if m.NodeIsBoundary(n) {
			nBoundaryNodes++
		}
	}
	assert.Equal(t, 16, nBoundaryFaces)
	assert.Equal(t, 16, nBoundaryNodes)
}

func TestFaceNormalsPointFromBackToFront(t *testing.T) {
	for _, shape := range []string{"tri", "quad", "hex", "tet"} {
		m, err := NewStructured(shape, 2)
		require.NoError(t, err, shape)
		for f := 0; f < m.NumFaces; f++ {
			n := m.FaceUnitNormal(f)
			xf := m.FaceBarycenter(f)
			back := m.CellBarycenter(m.BackCell(f))
			var s float64
			for i := 0; i < 3; i++ {
				s += (xf[i] - back[i]) * n[i]
			}
			assert.Greater(t, s, 0., "%s face %d", shape, f)
			assert.InDelta(t, 1., utils.Norm3([3]float64{n[0], n[1], n[2]}), 1.e-14)
			if !m.FaceIsBoundary(f) {
				front := m.FrontCell(f)
				assert.Equal(t, -1., m.FaceOrientation(f, front))
				on := m.OrientedUnitNormal(f, front)
				assert.Equal(t, -n[0], on[0])
			}
		}
	}
}

// Sum over faces of |f| n_f (outward) vanishes for a closed cell
func TestClosedCells(t *testing.T) {
	for _, shape := range []string{"tri", "quad", "hex", "tet"} {
		m, err := NewStructured(shape, 2)
		require.NoError(t, err)
		require.NoError(t, m.PerturbInterior(0.1, 7))
		var vol float64
		for c := 0; c < m.NumElements; c++ {
			var s [3]float64
			for _, f := range m.CellFaces(c) {
				n := m.OrientedUnitNormal(f, c)
				for i := 0; i < 3; i++ {
					s[i] += m.FaceArea(f) * n[i]
				}
			}
			assert.InDelta(t, 0., utils.Norm3(s), 1.e-13, shape)
			vol += m.CellVolume(c)
		}
		assert.InDelta(t, 1., vol, 1.e-12, shape)
	}
}

func TestCellGeometry(t *testing.T) {
	// Single right triangle
	{
		m := NewMesh()
		m.AddNode(1, []float64{0, 0})
		m.AddNode(2, []float64{0, 3})
		m.AddNode(3, []float64{3, 0})
		require.NoError(t, m.AddElement(utils.Triangle, 0, []int{1, 2, 3}))
		require.NoError(t, m.BuildConnectivity())
		// clockwise input is reordered
		assert.Equal(t, []int{2, 1, 0}, m.CellNodes(0))
		assert.InDelta(t, 4.5, m.CellVolume(0), 1.e-14)
		assert.InDeltaSlice(t, []float64{1, 1, 0}, m.CellBarycenter(0), 1.e-14)
		assert.InDelta(t, 3*math.Sqrt2, m.CellDiameter(0), 1.e-14)
	}
	// Trapezoid: barycenter and vertex average differ
	{
		m := NewMesh()
		for i, x := range [][]float64{{0, 0}, {4, 0}, {3, 1}, {1, 1}} {
			m.AddNode(i, x)
		}
		require.NoError(t, m.AddElement(utils.Quad, 0, []int{0, 1, 2, 3}))
		require.NoError(t, m.BuildConnectivity())
		assert.InDelta(t, 3., m.CellVolume(0), 1.e-14)
		assert.InDeltaSlice(t, []float64{2, 0.5, 0}, m.CellCentroid(0), 1.e-14)
		assert.InDelta(t, 2., m.CellBarycenter(0)[0], 1.e-14)
		assert.InDelta(t, 4./9., m.CellBarycenter(0)[1], 1.e-14)
	}
	// Unit cube hex
	{
		m, err := NewUnitCubeHex(1)
		require.NoError(t, err)
		assert.Equal(t, 6, m.NumFaces)
		assert.InDelta(t, 1., m.CellVolume(0), 1.e-14)
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, m.CellBarycenter(0), 1.e-14)
		for f := 0; f < m.NumFaces; f++ {
			assert.InDelta(t, 1., m.FaceArea(f), 1.e-14)
		}
	}
}

func TestLowerDimensionalCellsAreDropped(t *testing.T) {
	m := NewMesh()
	for i, x := range [][]float64{{0, 0}, {1, 0}, {0, 1}} {
		m.AddNode(i+1, x)
	}
	require.NoError(t, m.AddElement(utils.Line, 5, []int{1, 2}))
	require.NoError(t, m.AddElement(utils.Triangle, 1, []int{1, 2, 3}))
	require.NoError(t, m.AddElement(utils.Point, 5, []int{3}))
	require.NoError(t, m.BuildConnectivity())
	assert.Equal(t, 1, m.NumElements)
	assert.Equal(t, []int{1}, m.ElementTags)
	assert.Error(t, m.AddElement(utils.Triangle, 0, []int{1, 2, 9}))
}

func TestSharedFaceConnectivity(t *testing.T) {
	m, err := NewUnitSquareQuad(2)
	require.NoError(t, err)
	for c := 0; c < m.NumElements; c++ {
		for lf, f := range m.CellFaces(c) {
			nbr := m.EToE[c][lf]
			if m.FaceIsBoundary(f) {
				assert.Equal(t, -1, nbr)
				continue
			}
			assert.Contains(t, []int{m.BackCell(f), m.FrontCell(f)}, c)
			assert.Contains(t, []int{m.BackCell(f), m.FrontCell(f)}, nbr)
		}
	}
}

func TestInvertedCellsAreRejected(t *testing.T) {
	// A tet listed against the element convention
	{
		m := NewMesh()
		for i, x := range [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			m.AddNode(i, x)
		}
		require.NoError(t, m.AddElement(utils.Tet, 0, []int{0, 2, 1, 3}))
		err := m.BuildConnectivity()
		assert.True(t, errors.Is(err, ErrInvertedElement), "%v", err)
	}
	// A large perturbation tangles the Kuhn tets, a small one does not
	{
		m, err := NewUnitCubeTet(3)
		require.NoError(t, err)
		err = m.PerturbInterior(0.2, 2)
		assert.True(t, errors.Is(err, ErrInvertedElement), "%v", err)
	}
	{
		m, err := NewUnitCubeTet(3)
		require.NoError(t, err)
		require.NoError(t, m.PerturbInterior(0.05, 2))
		var vol float64
		for c := 0; c < m.NumElements; c++ {
			assert.Greater(t, m.CellVolume(c), 0.)
			vol += m.CellVolume(c)
		}
		assert.InDelta(t, 1., vol, 1.e-12)
	}
}
