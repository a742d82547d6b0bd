package mesh

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/notargets/godiffusion/utils"
)

// NewUnitSquareTri splits each square of an n×n grid along its (0,0)-(1,1) diagonal
func NewUnitSquareTri(n int) (*Mesh, error) {
	m := unitSquareNodes(n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v00, v10, v11, v01 := squareCorners(n, i, j)
			_ = m.AddElement(utils.Triangle, 0, []int{v00, v10, v11})
			_ = m.AddElement(utils.Triangle, 0, []int{v00, v11, v01})
		}
	}
	return m, m.BuildConnectivity()
}

func NewUnitSquareQuad(n int) (*Mesh, error) {
	m := unitSquareNodes(n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v00, v10, v11, v01 := squareCorners(n, i, j)
			_ = m.AddElement(utils.Quad, 0, []int{v00, v10, v11, v01})
		}
	}
	return m, m.BuildConnectivity()
}

func unitSquareNodes(n int) (m *Mesh) {
	m = NewMesh()
	h := 1 / float64(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			m.AddNode(j*(n+1)+i, []float64{float64(i) * h, float64(j) * h, 0})
		}
	}
	return
}

func squareCorners(n, i, j int) (v00, v10, v11, v01 int) {
	v00 = j*(n+1) + i
	v10 = v00 + 1
	v01 = v00 + n + 1
	v11 = v01 + 1
	return
}

func NewUnitCubeHex(n int) (*Mesh, error) {
	m := unitCubeNodes(n)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				_ = m.AddElement(utils.Hex, 0, cubeCorners(n, i, j, k))
			}
		}
	}
	return m, m.BuildConnectivity()
}

// NewUnitCubeTet splits each cube into six tetrahedra around its main diagonal
func NewUnitCubeTet(n int) (*Mesh, error) {
	var (
		m    = unitCubeNodes(n)
		kuhn = [6][4]int{
			{0, 1, 2, 6}, {0, 2, 3, 6}, {0, 3, 7, 6},
			{0, 7, 4, 6}, {0, 4, 5, 6}, {0, 5, 1, 6},
		}
	)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				c := cubeCorners(n, i, j, k)
				for _, t := range kuhn {
					_ = m.AddElement(utils.Tet, 0, []int{c[t[0]], c[t[1]], c[t[2]], c[t[3]]})
				}
			}
		}
	}
	return m, m.BuildConnectivity()
}

func unitCubeNodes(n int) (m *Mesh) {
	m = NewMesh()
	h := 1 / float64(n)
	for k := 0; k <= n; k++ {
		for j := 0; j <= n; j++ {
			for i := 0; i <= n; i++ {
				m.AddNode((k*(n+1)+j)*(n+1)+i, []float64{float64(i) * h, float64(j) * h, float64(k) * h})
			}
		}
	}
	return
}

// Corners in VTK hexahedron order
func cubeCorners(n, i, j, k int) []int {
	id := func(i, j, k int) int { return (k*(n+1)+j)*(n+1) + i }
	return []int{
		id(i, j, k), id(i+1, j, k), id(i+1, j+1, k), id(i, j+1, k),
		id(i, j, k+1), id(i+1, j, k+1), id(i+1, j+1, k+1), id(i, j+1, k+1),
	}
}

// NewStructured builds one of the generated shapes by name: tri, quad, hex, tet
func NewStructured(shape string, n int) (*Mesh, error) {
	switch shape {
	case "tri":
		return NewUnitSquareTri(n)
	case "quad":
		return NewUnitSquareQuad(n)
	case "hex":
		return NewUnitCubeHex(n)
	case "tet":
		return NewUnitCubeTet(n)
	}
	return nil, fmt.Errorf("unknown mesh shape %q, want tri, quad, hex or tet", shape)
}

// PerturbInterior moves every interior vertex by up to amp times the smallest
// adjacent cell diameter in each direction, then rebuilds the geometry.
func (m *Mesh) PerturbInterior(amp float64, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	for n := 0; n < m.NumVertices; n++ {
		if m.NodeIsBoundary(n) {
			continue
		}
		h := m.CellDiameter(m.NToE[n][0])
		for _, c := range m.NToE[n] {
			h = min(h, m.CellDiameter(c))
		}
		for i := 0; i < m.Dim; i++ {
			m.Vertices[n][i] += amp * h * (2*rng.Float64() - 1)
		}
	}
	return m.buildGeometry()
}

// SlabPartition assigns cells to nparts slabs of equal cell count along an
// axis, ordered by barycenter. It needs no external partitioner.
func (m *Mesh) SlabPartition(nparts, axis int) {
	order := make([]int, m.NumElements)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return m.CellBarycenter(order[a])[axis] < m.CellBarycenter(order[b])[axis]
	})
	m.EToP = make([]int, m.NumElements)
	for rank, c := range order {
		m.EToP[c] = rank * nparts / m.NumElements
	}
}
