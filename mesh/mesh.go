package mesh

import (
	"fmt"
	"sort"

	"github.com/notargets/godiffusion/utils"
)

// EntityKind selects which mesh entities a field or unknown lives on
type EntityKind uint8

const (
	Node EntityKind = iota
	Face
	Cell
)

func (k EntityKind) String() string {
	return [...]string{"Node", "Face", "Cell"}[k]
}

// FaceData is stored once; Vertices are ordered as seen from the Back cell
type FaceData struct {
	Vertices []int
	Back     int
	Front    int // -1 on the domain boundary
	LocalID  int // Local face ID within the Back cell
}

// Mesh represents a complete unstructured mesh with all connectivity
type Mesh struct {
	Dim int

	// Geometry
	Vertices  [][]float64 // Vertex coordinates [nvertices][3]
	NodeIDMap map[int]int // File node ID -> vertex index

	// Element data
	EToV         [][]int             // Element to vertex connectivity
	ElementTypes []utils.ElementType // Element type for each element
	ElementTags  []int               // Physical group/tag for each element

	// Connectivity (built during initialization)
	EToE [][]int // Element to element connectivity [nelems][nfaces_per_elem]
	EToF [][]int // Element to face connectivity [nelems][nfaces_per_elem]
	EToP []int   // Element to partition mapping (set after partitioning)
	NToE [][]int // Node to element connectivity, ascending

	// Face data
	Faces   []FaceData
	FaceMap map[string]int // Map from sorted vertex string to face ID

	// Mesh statistics
	NumElements int
	NumVertices int
	NumFaces    int

	geom *geometry
}

// NewMesh creates an empty mesh, filled by AddNode / AddElement
func NewMesh() *Mesh {
	return &Mesh{
		NodeIDMap: make(map[int]int),
		FaceMap:   make(map[string]int),
	}
}

func (m *Mesh) AddNode(nodeID int, coords []float64) {
	xyz := make([]float64, 3)
	copy(xyz, coords)
	m.NodeIDMap[nodeID] = len(m.Vertices)
	m.Vertices = append(m.Vertices, xyz)
}

// AddElement takes file node IDs, as passed to AddNode
func (m *Mesh) AddElement(etype utils.ElementType, tag int, nodeIDs []int) error {
	verts := make([]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idx, ok := m.NodeIDMap[id]
		if !ok {
			return fmt.Errorf("element references unknown node %d", id)
		}
		verts[i] = idx
	}
	m.EToV = append(m.EToV, verts)
	m.ElementTypes = append(m.ElementTypes, etype)
	m.ElementTags = append(m.ElementTags, tag)
	return nil
}

// BuildConnectivity keeps only cells of the top dimension, orients 2D cells
// counter-clockwise, builds faces and computes the geometry.
func (m *Mesh) BuildConnectivity() (err error) {
	m.Dim = 0
	for _, et := range m.ElementTypes {
		m.Dim = max(m.Dim, et.GetDimension())
	}
	if m.Dim < 2 {
		return fmt.Errorf("mesh has no 2D or 3D cells")
	}
	var (
		etov  [][]int
		types []utils.ElementType
		tags  []int
	)
	for k, et := range m.ElementTypes {
		if et.GetDimension() != m.Dim {
			continue
		}
		etov = append(etov, m.EToV[k])
		types = append(types, et)
		tags = append(tags, m.ElementTags[k])
	}
	m.EToV, m.ElementTypes, m.ElementTags = etov, types, tags
	m.NumElements = len(m.EToV)
	m.NumVertices = len(m.Vertices)
	if m.Dim == 2 {
		m.orientCounterClockwise()
	}
	if err = m.buildFaces(); err != nil {
		return
	}
	m.buildNodeToElement()
	return m.buildGeometry()
}

func (m *Mesh) orientCounterClockwise() {
	for k, verts := range m.EToV {
		var area float64
		n := len(verts)
		for i := 0; i < n; i++ {
			a, b := m.Vertices[verts[i]], m.Vertices[verts[(i+1)%n]]
			area += a[0]*b[1] - b[0]*a[1]
		}
		if area < 0 {
			for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
				verts[i], verts[j] = verts[j], verts[i]
			}
			m.EToV[k] = verts
		}
	}
}

func (m *Mesh) buildFaces() error {
	m.Faces = m.Faces[:0]
	m.FaceMap = make(map[string]int)
	m.EToE = make([][]int, m.NumElements)
	m.EToF = make([][]int, m.NumElements)

	for elemID := 0; elemID < m.NumElements; elemID++ {
		faceVertices := m.ElementFaces(elemID)
		if len(faceVertices) == 0 {
			return fmt.Errorf("element %d: unsupported type %s", elemID, m.ElementTypes[elemID])
		}
		m.EToE[elemID] = make([]int, len(faceVertices))
		m.EToF[elemID] = make([]int, len(faceVertices))

		for localFaceID, faceVerts := range faceVertices {
			// Create sorted vertex key for face
			sorted := make([]int, len(faceVerts))
			copy(sorted, faceVerts)
			sort.Ints(sorted)
			key := fmt.Sprintf("%v", sorted)

			if faceID, exists := m.FaceMap[key]; exists {
				face := &m.Faces[faceID]
				if face.Front >= 0 {
					return fmt.Errorf("face %v is shared by more than two elements", sorted)
				}
				face.Front = elemID
				m.EToE[elemID][localFaceID] = face.Back
				m.EToE[face.Back][face.LocalID] = elemID
				m.EToF[elemID][localFaceID] = faceID
			} else {
				faceID := len(m.Faces)
				m.Faces = append(m.Faces, FaceData{
					Vertices: faceVerts,
					Back:     elemID,
					Front:    -1,
					LocalID:  localFaceID,
				})
				m.FaceMap[key] = faceID
				m.EToE[elemID][localFaceID] = -1
				m.EToF[elemID][localFaceID] = faceID
			}
		}
	}
	m.NumFaces = len(m.Faces)
	return nil
}

func (m *Mesh) buildNodeToElement() {
	m.NToE = make([][]int, m.NumVertices)
	for k, verts := range m.EToV {
		for _, v := range verts {
			m.NToE[v] = append(m.NToE[v], k)
		}
	}
}

// ElementFaces returns the ordered face vertices of an element
func (m *Mesh) ElementFaces(elemID int) [][]int {
	var (
		verts = m.EToV[elemID]
	)
	if m.Dim == 2 {
		n := len(verts)
		faces := make([][]int, n)
		for i := 0; i < n; i++ {
			faces[i] = []int{verts[i], verts[(i+1)%n]}
		}
		return faces
	}
	return GetElementFaces(m.ElementTypes[elemID], verts)
}

// GetElementFaces returns the face vertices for each 3D element type
func GetElementFaces(elemType utils.ElementType, vertices []int) [][]int {
	switch elemType {
	case utils.Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]}, // Face 0
			{vertices[0], vertices[1], vertices[3]}, // Face 1
			{vertices[1], vertices[2], vertices[3]}, // Face 2
			{vertices[0], vertices[3], vertices[2]}, // Face 3
		}
	case utils.Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	case utils.Prism:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},              // Face 0 (bottom tri)
			{vertices[3], vertices[4], vertices[5]},              // Face 1 (top tri)
			{vertices[0], vertices[1], vertices[4], vertices[3]}, // Face 2 (quad)
			{vertices[1], vertices[2], vertices[5], vertices[4]}, // Face 3 (quad)
			{vertices[2], vertices[0], vertices[3], vertices[5]}, // Face 4 (quad)
		}
	case utils.Pyramid:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (base quad)
			{vertices[0], vertices[1], vertices[4]},              // Face 1 (tri)
			{vertices[1], vertices[2], vertices[4]},              // Face 2 (tri)
			{vertices[2], vertices[3], vertices[4]},              // Face 3 (tri)
			{vertices[3], vertices[0], vertices[4]},              // Face 4 (tri)
		}
	default:
		return [][]int{}
	}
}

// Entity access

func (m *Mesh) NumEntities(kind EntityKind) int {
	switch kind {
	case Node:
		return m.NumVertices
	case Face:
		return m.NumFaces
	default:
		return m.NumElements
	}
}

func (m *Mesh) CellNodes(c int) []int      { return m.EToV[c] }
func (m *Mesh) CellFaces(c int) []int      { return m.EToF[c] }
func (m *Mesh) FaceNodes(f int) []int      { return m.Faces[f].Vertices }
func (m *Mesh) BackCell(f int) int         { return m.Faces[f].Back }
func (m *Mesh) FrontCell(f int) int        { return m.Faces[f].Front }
func (m *Mesh) FaceIsBoundary(f int) bool  { return m.Faces[f].Front < 0 }
func (m *Mesh) NodeCells(n int) []int      { return m.NToE[n] }
func (m *Mesh) NodeCoords(n int) []float64 { return m.Vertices[n] }
func (m *Mesh) NodeIsBoundary(n int) bool  { return m.geom.nodeBoundary[n] }

// FaceOrientation is +1 when the face normal points out of cell c, -1 otherwise
func (m *Mesh) FaceOrientation(f, c int) float64 {
	if m.Faces[f].Front == c {
		return -1
	}
	return 1
}

// Owner returns the partition owning an entity: cells by EToP, nodes by their
// lowest numbered cell, faces by their Back cell.
func (m *Mesh) Owner(kind EntityKind, id int) int {
	if m.EToP == nil {
		return 0
	}
	switch kind {
	case Node:
		return m.EToP[m.NToE[id][0]]
	case Face:
		return m.EToP[m.Faces[id].Back]
	default:
		return m.EToP[id]
	}
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Dimension: %d\n", m.Dim)
	fmt.Printf("  Vertices: %d\n", m.NumVertices)
	fmt.Printf("  Elements: %d\n", m.NumElements)
	fmt.Printf("  Faces: %d\n", m.NumFaces)

	// Count element types
	typeCounts := make(map[utils.ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	fmt.Printf("  Element types:\n")
	for t, count := range typeCounts {
		fmt.Printf("    %s: %d\n", t, count)
	}

	boundaryFaces := 0
	for f := range m.Faces {
		if m.FaceIsBoundary(f) {
			boundaryFaces++
		}
	}
	fmt.Printf("  Boundary faces: %d\n", boundaryFaces)
}
