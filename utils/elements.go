package utils

// ElementType represents the cell shapes a diffusion mesh can carry

type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	// 2D elements
	Triangle
	Quad
	Polygon // arbitrary number of vertices, counter-clockwise
	// 3D elements
	Tet
	Hex
	Prism
	Pyramid
)

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Line",
		"Triangle", "Quad", "Polygon",
		"Tet", "Hex", "Prism", "Pyramid",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the spatial dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line:
		return 1
	case Triangle, Quad, Polygon:
		return 2
	case Tet, Hex, Prism, Pyramid:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type, 0 when variable
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line:
		return 2
	case Triangle:
		return 3
	case Quad:
		return 4
	case Tet:
		return 4
	case Hex:
		return 8
	case Prism:
		return 6
	case Pyramid:
		return 5
	default:
		return 0
	}
}

// VTK legacy cell type numbers
const (
	VTKVertex     = 1
	VTKLine       = 3
	VTKTriangle   = 5
	VTKPolygon    = 7
	VTKQuad       = 9
	VTKTetra      = 10
	VTKHexahedron = 12
	VTKWedge      = 13
	VTKPyramid    = 14
)

func (e ElementType) VTKType() int {
	switch e {
	case Point:
		return VTKVertex
	case Line:
		return VTKLine
	case Triangle:
		return VTKTriangle
	case Quad:
		return VTKQuad
	case Polygon:
		return VTKPolygon
	case Tet:
		return VTKTetra
	case Hex:
		return VTKHexahedron
	case Prism:
		return VTKWedge
	case Pyramid:
		return VTKPyramid
	}
	return 0
}

// ElementTypeFromVTK is also used for SU2, which shares the VTK numbering
func ElementTypeFromVTK(vtkType int) (e ElementType, ok bool) {
	ok = true
	switch vtkType {
	case VTKVertex:
		e = Point
	case VTKLine:
		e = Line
	case VTKTriangle:
		e = Triangle
	case VTKQuad:
		e = Quad
	case VTKPolygon:
		e = Polygon
	case VTKTetra:
		e = Tet
	case VTKHexahedron:
		e = Hex
	case VTKWedge:
		e = Prism
	case VTKPyramid:
		e = Pyramid
	default:
		ok = false
	}
	return
}
