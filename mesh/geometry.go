package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/godiffusion/utils"
)

// ErrInvertedElement flags a cell whose vertex order gives it a non-positive
// volume, either tangled or listed against the element convention
var ErrInvertedElement = errors.New("inverted element")

type geometry struct {
	cellVolume     []float64
	cellBarycenter [][3]float64
	cellCentroid   [][3]float64
	cellDiameter   []float64
	faceArea       []float64
	faceBarycenter [][3]float64
	faceNormal     [][3]float64 // unit, from Back to Front
	nodeBoundary   []bool
}

func (m *Mesh) buildGeometry() (err error) {
	g := &geometry{
		cellVolume:     make([]float64, m.NumElements),
		cellBarycenter: make([][3]float64, m.NumElements),
		cellCentroid:   make([][3]float64, m.NumElements),
		cellDiameter:   make([]float64, m.NumElements),
		faceArea:       make([]float64, m.NumFaces),
		faceBarycenter: make([][3]float64, m.NumFaces),
		faceNormal:     make([][3]float64, m.NumFaces),
		nodeBoundary:   make([]bool, m.NumVertices),
	}
	m.geom = g
	for c, verts := range m.EToV {
		g.cellCentroid[c] = m.average(verts)
		for i := range verts {
			for j := i + 1; j < len(verts); j++ {
				g.cellDiameter[c] = math.Max(g.cellDiameter[c],
					utils.Distance(m.Vertices[verts[i]], m.Vertices[verts[j]]))
			}
		}
	}
	for f, face := range m.Faces {
		if m.Dim == 2 {
			m.edgeGeometry(f)
		} else {
			m.polygonGeometry(f)
		}
		if g.faceArea[f] < utils.NODETOL {
			return fmt.Errorf("face %d %v is degenerate", f, face.Vertices)
		}
		if face.Front < 0 {
			for _, v := range face.Vertices {
				g.nodeBoundary[v] = true
			}
		}
	}
	for c := range m.EToV {
		if m.Dim == 2 {
			m.polygonCellGeometry(c)
		} else {
			m.polyhedronCellGeometry(c)
		}
		if g.cellVolume[c] <= 0 {
			return fmt.Errorf("%w: element %d has volume %.3e", ErrInvertedElement, c, g.cellVolume[c])
		}
	}
	return
}

func (m *Mesh) average(verts []int) (xc [3]float64) {
	for _, v := range verts {
		for i := 0; i < 3; i++ {
			xc[i] += m.Vertices[v][i]
		}
	}
	for i := 0; i < 3; i++ {
		xc[i] /= float64(len(verts))
	}
	return
}

// Edge ordered counter-clockwise in its Back cell: the outward normal is (dy,-dx)
func (m *Mesh) edgeGeometry(f int) {
	var (
		g    = m.geom
		a, b = m.Vertices[m.Faces[f].Vertices[0]], m.Vertices[m.Faces[f].Vertices[1]]
		d    = utils.Sub3(b, a)
		l    = math.Hypot(d[0], d[1])
	)
	g.faceArea[f] = l
	g.faceBarycenter[f] = [3]float64{0.5 * (a[0] + b[0]), 0.5 * (a[1] + b[1]), 0}
	if l > 0 {
		g.faceNormal[f] = [3]float64{d[1] / l, -d[0] / l, 0}
	}
}

// Planar or nearly planar polygon, fanned from its vertex average. The vertex
// order of the Back cell makes the normal point out of it.
func (m *Mesh) polygonGeometry(f int) {
	var (
		g     = m.geom
		verts = m.Faces[f].Vertices
		fc    = m.average(verts)
		n     = len(verts)
		S     [3]float64
		tris  = make([][3]float64, n)
	)
	for k := 0; k < n; k++ {
		a := utils.Sub3(m.Vertices[verts[k]], fc[:])
		b := utils.Sub3(m.Vertices[verts[(k+1)%n]], fc[:])
		tris[k] = utils.Cross3(a, b)
		for i := 0; i < 3; i++ {
			S[i] += 0.5 * tris[k][i]
		}
	}
	area := utils.Norm3(S)
	g.faceArea[f] = area
	if area == 0 {
		return
	}
	var (
		unit = [3]float64{S[0] / area, S[1] / area, S[2] / area}
		bc   [3]float64
		wsum float64
	)
	for k := 0; k < n; k++ {
		w := 0.5 * utils.Dot3(tris[k], unit)
		p, q := m.Vertices[verts[k]], m.Vertices[verts[(k+1)%n]]
		for i := 0; i < 3; i++ {
			bc[i] += w * (fc[i] + p[i] + q[i]) / 3
		}
		wsum += w
	}
	for i := 0; i < 3; i++ {
		bc[i] /= wsum
	}
	g.faceBarycenter[f] = bc
	g.faceNormal[f] = unit
}

// Shoelace area and centroid of a counter-clockwise polygon
func (m *Mesh) polygonCellGeometry(c int) {
	var (
		g      = m.geom
		verts  = m.EToV[c]
		n      = len(verts)
		area   float64
		cx, cy float64
		x0     = m.Vertices[verts[0]]
	)
	// Relative to the first vertex to limit cancellation
	for i := 0; i < n; i++ {
		a, b := m.Vertices[verts[i]], m.Vertices[verts[(i+1)%n]]
		ax, ay := a[0]-x0[0], a[1]-x0[1]
		bx, by := b[0]-x0[0], b[1]-x0[1]
		cr := ax*by - bx*ay
		area += cr
		cx += (ax + bx) * cr
		cy += (ay + by) * cr
	}
	area *= 0.5
	g.cellVolume[c] = area
	if area != 0 {
		g.cellBarycenter[c] = [3]float64{x0[0] + cx/(6*area), x0[1] + cy/(6*area), 0}
	}
}

// Signed sum of tetrahedra from the cell vertex average to each fanned face
// triangle. An inverted cell comes out with a negative volume.
func (m *Mesh) polyhedronCellGeometry(c int) {
	var (
		g   = m.geom
		xc0 = g.cellCentroid[c]
		vol float64
		bc  [3]float64
	)
	for _, f := range m.EToF[c] {
		var (
			verts = m.Faces[f].Vertices
			n     = len(verts)
			fc    = m.average(verts)
			h     = utils.Sub3(fc[:], xc0[:])
		)
		for k := 0; k < n; k++ {
			p, q := m.Vertices[verts[k]], m.Vertices[verts[(k+1)%n]]
			a := utils.Cross3(utils.Sub3(p, fc[:]), utils.Sub3(q, fc[:]))
			tv := m.FaceOrientation(f, c) * utils.Dot3(a, h) / 6
			vol += tv
			for i := 0; i < 3; i++ {
				bc[i] += tv * (xc0[i] + fc[i] + p[i] + q[i]) / 4
			}
		}
	}
	g.cellVolume[c] = vol
	if vol != 0 {
		for i := 0; i < 3; i++ {
			bc[i] /= vol
		}
	}
	g.cellBarycenter[c] = bc
}

func (m *Mesh) orientedNormal3(f, c int) (n [3]float64) {
	n = m.geom.faceNormal[f]
	if m.Faces[f].Front == c {
		for i := 0; i < 3; i++ {
			n[i] = -n[i]
		}
	}
	return
}

// Geometry queries, coordinates are always returned with 3 components

func (m *Mesh) CellVolume(c int) float64 { return m.geom.cellVolume[c] }

// CellBarycenter is the true center of mass of the cell
func (m *Mesh) CellBarycenter(c int) []float64 {
	x := m.geom.cellBarycenter[c]
	return x[:]
}

// CellCentroid is the average of the cell vertices
func (m *Mesh) CellCentroid(c int) []float64 {
	x := m.geom.cellCentroid[c]
	return x[:]
}

// CellDiameter is the largest distance between two vertices of the cell
func (m *Mesh) CellDiameter(c int) float64 { return m.geom.cellDiameter[c] }

func (m *Mesh) FaceArea(f int) float64 { return m.geom.faceArea[f] }

func (m *Mesh) FaceBarycenter(f int) []float64 {
	x := m.geom.faceBarycenter[f]
	return x[:]
}

// FaceUnitNormal points from the Back cell to the Front cell (outward on the boundary)
func (m *Mesh) FaceUnitNormal(f int) []float64 {
	n := m.geom.faceNormal[f]
	return n[:]
}

// OrientedUnitNormal points out of cell c
func (m *Mesh) OrientedUnitNormal(f, c int) []float64 {
	n := m.orientedNormal3(f, c)
	return n[:]
}
