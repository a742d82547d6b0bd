package utils

import (
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"
)

// SurfacePlot shades a nodal field over a triangulated 2D mesh
type SurfacePlot struct {
	Chart        *chart2d.Chart2D
	GraphicsMesh geometry.TriMesh
}

// NewTriMesh converts vertex coordinates and triangles into the AVS mesh format
func NewTriMesh(X, Y []float64, tris [][3]int) (gm geometry.TriMesh) {
	gm = geometry.TriMesh{
		XY:       make([]float32, 2*len(X)),
		TriVerts: make([][3]int64, len(tris)),
	}
	for i := range X {
		gm.XY[2*i] = float32(X[i])
		gm.XY[2*i+1] = float32(Y[i])
	}
	for k, tri := range tris {
		for n := 0; n < 3; n++ {
			gm.TriVerts[k][n] = int64(tri[n])
		}
	}
	return
}

func NewSurfacePlot(width, height int, gm geometry.TriMesh) (sp *SurfacePlot) {
	var (
		xMin, xMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
		yMin, yMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	)
	for i := 0; i < len(gm.XY)/2; i++ {
		x, y := gm.XY[2*i], gm.XY[2*i+1]
		xMin, xMax = min(xMin, x), max(xMax, x)
		yMin, yMax = min(yMin, y), max(yMax, y)
	}
	sp = &SurfacePlot{
		Chart: chart2d.NewChart2D(xMin, xMax, yMin, yMax,
			width, height, utils2.WHITE, utils2.BLACK),
		GraphicsMesh: gm,
	}
	return
}

// AddFunctionSurface shades field, a value per mesh vertex, and shows it for delay
func (sp *SurfacePlot) AddFunctionSurface(field []float64, delay time.Duration) {
	var (
		pField     = make([]float32, len(field))
		fMin, fMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	)
	for i, f := range field {
		pField[i] = float32(f)
		fMin, fMax = min(fMin, pField[i]), max(fMax, pField[i])
	}
	vs := geometry.VertexScalar{
		TMesh:       &sp.GraphicsMesh,
		FieldValues: pField,
	}
	sp.Chart.AddShadedVertexScalar(&vs, fMin, fMax)
	sp.Chart.AddTriMesh(sp.GraphicsMesh)
	time.Sleep(delay)
}
