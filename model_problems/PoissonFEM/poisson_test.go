package PoissonFEM

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/godiffusion/InputParameters"
	"github.com/notargets/godiffusion/manufactured"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/model_problems"
	"github.com/notargets/godiffusion/report"
)

func defaults(t *testing.T) *InputParameters.InputParameters {
	ip, err := InputParameters.Defaults(InputParameters.FEM2D)
	require.NoError(t, err)
	ip.Solver.RelativeTolerance = 1.e-14
	ip.Solver.AbsoluteTolerance = 1.e-15
	return ip
}

func TestPoissonQuadraticX(t *testing.T) {
	// The second difference of x² is exact on this grid, so the nodal
	// values carry only solver error
	m, err := mesh.NewUnitSquareTri(6)
	require.NoError(t, err)
	c, err := NewPoisson(m, defaults(t))
	require.NoError(t, err)
	files, err := model_problems.Run(c, filepath.Join(t.TempDir(), "res"))
	require.NoError(t, err)
	assert.Less(t, c.Error, 1.e-8)
	assert.Equal(t, 25, c.N)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}
	assert.Greater(t, c.Timers().Get(report.Solve), time.Duration(0))
}

func TestPoissonConvergence(t *testing.T) {
	cs := report.NewConvergenceStudy("fem2d sine")
	for _, n := range []int{4, 8, 16} {
		m, err := mesh.NewUnitSquareTri(n)
		require.NoError(t, err)
		ip := defaults(t)
		ip.Tensor = []float64{1, 1, 0}
		ip.ExactSolution = manufactured.NameSine
		c, err := NewPoisson(m, ip)
		require.NoError(t, err)
		require.NoError(t, c.Init())
		require.NoError(t, c.Assemble())
		require.NoError(t, c.Solve())
		cs.Add(model_problems.MeshSize(m), c.N, c.Error)
	}
	p := cs.Orders()
	assert.Greater(t, p[1], 1.7)
	assert.Greater(t, p[2], 1.7)
}

func TestPoissonRejects(t *testing.T) {
	{ // 3D mesh
		m, err := mesh.NewUnitCubeTet(1)
		require.NoError(t, err)
		_, err = NewPoisson(m, defaults(t))
		assert.Error(t, err)
	}
	{ // partitions
		m, err := mesh.NewUnitSquareTri(2)
		require.NoError(t, err)
		ip := defaults(t)
		ip.Partitions = 2
		_, err = NewPoisson(m, ip)
		assert.Error(t, err)
	}
	{ // quads are not P1 elements
		m, err := mesh.NewUnitSquareQuad(2)
		require.NoError(t, err)
		c, err := NewPoisson(m, defaults(t))
		require.NoError(t, err)
		require.NoError(t, c.Init())
		assert.Error(t, c.Assemble())
	}
}
