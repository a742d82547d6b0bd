package DiffusionVEM

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/godiffusion/InputParameters"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/linsolve"
	"github.com/notargets/godiffusion/manufactured"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/model_problems"
	"github.com/notargets/godiffusion/report"
)

func defaults(t *testing.T, dim int) *InputParameters.InputParameters {
	family := InputParameters.VEM2D
	if dim == 3 {
		family = InputParameters.VEM3D
	}
	ip, err := InputParameters.Defaults(family)
	require.NoError(t, err)
	ip.Solver = linsolve.NewParameters(linsolve.LU, linsolve.None)
	return ip
}

func solve(t *testing.T, m *mesh.Mesh, ip *InputParameters.InputParameters) *Diffusion {
	c, err := NewDiffusion(m, ip)
	require.NoError(t, err)
	require.NoError(t, c.Init())
	require.NoError(t, c.Assemble())
	require.NoError(t, c.Solve())
	return c
}

func TestLinearIsExact(t *testing.T) {
	for _, tc := range []struct {
		shape   string
		n       int
		perturb bool
	}{
		{"quad", 4, true},
		{"tri", 4, true},
		{"hex", 3, false}, // perturbed hexes have warped faces
		{"tet", 2, true},
	} {
		m, err := mesh.NewStructured(tc.shape, tc.n)
		require.NoError(t, err)
		if tc.perturb {
			require.NoError(t, m.PerturbInterior(0.1, 11))
		}
		ip := defaults(t, m.Dim)
		ip.ExactSolution = manufactured.NameLinearX
		c := solve(t, m, ip)
		assert.Less(t, c.Error, 1.e-10, tc.shape)
	}
}

func TestIterativeDefaults(t *testing.T) {
	m, err := mesh.NewUnitSquareQuad(6)
	require.NoError(t, err)
	ip, err := InputParameters.Defaults(InputParameters.VEM2D)
	require.NoError(t, err)
	c := solve(t, m, ip)
	assert.Less(t, c.Error, 1.e-7)
}

// The stabilization is not scaled with h in 3D, so hexes converge at a
// reduced rate. The error still falls with every level.
func TestConvergence3D(t *testing.T) {
	cs := report.NewConvergenceStudy("vem3d sine")
	for _, n := range []int{4, 8, 12} {
		m, err := mesh.NewUnitCubeHex(n)
		require.NoError(t, err)
		c := solve(t, m, defaults(t, 3))
		cs.Add(model_problems.MeshSize(m), c.N, c.Error)
	}
	for l := 1; l < len(cs.Errors); l++ {
		assert.Less(t, cs.Errors[l], cs.Errors[l-1], "level %d", l)
	}
	for _, p := range cs.Orders()[1:] {
		assert.Greater(t, p, 0.4)
	}
}

func TestPartitionedMatchesSerial(t *testing.T) {
	serialMesh, err := mesh.NewUnitCubeHex(3)
	require.NoError(t, err)
	serial := solve(t, serialMesh, defaults(t, 3))

	m, err := mesh.NewUnitCubeHex(3)
	require.NoError(t, err)
	m.SlabPartition(3, 2)
	ip := defaults(t, 3)
	ip.Partitions = 3
	part := solve(t, m, ip)
	require.Len(t, part.Parts, 3)
	assert.Equal(t, serial.N, part.N)
	assert.InDelta(t, serial.Error, part.Error, 1.e-12)

	want, err := serial.Fields(0, fields.Solution)
	require.NoError(t, err)
	for i, p := range part.Parts {
		got, err := part.Fields(i, fields.Solution)
		require.NoError(t, err)
		// owned and ghost copies alike
		for _, n := range p.Nodes {
			assert.InDelta(t, want[0].Real(n), got[0].Real(n), 1.e-11, "partition %d node %d", i, n)
		}
	}
}

func TestRejectsWrongTensor(t *testing.T) {
	m, err := mesh.NewUnitCubeTet(1)
	require.NoError(t, err)
	_, err = NewDiffusion(m, defaults(t, 2))
	assert.Error(t, err)
}
