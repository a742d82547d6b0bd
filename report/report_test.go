package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
)

func TestMaxNorm(t *testing.T) {
	m, err := mesh.NewUnitSquareQuad(4)
	require.NoError(t, err)
	m.SlabPartition(2, 0)
	parts, err := mesh.Decompose(m, 2)
	require.NoError(t, err)

	s := fields.NewStore(m)
	u, err := s.CreateField(fields.Solution, mesh.Node, 1)
	require.NoError(t, err)
	ue, err := s.CreateField(fields.SolutionExact, mesh.Node, 1)
	require.NoError(t, err)
	for n := 0; n < m.NumVertices; n++ {
		u.SetReal(n, m.NodeCoords(n)[0])
	}
	copy(ue.Data, u.Data)
	// A node on the left edge, owned by partition 0
	u.SetReal(5, u.Real(5)-0.25)
	require.Equal(t, 0, m.Owner(mesh.Node, 5))

	norms := []float64{MaxNorm(parts[0], u, ue), MaxNorm(parts[1], u, ue)}
	assert.Equal(t, 0.25, norms[0])
	assert.Equal(t, 0., norms[1])
	assert.Equal(t, 0.25, AggregateMax(norms))

	q, err := s.CreateField(fields.Flux, mesh.Cell, 2)
	require.NoError(t, err)
	qe, err := s.CreateField(fields.FluxExact, mesh.Cell, 2)
	require.NoError(t, err)
	q.SetVector(3, []float64{0, -2})
	assert.Equal(t, 2., MaxNorm(mesh.NewSerialPartition(m), q, qe))
}

func TestTimers(t *testing.T) {
	tm := NewTimers()
	require.NoError(t, tm.Time(Solve, func() error {
		time.Sleep(2 * time.Millisecond)
		return nil
	}))
	assert.GreaterOrEqual(t, tm.Get(Solve), 2*time.Millisecond)
	assert.Zero(t, tm.Get(Assemble))
	assert.Error(t, tm.Time(IO, func() error { return assert.AnError }))

	o := NewTimers()
	o.Add(Assemble, time.Second)
	tm.Merge(o)
	assert.Equal(t, time.Second, tm.Get(Assemble))

	var buf bytes.Buffer
	tm.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "| T_assemble = 1.000000")
	assert.Contains(t, out, "| T_total")
	assert.Equal(t, 11, strings.Count(out, "\n"))
}

func TestConvergence(t *testing.T) {
	cs := NewConvergenceStudy("fem2d")
	for _, h := range []float64{0.25, 0.125, 0.0625} {
		cs.Add(h, int(1/(h*h)), 3*h*h)
	}
	p := cs.Orders()
	assert.True(t, math.IsNaN(p[0]))
	assert.InDelta(t, 2., p[1], 1.e-12)
	assert.InDelta(t, 2., p[2], 1.e-12)

	other := NewConvergenceStudy("mfd2d")
	other.Add(0.5, 8, 0)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cs, other))
	studies, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, studies, 2)
	assert.Equal(t, "fem2d", studies[0].Title)
	assert.Equal(t, cs.H, studies[0].H)
	assert.Equal(t, cs.Errors, studies[0].Errors)
	assert.Equal(t, []int{16, 64, 256}, studies[0].NumDOF)
	assert.True(t, math.IsNaN(studies[1].Orders()[0]))

	buf.Reset()
	cs.Print(&buf)
	assert.Contains(t, buf.String(), "2.000")

	_, err = ReadCSV(strings.NewReader("Title,h,NumDOF,MaxError\nx,abc,1,1\n"))
	assert.Error(t, err)
}
