package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialPartition(t *testing.T) {
	m, err := NewUnitSquareTri(2)
	require.NoError(t, err)
	parts, err := Decompose(m, 1)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	p := parts[0]
	assert.Len(t, p.Cells, m.NumElements)
	assert.Len(t, p.Owned(Node), m.NumVertices)
	n := p.MarkDirichlet(Node, m.NodeIsBoundary)
	assert.Equal(t, 8, n)
	assert.Equal(t, DirichletBoundary, p.Class(Node, 0))
	assert.Equal(t, Interior, p.Class(Node, 4))
	assert.Empty(t, p.Neighbors())
}

func TestDecompose(t *testing.T) {
	m, err := NewUnitCubeHex(3)
	require.NoError(t, err)
	m.SlabPartition(3, 0)
	parts, err := Decompose(m, 3)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	// Every entity is owned exactly once
	for _, kind := range []EntityKind{Node, Face, Cell} {
		owners := make([]int, m.NumEntities(kind))
		for _, p := range parts {
			for _, id := range p.Owned(kind) {
				owners[id]++
			}
		}
		for id, o := range owners {
			assert.Equal(t, 1, o, "%s %d", kind, id)
		}
	}
	for _, p := range parts {
		// Each owned node sees all of its cells
		for _, n := range p.Owned(Node) {
			for _, c := range m.NodeCells(n) {
				assert.True(t, p.Class(Cell, c).IsLocal())
			}
		}
		for _, c := range p.Cells {
			assert.Equal(t, m.Owner(Cell, c) == p.ID, p.Class(Cell, c).IsOwned())
			assert.Equal(t, m.Owner(Cell, c) != p.ID, p.Class(Cell, c).IsGhost())
		}
	}
	// Ghosts are the node neighbours of the owned cells
	for _, p := range parts {
		for _, c := range p.Owned(Cell) {
			for _, n := range m.CellNodes(c) {
				for _, nc := range m.NodeCells(n) {
					assert.True(t, p.Class(Cell, nc).IsLocal(), "partition %d cell %d", p.ID, nc)
				}
			}
		}
	}
	assert.Equal(t, []int{1}, parts[0].Neighbors())
	assert.Equal(t, []int{0, 2}, parts[1].Neighbors())

	// Dirichlet marking reaches ghost copies
	p := parts[1]
	p.MarkDirichlet(Node, m.NodeIsBoundary)
	for _, n := range p.Nodes {
		c := p.Class(Node, n)
		assert.Equal(t, m.NodeIsBoundary(n), c.IsDirichlet())
		assert.Equal(t, m.Owner(Node, n) != p.ID, c.IsGhost())
	}
}

func TestDecomposeRejectsBadAssignment(t *testing.T) {
	m, err := NewUnitSquareQuad(2)
	require.NoError(t, err)
	m.EToP = []int{0, 1, 2, 0}
	_, err = Decompose(m, 2)
	assert.Error(t, err)
}

func TestBuildMetisGraph(t *testing.T) {
	m, err := NewUnitSquareQuad(3)
	require.NoError(t, err)
	mp := NewMeshPartitioner(m, DefaultPartitionConfig(2))
	xadj, adjncy, vwgt, adjwgt := mp.buildMetisGraph()
	assert.Len(t, xadj, m.NumElements+1)
	assert.Equal(t, int32(0), xadj[0])
	assert.Equal(t, int(xadj[m.NumElements]), len(adjncy))
	assert.Equal(t, len(adjncy), len(adjwgt))
	assert.Len(t, vwgt, m.NumElements)
	// Interior faces are listed from both sides
	var interior int
	for f := 0; f < m.NumFaces; f++ {
		if !m.FaceIsBoundary(f) {
			interior++
		}
	}
	assert.Equal(t, 2*interior, len(adjncy))
	// corner cell has two neighbors, center cell four
	assert.Equal(t, int32(2), xadj[1]-xadj[0])
	assert.Equal(t, int32(4), xadj[5]-xadj[4])
}

func TestPartitionSingle(t *testing.T) {
	m, err := NewUnitSquareQuad(2)
	require.NoError(t, err)
	require.NoError(t, NewMeshPartitioner(m, DefaultPartitionConfig(1)).Partition())
	assert.Equal(t, []int{0, 0, 0, 0}, m.EToP)
}
