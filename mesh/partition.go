package mesh

import (
	"fmt"
	"sort"
)

// EntityClass is the role of an entity within one partition
type EntityClass uint8

const (
	Remote            EntityClass = iota // not present on this partition
	Interior                             // owned, carries an unknown
	DirichletBoundary                    // owned, value prescribed
	Ghost                                // read-only copy of an entity owned elsewhere
	GhostDirichlet                       // ghost whose value is prescribed
)

func (c EntityClass) String() string {
	return [...]string{"Remote", "Interior", "DirichletBoundary", "Ghost", "GhostDirichlet"}[c]
}

func (c EntityClass) IsLocal() bool     { return c != Remote }
func (c EntityClass) IsOwned() bool     { return c == Interior || c == DirichletBoundary }
func (c EntityClass) IsGhost() bool     { return c == Ghost || c == GhostDirichlet }
func (c EntityClass) IsDirichlet() bool { return c == DirichletBoundary || c == GhostDirichlet }

func (c EntityClass) withDirichlet() EntityClass {
	switch c {
	case Interior:
		return DirichletBoundary
	case Ghost:
		return GhostDirichlet
	}
	return c
}

// Partition is the view of the mesh held by one partition: its owned cells
// plus the ring of ghost cells sharing a node with them.
type Partition struct {
	ID    int
	Mesh  *Mesh
	Cells []int // local cells, ascending
	Nodes []int
	Faces []int

	CellClass []EntityClass // indexed by global ID
	NodeClass []EntityClass
	FaceClass []EntityClass
}

// NewSerialPartition owns the whole mesh
func NewSerialPartition(m *Mesh) *Partition {
	p := &Partition{
		Mesh:      m,
		Cells:     make([]int, m.NumElements),
		Nodes:     make([]int, m.NumVertices),
		Faces:     make([]int, m.NumFaces),
		CellClass: make([]EntityClass, m.NumElements),
		NodeClass: make([]EntityClass, m.NumVertices),
		FaceClass: make([]EntityClass, m.NumFaces),
	}
	for i := range p.Cells {
		p.Cells[i] = i
		p.CellClass[i] = Interior
	}
	for i := range p.Nodes {
		p.Nodes[i] = i
		p.NodeClass[i] = Interior
	}
	for i := range p.Faces {
		p.Faces[i] = i
		p.FaceClass[i] = Interior
	}
	return p
}

// Decompose builds one Partition per part from m.EToP
func Decompose(m *Mesh, nparts int) (parts []*Partition, err error) {
	if nparts <= 1 || m.EToP == nil {
		return []*Partition{NewSerialPartition(m)}, nil
	}
	if len(m.EToP) != m.NumElements {
		return nil, fmt.Errorf("EToP has %d entries for %d elements", len(m.EToP), m.NumElements)
	}
	for k, p := range m.EToP {
		if p < 0 || p >= nparts {
			return nil, fmt.Errorf("element %d assigned to partition %d of %d", k, p, nparts)
		}
	}
	parts = make([]*Partition, nparts)
	for ip := range parts {
		parts[ip] = m.buildPartition(ip)
	}
	return
}

func (m *Mesh) buildPartition(ip int) (p *Partition) {
	p = &Partition{
		ID:        ip,
		Mesh:      m,
		CellClass: make([]EntityClass, m.NumElements),
		NodeClass: make([]EntityClass, m.NumVertices),
		FaceClass: make([]EntityClass, m.NumFaces),
	}
	for c := 0; c < m.NumElements; c++ {
		if m.EToP[c] == ip {
			p.CellClass[c] = Interior
		}
	}
	// Ghost layer: every cell sharing a node with an owned cell. It holds the
	// full stencil of each owned node and face.
	for c := 0; c < m.NumElements; c++ {
		if m.EToP[c] != ip {
			continue
		}
		for _, n := range m.EToV[c] {
			for _, nc := range m.NToE[n] {
				if p.CellClass[nc] == Remote {
					p.CellClass[nc] = Ghost
				}
			}
		}
	}
	for c, class := range p.CellClass {
		if class == Remote {
			continue
		}
		p.Cells = append(p.Cells, c)
		for _, n := range m.EToV[c] {
			if p.NodeClass[n] == Remote {
				p.NodeClass[n] = classFor(m.Owner(Node, n) == ip)
			}
		}
		for _, f := range m.EToF[c] {
			if p.FaceClass[f] == Remote {
				p.FaceClass[f] = classFor(m.Owner(Face, f) == ip)
			}
		}
	}
	p.Nodes = localIDs(p.NodeClass)
	p.Faces = localIDs(p.FaceClass)
	return
}

func classFor(owned bool) EntityClass {
	if owned {
		return Interior
	}
	return Ghost
}

func localIDs(classes []EntityClass) (ids []int) {
	for id, c := range classes {
		if c.IsLocal() {
			ids = append(ids, id)
		}
	}
	return
}

func (p *Partition) Class(kind EntityKind, id int) EntityClass {
	switch kind {
	case Node:
		return p.NodeClass[id]
	case Face:
		return p.FaceClass[id]
	default:
		return p.CellClass[id]
	}
}

func (p *Partition) Local(kind EntityKind) []int {
	switch kind {
	case Node:
		return p.Nodes
	case Face:
		return p.Faces
	default:
		return p.Cells
	}
}

// Owned returns the owned entities of a kind, ascending
func (p *Partition) Owned(kind EntityKind) (ids []int) {
	for _, id := range p.Local(kind) {
		if p.Class(kind, id).IsOwned() {
			ids = append(ids, id)
		}
	}
	return
}

// MarkDirichlet flags local entities with a prescribed value, both owned
// and ghost copies, and returns how many owned entities were marked.
func (p *Partition) MarkDirichlet(kind EntityKind, isDirichlet func(id int) bool) (owned int) {
	classes := p.NodeClass
	switch kind {
	case Face:
		classes = p.FaceClass
	case Cell:
		classes = p.CellClass
	}
	for _, id := range p.Local(kind) {
		if !isDirichlet(id) {
			continue
		}
		classes[id] = classes[id].withDirichlet()
		if classes[id].IsOwned() {
			owned++
		}
	}
	return
}

// Neighbors lists the other partitions this one holds ghosts from
func (p *Partition) Neighbors() (nbrs []int) {
	seen := make(map[int]bool)
	for _, c := range p.Cells {
		if o := p.Mesh.Owner(Cell, c); o != p.ID && !seen[o] {
			seen[o] = true
			nbrs = append(nbrs, o)
		}
	}
	sort.Ints(nbrs)
	return
}
