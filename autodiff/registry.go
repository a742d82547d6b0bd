package autodiff

import (
	"fmt"

	"github.com/notargets/godiffusion/mesh"
)

// Block is one named set of unknowns living on entities of a single kind
type Block struct {
	Name        string
	Kind        mesh.EntityKind
	First, Last int // global index range [First, Last) of the owned unknowns
	index       []int
	owned       []int
}

// Index returns the global index of the unknown on entity id, -1 if none
func (b *Block) Index(id int) int {
	if id < 0 || id >= len(b.index) {
		return -1
	}
	return b.index[id]
}

// Owned lists the entities carrying an unknown owned by this block, ascending
func (b *Block) Owned() []int { return b.owned }

// SetIndex attaches an index owned elsewhere, for a ghost copy
func (b *Block) SetIndex(id, index int) { b.index[id] = index }

// Registry numbers the unknowns of one partition. Unknowns are registered
// per block, then Enumerate assigns contiguous indices in registration
// order, ascending entity ID within a block.
type Registry struct {
	blocks     []*Block
	first      int
	size       int
	enumerated bool
}

func NewRegistry() *Registry { return &Registry{} }

// RegisterUnknown declares one unknown per entity of kind with mask(id) true,
// out of n entities
func (r *Registry) RegisterUnknown(name string, kind mesh.EntityKind, n int, mask func(id int) bool) *Block {
	if r.enumerated {
		panic(fmt.Errorf("unknown %s registered after enumeration", name))
	}
	b := &Block{Name: name, Kind: kind, index: make([]int, n)}
	for id := 0; id < n; id++ {
		b.index[id] = -1
		if mask == nil || mask(id) {
			b.owned = append(b.owned, id)
		}
	}
	r.blocks = append(r.blocks, b)
	return b
}

// Enumerate numbers the unknowns starting at first and returns one past the
// last index used
func (r *Registry) Enumerate(first int) (next int) {
	r.first, next = first, first
	for _, b := range r.blocks {
		b.First = next
		for _, id := range b.owned {
			b.index[id] = next
			next++
		}
		b.Last = next
	}
	r.size = next - first
	r.enumerated = true
	return
}

func (r *Registry) First() int { return r.first }
func (r *Registry) Size() int  { return r.size }

func (r *Registry) Blocks() []*Block { return r.blocks }

// Var is the unknown on entity id evaluated at value
func (b *Block) Var(id int, value float64) Expr {
	idx := b.Index(id)
	if idx < 0 {
		panic(fmt.Errorf("%s has no unknown on %s %d", b.Name, b.Kind, id))
	}
	return Expr{Value: value, Terms: []Term{{idx, 1}}}
}
