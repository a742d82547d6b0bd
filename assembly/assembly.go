// Package assembly scatters element-local operators into global systems.
//
// Every assembler visits the local cells of one partition, owned and ghost,
// and writes only the rows of unknowns the partition owns. Values on ghost
// entities are read, never assembled.
package assembly

import (
	"fmt"

	"github.com/notargets/godiffusion/autodiff"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/utils"
)

type Assembler struct {
	Part  *mesh.Partition
	Store *fields.Store
	Order []int // cell visitation order, nil for ascending local cells
}

func NewAssembler(p *mesh.Partition, store *fields.Store) *Assembler {
	return &Assembler{Part: p, Store: store}
}

func (a *Assembler) cells() []int {
	if a.Order != nil {
		return a.Order
	}
	return a.Part.Cells
}

func (a *Assembler) tensor(c int) (D utils.Tensor, err error) {
	f, err := a.Store.Field(fields.DiffusionTensor)
	if err != nil {
		return
	}
	if D, err = utils.NewTensor(f.Vector(c)); err != nil {
		return
	}
	if D.Dim != a.Part.Mesh.Dim {
		err = fmt.Errorf("%dD tensor on a %dD mesh: %w", D.Dim, a.Part.Mesh.Dim, utils.ErrTensorComponents)
	}
	return
}

func (a *Assembler) fields(names ...string) (fs []*fields.Field, err error) {
	fs = make([]*fields.Field, len(names))
	for i, name := range names {
		if fs[i], err = a.Store.Field(name); err != nil {
			return nil, err
		}
	}
	return
}

// rowOwned is true for the entities whose equations this partition writes
func (a *Assembler) rowOwned(kind mesh.EntityKind, id int) bool {
	c := a.Part.Class(kind, id)
	return c.IsOwned() && !c.IsDirichlet()
}

// NodeUnknowns registers one unknown on every owned node without a
// prescribed value
func NodeUnknowns(reg *autodiff.Registry, p *mesh.Partition, name string) *autodiff.Block {
	return reg.RegisterUnknown(name, mesh.Node, p.Mesh.NumVertices, func(n int) bool {
		c := p.Class(mesh.Node, n)
		return c.IsOwned() && !c.IsDirichlet()
	})
}

// EnumerateGlobal numbers the unknowns of all partitions contiguously in
// partition order, then hands every ghost entity the index its owner
// assigned. regs[i] must register the same blocks, in the same order, for
// parts[i]. It returns the global unknown count.
func EnumerateGlobal(regs []*autodiff.Registry, parts []*mesh.Partition) (n int, err error) {
	if len(regs) != len(parts) {
		return 0, fmt.Errorf("%d registries for %d partitions", len(regs), len(parts))
	}
	for _, reg := range regs {
		n = reg.Enumerate(n)
	}
	if len(parts) == 1 {
		return
	}
	for i, p := range parts {
		for k, b := range regs[i].Blocks() {
			for _, id := range p.Local(b.Kind) {
				if !p.Class(b.Kind, id).IsGhost() {
					continue
				}
				ob := regs[p.Mesh.Owner(b.Kind, id)].Blocks()
				if len(ob) != len(regs[i].Blocks()) || ob[k].Name != b.Name {
					return 0, fmt.Errorf("partition %d: block %s does not match its owner", i, b.Name)
				}
				if idx := ob[k].Index(id); idx >= 0 {
					b.SetIndex(id, idx)
				}
			}
		}
	}
	return
}

// NewResidual sizes a residual to the rows enumerated by reg
func NewResidual(name string, reg *autodiff.Registry, ncols int) *autodiff.Residual {
	return autodiff.NewResidual(name, reg.First(), reg.First()+reg.Size(), ncols)
}
