package DiffusionVEM

import (
	"fmt"
	"log"

	"github.com/notargets/godiffusion/InputParameters"
	"github.com/notargets/godiffusion/assembly"
	"github.com/notargets/godiffusion/autodiff"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/linsolve"
	"github.com/notargets/godiffusion/manufactured"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/model_problems"
	"github.com/notargets/godiffusion/report"
	"github.com/notargets/godiffusion/utils"
)

/*
	Lowest order virtual elements for div(−D∇u) = f on polygonal (2D) or
	polyhedral (3D) meshes, nodal unknowns with u = g on the boundary. The
	mesh may be split into partitions, each assembling the rows of the nodes
	it owns.
*/
type Diffusion struct {
	*model_problems.Partitioned
	Title  string
	D      utils.Tensor
	Exact  manufactured.Solution
	Params linsolve.Parameters
	Error  float64 // max norm at the nodes, set by Solve

	nodes  []*autodiff.Block
	res    []*autodiff.Residual
	timers *report.Timers
}

func NewDiffusion(m *mesh.Mesh, ip *InputParameters.InputParameters) (c *Diffusion, err error) {
	if m.Dim != 2 && m.Dim != 3 {
		return nil, fmt.Errorf("virtual elements need a 2D or 3D mesh, got %dD", m.Dim)
	}
	if err = ip.Validate(m.Dim); err != nil {
		return
	}
	c = &Diffusion{
		Title:  ip.Title,
		Params: ip.Solver,
		timers: report.NewTimers(),
	}
	if c.D, err = ip.DiffusionTensor(); err != nil {
		return nil, err
	}
	if c.Exact, err = ip.Exact(m.Dim); err != nil {
		return nil, err
	}
	if c.Partitioned, err = model_problems.NewPartitioned(m, ip.Partitions, ip.PartitionObjective); err != nil {
		return nil, err
	}
	c.nodes = make([]*autodiff.Block, len(c.Parts))
	c.res = make([]*autodiff.Residual, len(c.Parts))
	return
}

func (c *Diffusion) Timers() *report.Timers { return c.timers }

func (c *Diffusion) Result() (int, float64) { return c.N, c.Error }

func (c *Diffusion) Init() (err error) {
	err = c.CreateFields(
		model_problems.FieldSpec{Name: fields.DiffusionTensor, Kind: mesh.Cell, NComp: len(c.D.K)},
		model_problems.FieldSpec{Name: fields.BoundaryCondition, Kind: mesh.Node, NComp: 1},
		model_problems.FieldSpec{Name: fields.RHS, Kind: mesh.Cell, NComp: 1},
		model_problems.FieldSpec{Name: fields.Solution, Kind: mesh.Node, NComp: 1},
		model_problems.FieldSpec{Name: fields.SolutionExact, Kind: mesh.Node, NComp: 1},
	)
	if err != nil {
		return
	}
	if err = c.SetTensor(c.D); err != nil {
		return
	}
	err = c.ForEach(func(i int, p *mesh.Partition) error {
		m := p.Mesh
		fs, err := c.Fields(i, fields.BoundaryCondition, fields.RHS, fields.Solution, fields.SolutionExact)
		if err != nil {
			return err
		}
		bc, rhs, sol, exact := fs[0], fs[1], fs[2], fs[3]
		ndir := p.MarkDirichlet(mesh.Node, m.NodeIsBoundary)
		log.Printf("Partition %d: %d Dirichlet nodes", p.ID, ndir)
		for _, n := range p.Nodes {
			x := m.NodeCoords(n)
			exact.SetReal(n, c.Exact.Value(x))
			if p.Class(mesh.Node, n).IsDirichlet() {
				bc.SetReal(n, c.Exact.Value(x))
				sol.SetReal(n, bc.Real(n))
			}
		}
		for _, cell := range p.Cells {
			rhs.SetReal(cell, manufactured.Source(c.Exact, c.D, m.CellCentroid(cell)))
		}
		c.nodes[i] = assembly.NodeUnknowns(c.Regs[i], p, fields.Solution)
		return nil
	})
	if err != nil {
		return
	}
	return c.Enumerate()
}

func (c *Diffusion) Assemble() error {
	return c.ForEach(func(i int, p *mesh.Partition) error {
		c.res[i] = assembly.NewResidual("VEM", c.Regs[i], c.N)
		return assembly.NewAssembler(p, c.Stores[i]).VEM(c.nodes[i], c.res[i])
	})
}

// Solve takes one Newton step from the current nodal values, exact for this
// linear system
func (c *Diffusion) Solve() (err error) {
	y, err := c.SolveResiduals(c.res, c.Params, c.timers)
	if err != nil {
		return
	}
	return c.timers.Time(report.Update, func() (err error) {
		if err = c.Update(y); err != nil {
			return
		}
		if c.Error, err = c.MaxError(fields.Solution, fields.SolutionExact); err != nil {
			return
		}
		log.Printf("|err|_C = %.6e", c.Error)
		return
	})
}
