package PoissonFEM

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
	div(−D∇u) = f on a triangulated 2D domain with u = g on the boundary,
	continuous piecewise linear elements. Unknowns live on the free nodes;
	the system is assembled directly as A·x = b with the boundary values
	eliminated into b.
*/
type Poisson struct {
	*model_problems.Partitioned
	Title  string
	D      utils.Tensor
	Exact  manufactured.Solution
	Params linsolve.Parameters
	Error  float64 // max norm at the nodes, set by Solve

	nodes  *autodiff.Block
	sys    *assembly.DirectSystem
	timers *report.Timers
}

func NewPoisson(m *mesh.Mesh, ip *InputParameters.InputParameters) (c *Poisson, err error) {
	if m.Dim != 2 {
		return nil, fmt.Errorf("%s needs a 2D mesh, got %dD", InputParameters.FEM2D, m.Dim)
	}
	if err = ip.Validate(m.Dim); err != nil {
		return
	}
	if ip.Partitions > 1 {
		return nil, fmt.Errorf("%s runs on a single partition, %d requested", InputParameters.FEM2D, ip.Partitions)
	}
	c = &Poisson{
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
	if c.Partitioned, err = model_problems.NewPartitioned(m, 1, ip.PartitionObjective); err != nil {
		return nil, err
	}
	return
}

func (c *Poisson) Timers() *report.Timers { return c.timers }

func (c *Poisson) Result() (int, float64) { return c.N, c.Error }

func (c *Poisson) Init() (err error) {
	var (
		m = c.Mesh
		p = c.Parts[0]
	)
	err = c.CreateFields(
		model_problems.FieldSpec{Name: fields.DiffusionTensor, Kind: mesh.Cell, NComp: len(c.D.K)},
		model_problems.FieldSpec{Name: fields.BoundaryCondition, Kind: mesh.Node, NComp: 1},
		model_problems.FieldSpec{Name: fields.RHS, Kind: mesh.Node, NComp: 1},
		model_problems.FieldSpec{Name: fields.Solution, Kind: mesh.Node, NComp: 1},
		model_problems.FieldSpec{Name: fields.SolutionExact, Kind: mesh.Node, NComp: 1},
	)
	if err != nil {
		return
	}
	if err = c.SetTensor(c.D); err != nil {
		return
	}
	fs, err := c.Fields(0, fields.BoundaryCondition, fields.RHS, fields.Solution, fields.SolutionExact)
	if err != nil {
		return
	}
	bc, rhs, sol, exact := fs[0], fs[1], fs[2], fs[3]
	ndir := p.MarkDirichlet(mesh.Node, m.NodeIsBoundary)
	log.Printf("Number of Dirichlet nodes: %d", ndir)
	for _, n := range p.Nodes {
		x := m.NodeCoords(n)
		exact.SetReal(n, c.Exact.Value(x))
		rhs.SetReal(n, manufactured.Source(c.Exact, c.D, x))
		if p.Class(mesh.Node, n).IsDirichlet() {
			bc.SetReal(n, c.Exact.Value(x))
			sol.SetReal(n, bc.Real(n))
		}
	}
	c.nodes = assembly.NodeUnknowns(c.Regs[0], p, fields.Solution)
	return c.Enumerate()
}

func (c *Poisson) Assemble() error {
	reg := c.Regs[0]
	c.sys = assembly.NewDirectSystem(reg.First(), reg.First()+reg.Size(), c.N)
	return assembly.NewAssembler(c.Parts[0], c.Stores[0]).FEM(c.nodes, c.sys)
}

// Solve replaces the free nodal values with the solution of A·x = b
func (c *Poisson) Solve() (err error) {
	x, err := model_problems.SolveLinear(c.sys.Matrix(), c.sys.B, c.Params, c.timers)
	if err != nil {
		return
	}
	return c.timers.Time(report.Update, func() (err error) {
		fs, err := c.Fields(0, fields.Solution)
		if err != nil {
			return
		}
		for _, n := range c.nodes.Owned() {
			fs[0].SetReal(n, x[c.nodes.Index(n)])
		}
		if c.Error, err = c.MaxError(fields.Solution, fields.SolutionExact); err != nil {
			return
		}
		log.Printf("|err|_C = %.6e", c.Error)
		return
	})
}
