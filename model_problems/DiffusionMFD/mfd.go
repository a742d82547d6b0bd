package DiffusionMFD

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
	Mixed form of div(−D∇u) = f on a 2D polygonal mesh:

		q = −D∇u,  div q = f

	with one pressure per cell and one normal flux per face. Pressures are
	prescribed on the boundary through the face equations.
*/
type Diffusion struct {
	*model_problems.Partitioned
	Title  string
	D      utils.Tensor
	Exact  manufactured.Solution
	Params linsolve.Parameters

	Error     float64 // max norm of the cell pressures, set by Solve
	FluxError float64 // max norm of the reconstructed cell fluxes

	unknowns []assembly.MFDUnknowns
	res      []*autodiff.Residual
	timers   *report.Timers
}

func NewDiffusion(m *mesh.Mesh, ip *InputParameters.InputParameters) (c *Diffusion, err error) {
	if m.Dim != 2 {
		return nil, fmt.Errorf("%s needs a 2D mesh, got %dD", InputParameters.MFD2D, m.Dim)
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
	c.unknowns = make([]assembly.MFDUnknowns, len(c.Parts))
	c.res = make([]*autodiff.Residual, len(c.Parts))
	return
}

func (c *Diffusion) Timers() *report.Timers { return c.timers }

func (c *Diffusion) Result() (int, float64) { return c.N, c.Error }

func (c *Diffusion) Init() (err error) {
	dim := c.Mesh.Dim
	err = c.CreateFields(
		model_problems.FieldSpec{Name: fields.DiffusionTensor, Kind: mesh.Cell, NComp: len(c.D.K)},
		model_problems.FieldSpec{Name: fields.BoundaryCondition, Kind: mesh.Face, NComp: 1},
		model_problems.FieldSpec{Name: fields.RHS, Kind: mesh.Cell, NComp: 1},
		model_problems.FieldSpec{Name: fields.Solution, Kind: mesh.Cell, NComp: 1},
		model_problems.FieldSpec{Name: fields.SolutionExact, Kind: mesh.Cell, NComp: 1},
		model_problems.FieldSpec{Name: fields.FaceFlux, Kind: mesh.Face, NComp: 1},
		model_problems.FieldSpec{Name: fields.Flux, Kind: mesh.Cell, NComp: dim},
		model_problems.FieldSpec{Name: fields.FluxExact, Kind: mesh.Cell, NComp: dim},
	)
	if err != nil {
		return
	}
	if err = c.SetTensor(c.D); err != nil {
		return
	}
	err = c.ForEach(func(i int, p *mesh.Partition) error {
		m := p.Mesh
		fs, err := c.Fields(i, fields.BoundaryCondition, fields.RHS, fields.SolutionExact, fields.FluxExact)
		if err != nil {
			return err
		}
		bc, rhs, exact, fluxExact := fs[0], fs[1], fs[2], fs[3]
		ndir := p.MarkDirichlet(mesh.Face, m.FaceIsBoundary)
		log.Printf("Partition %d: %d Dirichlet faces", p.ID, ndir)
		for _, f := range p.Faces {
			if m.FaceIsBoundary(f) {
				bc.SetReal(f, c.Exact.Value(m.FaceBarycenter(f)))
			}
		}
		for _, cell := range p.Cells {
			x := m.CellBarycenter(cell)
			exact.SetReal(cell, c.Exact.Value(x))
			rhs.SetReal(cell, manufactured.Source(c.Exact, c.D, x))
			fluxExact.SetVector(cell, manufactured.Flux(c.Exact, c.D, x))
		}
		c.unknowns[i] = assembly.RegisterMFD(c.Regs[i], p)
		return nil
	})
	if err != nil {
		return
	}
	return c.Enumerate()
}

func (c *Diffusion) Assemble() error {
	return c.ForEach(func(i int, p *mesh.Partition) error {
		c.res[i] = assembly.NewResidual("MFD", c.Regs[i], c.N)
		return assembly.NewAssembler(p, c.Stores[i]).MFD(c.unknowns[i], c.res[i])
	})
}

// Solve takes one Newton step from the current pressures and fluxes, exact
// for this linear system, then reconstructs the cell fluxes
func (c *Diffusion) Solve() (err error) {
	y, err := c.SolveResiduals(c.res, c.Params, c.timers)
	if err != nil {
		return
	}
	return c.timers.Time(report.Update, func() (err error) {
		if err = c.Update(y); err != nil {
			return
		}
		err = c.ForEach(func(i int, p *mesh.Partition) error {
			return assembly.NewAssembler(p, c.Stores[i]).ReconstructFlux()
		})
		if err != nil {
			return
		}
		if c.Error, err = c.MaxError(fields.Solution, fields.SolutionExact); err != nil {
			return
		}
		if c.FluxError, err = c.MaxError(fields.Flux, fields.FluxExact); err != nil {
			return
		}
		log.Printf("|err|_C = %.6e, |flux err|_C = %.6e", c.Error, c.FluxError)
		return
	})
}
