package model_problems

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/notargets/godiffusion/assembly"
	"github.com/notargets/godiffusion/autodiff"
	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/linsolve"
	"github.com/notargets/godiffusion/mesh"
	"github.com/notargets/godiffusion/mesh/writers"
	"github.com/notargets/godiffusion/report"
	"github.com/notargets/godiffusion/utils"
)

// Problem is one discretized boundary value problem taken from setup to output
type Problem interface {
	Init() error
	Assemble() error
	Solve() error
	Save(prefix string) (files []string, err error)
	Timers() *report.Timers
	// Result is the unknown count and the max norm error of the last Solve
	Result() (ndof int, errC float64)
}

// Run takes p through Init, Assemble, Solve and Save. Nothing is written
// unless every earlier step succeeded.
func Run(p Problem, prefix string) (files []string, err error) {
	t := p.Timers()
	if err = t.Time(report.Init, p.Init); err != nil {
		return
	}
	if err = t.Time(report.Assemble, p.Assemble); err != nil {
		return
	}
	if err = p.Solve(); err != nil {
		return
	}
	err = t.Time(report.IO, func() (err error) {
		files, err = p.Save(prefix)
		return
	})
	return
}

// Partitioned holds one view, field store and unknown registry per partition
// of a mesh
type Partitioned struct {
	Mesh   *mesh.Mesh
	Parts  []*mesh.Partition
	Stores []*fields.Store
	Regs   []*autodiff.Registry
	N      int // global unknown count, set by Enumerate
}

// NewPartitioned splits m into nparts. Cells keep an existing assignment of
// the right size, otherwise METIS computes one.
func NewPartitioned(m *mesh.Mesh, nparts int, objective string) (pp *Partitioned, err error) {
	if nparts > 1 && !validAssignment(m.EToP, m.NumElements, nparts) {
		cfg := mesh.DefaultPartitionConfig(int32(nparts))
		cfg.Objective = objective
		if err = mesh.NewMeshPartitioner(m, cfg).Partition(); err != nil {
			return
		}
	}
	pp = &Partitioned{Mesh: m}
	if pp.Parts, err = mesh.Decompose(m, nparts); err != nil {
		return
	}
	for range pp.Parts {
		pp.Stores = append(pp.Stores, fields.NewStore(m))
		pp.Regs = append(pp.Regs, autodiff.NewRegistry())
	}
	return
}

func validAssignment(etop []int, ne, nparts int) bool {
	if len(etop) != ne {
		return false
	}
	for _, p := range etop {
		if p < 0 || p >= nparts {
			return false
		}
	}
	return true
}

// ForEach runs fn on every partition concurrently and returns the first
// error in partition order
func (pp *Partitioned) ForEach(fn func(i int, p *mesh.Partition) error) error {
	var (
		wg   sync.WaitGroup
		errs = make([]error, len(pp.Parts))
	)
	for i, p := range pp.Parts {
		wg.Add(1)
		go func(i int, p *mesh.Partition) {
			defer wg.Done()
			errs[i] = fn(i, p)
		}(i, p)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			if len(pp.Parts) > 1 {
				return fmt.Errorf("partition %d: %w", i, err)
			}
			return err
		}
	}
	return nil
}

// CreateField allocates the named field in every store
func (pp *Partitioned) CreateField(name string, kind mesh.EntityKind, ncomp int) error {
	for _, s := range pp.Stores {
		if _, err := s.CreateField(name, kind, ncomp); err != nil {
			return err
		}
	}
	return nil
}

type FieldSpec struct {
	Name  string
	Kind  mesh.EntityKind
	NComp int
}

func (pp *Partitioned) CreateFields(specs ...FieldSpec) error {
	for _, spec := range specs {
		if err := pp.CreateField(spec.Name, spec.Kind, spec.NComp); err != nil {
			return err
		}
	}
	return nil
}

// Fields looks up the named fields in the store of partition i
func (pp *Partitioned) Fields(i int, names ...string) (fs []*fields.Field, err error) {
	fs = make([]*fields.Field, len(names))
	for k, name := range names {
		if fs[k], err = pp.Stores[i].Field(name); err != nil {
			return nil, err
		}
	}
	return
}

// SetTensor writes D into the DIFFUSION_TENSOR field of every local cell
func (pp *Partitioned) SetTensor(D utils.Tensor) error {
	return pp.ForEach(func(i int, p *mesh.Partition) error {
		fs, err := pp.Fields(i, fields.DiffusionTensor)
		if err != nil {
			return err
		}
		for _, c := range p.Cells {
			fs[0].SetVector(c, D.K)
		}
		return nil
	})
}

// Exchange brings the ghost copies of the named fields up to date
func (pp *Partitioned) Exchange(names ...string) error {
	for _, name := range names {
		if err := fields.Exchange(pp.Stores, pp.Parts, name); err != nil {
			return err
		}
	}
	return nil
}

// Enumerate numbers the registered unknowns of all partitions
func (pp *Partitioned) Enumerate() (err error) {
	pp.N, err = assembly.EnumerateGlobal(pp.Regs, pp.Parts)
	return
}

// SolveResiduals gathers the partition residuals and solves J·y = R for the
// correction y
func (pp *Partitioned) SolveResiduals(res []*autodiff.Residual, params linsolve.Parameters,
	t *report.Timers) (y []float64, err error) {
	J, R, err := autodiff.Gather(res)
	if err != nil {
		return
	}
	return SolveLinear(J, R, params, t)
}

// SolveLinear solves A·x = b from a zero initial guess, charging the
// preconditioner and the iterations to their timers
func SolveLinear(A utils.CSR, b []float64, params linsolve.Parameters, t *report.Timers) (x []float64, err error) {
	var s *linsolve.Solver
	if s, err = linsolve.NewSolver(params); err != nil {
		return
	}
	if err = t.Time(report.Precond, func() error { return s.SetMatrix(A) }); err != nil {
		return
	}
	x = make([]float64, len(b))
	if err = t.Time(report.Solve, func() error { return s.Solve(b, x) }); err != nil {
		return nil, err
	}
	log.Printf("Linear solver %s: %d iterations, residual %.3e", params, s.Iterations, s.Residual)
	return
}

// Update applies x −= y to the owned unknowns of every block, in the field of
// the same name, then refreshes the ghosts
func (pp *Partitioned) Update(y []float64) error {
	err := pp.ForEach(func(i int, p *mesh.Partition) error {
		for _, b := range pp.Regs[i].Blocks() {
			f, err := pp.Stores[i].Field(b.Name)
			if err != nil {
				return err
			}
			for _, id := range b.Owned() {
				f.SetReal(id, f.Real(id)-y[b.Index(id)])
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, b := range pp.Regs[0].Blocks() {
		if err = pp.Exchange(b.Name); err != nil {
			return err
		}
	}
	return nil
}

// MaxError is the max norm of computed − exact over all owned entities
func (pp *Partitioned) MaxError(computed, exact string) (float64, error) {
	norms := make([]float64, len(pp.Parts))
	for i, p := range pp.Parts {
		fs, err := pp.Fields(i, computed, exact)
		if err != nil {
			return 0, err
		}
		norms[i] = report.MaxNorm(p, fs[0], fs[1])
	}
	return report.AggregateMax(norms), nil
}

func (pp *Partitioned) Save(prefix string) ([]string, error) {
	return writers.WritePVTK(prefix, pp.Parts, pp.Stores)
}

// MeshSize is the largest cell diameter
func MeshSize(m *mesh.Mesh) (h float64) {
	for c := 0; c < m.NumElements; c++ {
		h = math.Max(h, m.CellDiameter(c))
	}
	return
}

// PrintSummary reports the error and the phase timings
func PrintSummary(title string, errC float64, t *report.Timers, w io.Writer) {
	fmt.Fprintf(w, "%s\n|err|_C = %.6e\n", title, errC)
	t.Print(w)
	fmt.Fprintf(w, "%s\n", utils.GetMemUsage())
}

// PlotSolution shades a nodal field over a 2D mesh, polygons fanned from
// their first vertex
func PlotSolution(m *mesh.Mesh, field []float64, delay time.Duration) {
	var (
		X, Y = make([]float64, m.NumVertices), make([]float64, m.NumVertices)
		tris [][3]int
	)
	for n := 0; n < m.NumVertices; n++ {
		X[n], Y[n] = m.Vertices[n][0], m.Vertices[n][1]
	}
	for _, verts := range m.EToV {
		for k := 1; k+1 < len(verts); k++ {
			tris = append(tris, [3]int{verts[0], verts[k], verts[k+1]})
		}
	}
	sp := utils.NewSurfacePlot(1000, 1000, utils.NewTriMesh(X, Y, tris))
	sp.AddFunctionSurface(field, delay)
}

// NodeValues returns the first component of f at every mesh node. Cell
// fields are averaged over the cells around each node.
func NodeValues(m *mesh.Mesh, f *fields.Field) (vals []float64) {
	vals = make([]float64, m.NumVertices)
	switch f.Kind {
	case mesh.Node:
		for n := range vals {
			vals[n] = f.Real(n)
		}
	case mesh.Cell:
		for n := range vals {
			cells := m.NodeCells(n)
			for _, c := range cells {
				vals[n] += f.Real(c)
			}
			vals[n] /= float64(max(len(cells), 1))
		}
	}
	return
}
