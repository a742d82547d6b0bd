package fields

import (
	"errors"
	"fmt"

	"github.com/notargets/godiffusion/mesh"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrShape        = errors.New("field shape mismatch")
)

// Field names shared by the problem drivers and the writers
const (
	DiffusionTensor   = "DIFFUSION_TENSOR"
	BoundaryCondition = "BOUNDARY_CONDITION"
	RHS               = "RHS"
	Solution          = "SOLUTION"
	SolutionExact     = "SOLUTION_EXACT"
	Flux              = "FLUX"
	FaceFlux          = "FACE_FLUX"
	FluxExact         = "FLUX_EXACT"
)

// Field holds NComp values per mesh entity of one kind, indexed by global ID
type Field struct {
	Name  string
	Kind  mesh.EntityKind
	NComp int
	Data  []float64
}

func (f *Field) Real(id int) float64 { return f.Data[id*f.NComp] }

func (f *Field) SetReal(id int, val float64) { f.Data[id*f.NComp] = val }

// Vector aliases the storage of one entity
func (f *Field) Vector(id int) []float64 {
	return f.Data[id*f.NComp : (id+1)*f.NComp]
}

func (f *Field) SetVector(id int, val []float64) {
	if len(val) != f.NComp {
		panic(fmt.Errorf("%w: %s has %d components, got %d", ErrShape, f.Name, f.NComp, len(val)))
	}
	copy(f.Vector(id), val)
}

// Store is the set of named fields attached to one mesh, or to one partition
// of it
type Store struct {
	Mesh   *mesh.Mesh
	fields map[string]*Field
	order  []string
}

func NewStore(m *mesh.Mesh) *Store {
	return &Store{
		Mesh:   m,
		fields: make(map[string]*Field),
	}
}

// CreateField returns the named field, allocating it zeroed on first use.
// Asking again for an existing name with a different kind or size is an error.
func (s *Store) CreateField(name string, kind mesh.EntityKind, ncomp int) (*Field, error) {
	if f, ok := s.fields[name]; ok {
		if f.Kind != kind || f.NComp != ncomp {
			return nil, fmt.Errorf("%w: %s is %d x %s, requested %d x %s",
				ErrShape, name, f.NComp, f.Kind, ncomp, kind)
		}
		return f, nil
	}
	if ncomp < 1 {
		return nil, fmt.Errorf("%w: %s needs at least one component", ErrShape, name)
	}
	f := &Field{
		Name:  name,
		Kind:  kind,
		NComp: ncomp,
		Data:  make([]float64, s.Mesh.NumEntities(kind)*ncomp),
	}
	s.fields[name] = f
	s.order = append(s.order, name)
	return f, nil
}

func (s *Store) Field(name string) (*Field, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f, nil
}

func (s *Store) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields lists the fields in creation order
func (s *Store) Fields() (fs []*Field) {
	for _, name := range s.order {
		fs = append(fs, s.fields[name])
	}
	return
}

// Delete drops a field, a no-op if it does not exist
func (s *Store) Delete(name string) {
	if _, ok := s.fields[name]; !ok {
		return
	}
	delete(s.fields, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
