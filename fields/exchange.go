package fields

import (
	"fmt"

	"github.com/notargets/godiffusion/mesh"
)

// Exchange copies the named field from each entity's owner to every ghost
// copy of it. stores[i] belongs to parts[i], and a partition's ID is its
// index. Owned values are never modified.
func Exchange(stores []*Store, parts []*mesh.Partition, name string) error {
	if len(stores) != len(parts) {
		return fmt.Errorf("%d stores for %d partitions", len(stores), len(parts))
	}
	if len(parts) == 1 {
		return nil
	}
	src := make([]*Field, len(stores))
	for i, s := range stores {
		f, err := s.Field(name)
		if err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
		if i > 0 && (f.Kind != src[0].Kind || f.NComp != src[0].NComp) {
			return fmt.Errorf("%w: partition %d holds %s as %d x %s", ErrShape, i, name, f.NComp, f.Kind)
		}
		src[i] = f
	}
	kind := src[0].Kind
	for i, p := range parts {
		for _, id := range p.Local(kind) {
			if !p.Class(kind, id).IsGhost() {
				continue
			}
			owner := p.Mesh.Owner(kind, id)
			copy(src[i].Vector(id), src[owner].Vector(id))
		}
	}
	return nil
}
