// Package report measures discretization errors, run phase timings and
// observed orders of convergence.
package report

import (
	"math"

	"github.com/notargets/godiffusion/fields"
	"github.com/notargets/godiffusion/mesh"
)

// MaxNorm is the largest component difference between two fields of the same
// shape over the entities owned by p
func MaxNorm(p *mesh.Partition, computed, exact *fields.Field) (norm float64) {
	for _, id := range p.Owned(computed.Kind) {
		var (
			a = computed.Vector(id)
			b = exact.Vector(id)
		)
		for i := range a {
			norm = math.Max(norm, math.Abs(a[i]-b[i]))
		}
	}
	return
}

// AggregateMax combines per-partition values into their maximum
func AggregateMax(values []float64) (m float64) {
	m = math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return
}
