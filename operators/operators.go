// Package operators builds the dense element-local operators of the three
// discretizations. Inputs are plain geometry and tensors, so nothing here
// depends on the mesh or on the unknown numbering.
package operators

import "errors"

var (
	ErrInconsistentFrame  = errors.New("inconsistent local frame, RᵀN differs from V·D")
	ErrSingularProjection = errors.New("singular projection matrix B·D")
	ErrDegenerateElement  = errors.New("degenerate element")
	ErrShapeMismatch      = errors.New("element shape mismatch")
	ErrNotTriangle        = errors.New("element is not a triangle")
)
