// Package manufactured provides closed-form solutions of div(−D∇u) = f used
// to drive and verify the model problems.
package manufactured

import (
	"fmt"
	"math"

	"github.com/notargets/godiffusion/utils"
)

// Solution is a smooth field u with its derivatives, evaluated at 3-component
// coordinates
type Solution interface {
	Value(x []float64) float64
	Gradient(x []float64) [3]float64
	Hessian(x []float64) [3][3]float64
}

// Source returns f = −D:∇∇u
func Source(s Solution, D utils.Tensor, x []float64) float64 {
	return -D.Contract(s.Hessian(x))
}

// Flux returns −D∇u
func Flux(s Solution, D utils.Tensor, x []float64) (q []float64) {
	g := s.Gradient(x)
	q = D.Apply(g[:])
	for i := range q {
		q[i] = -q[i]
	}
	return
}

// LinearX is u = x
type LinearX struct{}

func (LinearX) Value(x []float64) float64         { return x[0] }
func (LinearX) Gradient(x []float64) [3]float64   { return [3]float64{1, 0, 0} }
func (LinearX) Hessian(x []float64) [3][3]float64 { return [3][3]float64{} }

// QuadraticX is u = x²
type QuadraticX struct{}

func (QuadraticX) Value(x []float64) float64       { return x[0] * x[0] }
func (QuadraticX) Gradient(x []float64) [3]float64 { return [3]float64{2 * x[0], 0, 0} }
func (QuadraticX) Hessian(x []float64) (H [3][3]float64) {
	H[0][0] = 2
	return
}

// Affine is u = C0 + C·x
type Affine struct {
	C0 float64
	C  [3]float64
}

func (a Affine) Value(x []float64) float64 {
	return a.C0 + a.C[0]*x[0] + a.C[1]*x[1] + a.C[2]*x[2]
}
func (a Affine) Gradient(x []float64) [3]float64   { return a.C }
func (a Affine) Hessian(x []float64) [3][3]float64 { return [3][3]float64{} }

// SineProduct is the product of sin(πx_i) over the first Dim coordinates,
// vanishing on the boundary of the unit square or cube
type SineProduct struct {
	Dim int
}

func (s SineProduct) factors(x []float64) (sn, cs [3]float64) {
	for i := 0; i < 3; i++ {
		sn[i], cs[i] = 1, 0
		if i < s.Dim {
			sn[i], cs[i] = math.Sin(math.Pi*x[i]), math.Pi*math.Cos(math.Pi*x[i])
		}
	}
	return
}

func (s SineProduct) Value(x []float64) float64 {
	sn, _ := s.factors(x)
	return sn[0] * sn[1] * sn[2]
}

func (s SineProduct) Gradient(x []float64) (g [3]float64) {
	sn, cs := s.factors(x)
	for i := 0; i < s.Dim; i++ {
		g[i] = cs[i]
		for j := 0; j < 3; j++ {
			if j != i {
				g[i] *= sn[j]
			}
		}
	}
	return
}

func (s SineProduct) Hessian(x []float64) (H [3][3]float64) {
	sn, cs := s.factors(x)
	u := sn[0] * sn[1] * sn[2]
	for i := 0; i < s.Dim; i++ {
		H[i][i] = -math.Pi * math.Pi * u
		for j := i + 1; j < s.Dim; j++ {
			v := cs[i] * cs[j]
			for k := 0; k < 3; k++ {
				if k != i && k != j {
					v *= sn[k]
				}
			}
			H[i][j], H[j][i] = v, v
		}
	}
	return
}

// Names accepted by Parse
const (
	NameLinearX    = "linear-x"
	NameQuadraticX = "quadratic-x"
	NameSine       = "sine"
	NameAffine     = "affine"
)

// Parse returns the named solution. Affine takes up to four coefficients,
// C0 first.
func Parse(name string, dim int, coefficients []float64) (Solution, error) {
	switch name {
	case NameLinearX:
		return LinearX{}, nil
	case NameQuadraticX:
		return QuadraticX{}, nil
	case NameSine:
		return SineProduct{Dim: dim}, nil
	case NameAffine:
		if len(coefficients) > 4 {
			return nil, fmt.Errorf("affine solution takes at most 4 coefficients, got %d", len(coefficients))
		}
		var a Affine
		for i, c := range coefficients {
			if i == 0 {
				a.C0 = c
			} else {
				a.C[i-1] = c
			}
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown exact solution %q, want %s, %s, %s or %s",
		name, NameLinearX, NameQuadraticX, NameSine, NameAffine)
}
