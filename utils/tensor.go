package utils

import (
	"errors"
	"fmt"
)

var ErrTensorComponents = errors.New("diffusion tensor needs 3 components in 2D or 6 in 3D")

// Tensor is a symmetric diffusion tensor stored by its independent components:
// 2D: Dxx, Dyy, Dxy
// 3D: Dxx, Dyy, Dzz, Dxy, Dxz, Dyz
type Tensor struct {
	Dim int
	K   []float64
}

func TensorDimension(ncomp int) (dim int, err error) {
	switch ncomp {
	case 3:
		dim = 2
	case 6:
		dim = 3
	default:
		err = fmt.Errorf("got %d components: %w", ncomp, ErrTensorComponents)
	}
	return
}

func NewTensor(components []float64) (t Tensor, err error) {
	var dim int
	if dim, err = TensorDimension(len(components)); err != nil {
		return
	}
	t = Tensor{Dim: dim, K: make([]float64, len(components))}
	copy(t.K, components)
	return
}

func NewIsotropicTensor(dim int, k float64) Tensor {
	if dim == 2 {
		return Tensor{Dim: 2, K: []float64{k, k, 0}}
	}
	return Tensor{Dim: 3, K: []float64{k, k, k, 0, 0, 0}}
}

func (t Tensor) At(i, j int) float64 {
	if i == j {
		return t.K[i]
	}
	if t.Dim == 2 {
		return t.K[2]
	}
	switch i + j {
	case 1: // xy
		return t.K[3]
	case 2: // xz
		return t.K[4]
	default: // yz
		return t.K[5]
	}
}

func (t Tensor) Matrix() (D Matrix) {
	D = NewMatrix(t.Dim, t.Dim)
	for i := 0; i < t.Dim; i++ {
		for j := 0; j < t.Dim; j++ {
			D.M.Set(i, j, t.At(i, j))
		}
	}
	return
}

// Apply returns D·v, using the first Dim entries of v.
func (t Tensor) Apply(v []float64) (r []float64) {
	r = make([]float64, t.Dim)
	for i := 0; i < t.Dim; i++ {
		for j := 0; j < t.Dim; j++ {
			r[i] += t.At(i, j) * v[j]
		}
	}
	return
}

// Contract returns D:H = sum_ij D_ij H_ij.
func (t Tensor) Contract(H [3][3]float64) (s float64) {
	for i := 0; i < t.Dim; i++ {
		for j := 0; j < t.Dim; j++ {
			s += t.At(i, j) * H[i][j]
		}
	}
	return
}
