package manufactured

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/godiffusion/utils"
)

// Central differences of Value and Gradient
func checkDerivatives(t *testing.T, s Solution, x []float64) {
	const h = 1.e-5
	g, H := s.Gradient(x), s.Hessian(x)
	for i := 0; i < 3; i++ {
		xp := append([]float64{}, x...)
		xm := append([]float64{}, x...)
		xp[i] += h
		xm[i] -= h
		assert.InDelta(t, (s.Value(xp)-s.Value(xm))/(2*h), g[i], 1.e-7)
		gp, gm := s.Gradient(xp), s.Gradient(xm)
		for j := 0; j < 3; j++ {
			assert.InDelta(t, (gp[j]-gm[j])/(2*h), H[j][i], 1.e-6, "H[%d][%d]", j, i)
		}
	}
}

func TestDerivatives(t *testing.T) {
	x := []float64{0.3, 0.7, 0.2}
	for _, s := range []Solution{
		LinearX{}, QuadraticX{},
		Affine{C0: 1, C: [3]float64{2, -3, 4}},
		SineProduct{Dim: 2}, SineProduct{Dim: 3},
	} {
		checkDerivatives(t, s, x)
	}
}

func TestSource(t *testing.T) {
	D, err := utils.NewTensor([]float64{100, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, -200., Source(QuadraticX{}, D, []float64{0.5, 0.5, 0}))
	assert.Equal(t, []float64{-100, 0}, Flux(LinearX{}, D, []float64{0.1, 0.2, 0}))

	// 3D sine against the expanded form
	D, err = utils.NewTensor([]float64{10, 2, 1, 0.3, 0.2, 0.1})
	require.NoError(t, err)
	var (
		x          = []float64{0.3, 0.6, 0.45}
		sx, sy, sz = math.Sin(math.Pi * x[0]), math.Sin(math.Pi * x[1]), math.Sin(math.Pi * x[2])
		cx, cy, cz = math.Cos(math.Pi * x[0]), math.Cos(math.Pi * x[1]), math.Cos(math.Pi * x[2])
		u          = sx * sy * sz
		want       = math.Pi * math.Pi * ((10+2+1)*u -
			2*0.3*cx*cy*sz - 2*0.2*cx*sy*cz - 2*0.1*sx*cy*cz)
	)
	assert.InDelta(t, want, Source(SineProduct{Dim: 3}, D, x), 1.e-10)
	assert.InDelta(t, 0., SineProduct{Dim: 3}.Value([]float64{1, 0.5, 0.5}), 1.e-15)
}

func TestParse(t *testing.T) {
	s, err := Parse(NameSine, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, SineProduct{Dim: 3}, s)
	s, err = Parse(NameAffine, 2, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 1.+2*0.5+3*0.25, s.Value([]float64{0.5, 0.25, 0}))
	_, err = Parse(NameAffine, 2, []float64{1, 2, 3, 4, 5})
	assert.Error(t, err)
	_, err = Parse("cubic", 2, nil)
	assert.Error(t, err)
}
