package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix(t *testing.T) {
	// Transpose
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		mNr, mNc := M.Dims()
		A := M.Transpose()
		aNr, aNc := A.Dims()
		assert.Equal(t, aNc, mNr)
		assert.Equal(t, aNr, mNc)
		assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, A.Data())
	}
	// Trace and Frobenius norm
	{
		M := NewMatrix(2, 2, []float64{
			1, 2,
			2, 3,
		})
		assert.Equal(t, 4., M.Trace())
		assert.InDelta(t, 4.242640687119285, M.FrobeniusNorm(), 1.e-14)
		assert.True(t, M.IsSymmetric(0))
		assert.False(t, NewMatrix(2, 2, []float64{1, 2, 0, 1}).IsSymmetric(1.e-12))
	}
	// Mul, Add, Subtract, Scale do not change the receiver
	{
		M := NewMatrix(2, 2, []float64{1, 2, 3, 4})
		I := NewIdentity(2)
		assert.Equal(t, M.Data(), M.Mul(I).Data())
		assert.Equal(t, []float64{2, 2, 3, 5}, M.Add(I).Data())
		assert.Equal(t, []float64{0, 2, 3, 3}, M.Subtract(I).Data())
		assert.Equal(t, []float64{2, 4, 6, 8}, M.Scale(2).Data())
		assert.Equal(t, []float64{1, 2, 3, 4}, M.Data())
		assert.Equal(t, []float64{5, 11}, M.MulVec([]float64{1, 2}))
		assert.Equal(t, []float64{2, 4}, M.Col(1))
		assert.Equal(t, []float64{3, 4}, M.Row(1))
	}
	// Read only protection
	{
		M := NewMatrix(2, 2)
		M.SetReadOnly("M")
		assert.Panics(t, func() { M.Set(0, 0, 1) })
		M.SetWritable()
		assert.NotPanics(t, func() { M.AddAt(0, 0, 1) })
		assert.Equal(t, 1., M.At(0, 0))
	}
}

func TestMatrixInverse(t *testing.T) {
	{
		M := NewMatrix(2, 2, []float64{
			4, 7,
			2, 6,
		})
		Minv, err := M.Inverse()
		require.NoError(t, err)
		P := M.Mul(Minv)
		I := NewIdentity(2)
		assert.InDelta(t, 0, P.Subtract(I).MaxAbs(), 1.e-14)
		assert.InDelta(t, 0.6, Minv.At(0, 0), 1.e-14)
	}
	{
		M := NewMatrix(2, 2, []float64{
			1, 2,
			2, 4,
		})
		_, err := M.Inverse()
		assert.True(t, errors.Is(err, ErrSingular))
	}
	{
		_, err := NewMatrix(2, 3).Inverse()
		assert.True(t, errors.Is(err, ErrSingular))
	}
}

func TestTensor(t *testing.T) {
	{
		T, err := NewTensor([]float64{100, 1, 0.5})
		require.NoError(t, err)
		assert.Equal(t, 2, T.Dim)
		D := T.Matrix()
		assert.Equal(t, []float64{100, 0.5, 0.5, 1}, D.Data())
		assert.Equal(t, []float64{100.5, 1.5}, T.Apply([]float64{1, 1}))
	}
	{
		T, err := NewTensor([]float64{1, 2, 3, 4, 5, 6})
		require.NoError(t, err)
		assert.Equal(t, 3, T.Dim)
		assert.Equal(t, []float64{
			1, 4, 5,
			4, 2, 6,
			5, 6, 3,
		}, T.Matrix().Data())
		var H [3][3]float64
		H[0][1], H[1][0] = 1, 1
		assert.Equal(t, 8., T.Contract(H))
	}
	{
		_, err := NewTensor([]float64{1, 2, 3, 4})
		assert.True(t, errors.Is(err, ErrTensorComponents))
	}
}
