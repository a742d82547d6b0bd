package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/godiffusion/mesh"
)

func TestExpr(t *testing.T) {
	x := Expr{Value: 2, Terms: []Term{{0, 1}}}
	y := Expr{Value: 3, Terms: []Term{{1, 1}}}
	e := x.Scale(2).Add(y).Sub(x).AddConst(1) // x + y + 1
	assert.Equal(t, 6., e.Value)
	assert.Equal(t, 1., e.Derivative(0))
	assert.Equal(t, 1., e.Derivative(1))
	assert.Equal(t, 0., e.Derivative(2))

	c := e.Compact()
	assert.Equal(t, []Term{{0, 1}, {1, 1}}, c.Terms)
	assert.Empty(t, x.Sub(x).Compact().Terms)

	s := Sum([]float64{1, 0, -2}, []Expr{x, Const(5), y})
	assert.Equal(t, 2.-6., s.Value)
	assert.Equal(t, -2., s.Derivative(1))
	assert.Len(t, s.Terms, 2)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	even := r.RegisterUnknown("U", mesh.Node, 6, func(id int) bool { return id%2 == 0 })
	all := r.RegisterUnknown("P", mesh.Cell, 2, nil)
	next := r.Enumerate(10)
	assert.Equal(t, 15, next)
	assert.Equal(t, 5, r.Size())
	assert.Equal(t, 10, r.First())

	assert.Equal(t, []int{0, 2, 4}, even.Owned())
	assert.Equal(t, 10, even.First)
	assert.Equal(t, 13, even.Last)
	assert.Equal(t, 11, even.Index(2))
	assert.Equal(t, -1, even.Index(3))
	assert.Equal(t, -1, even.Index(99))
	assert.Equal(t, 13, all.Index(0))
	assert.Equal(t, 14, all.Index(1))

	even.SetIndex(3, 42)
	assert.Equal(t, 42, even.Index(3))
	v := even.Var(4, 1.5)
	assert.Equal(t, 1.5, v.Value)
	assert.Equal(t, []Term{{12, 1}}, v.Terms)
	assert.Panics(t, func() { even.Var(5, 0) })
	assert.Panics(t, func() { r.RegisterUnknown("late", mesh.Face, 1, nil) })
}

func TestResidualAccumulates(t *testing.T) {
	res := NewResidual("test", 2, 4, 4)
	x := func(i int) Expr { return Expr{Terms: []Term{{i, 1}}} }
	res.Add(2, x(0).Scale(2).AddConst(1))
	res.Add(2, x(0).Add(x(3)).AddConst(1))
	res.Add(3, x(1).Scale(-1))
	res.Add(3, x(1)) // cancels
	assert.Equal(t, []float64{2, 0}, res.Values())
	assert.Panics(t, func() { res.Add(4, Const(1)) })
	assert.Panics(t, func() { res.Add(1, Const(1)) })

	J := res.Jacobian()
	nr, nc := J.Dims()
	assert.Equal(t, 2, nr)
	assert.Equal(t, 4, nc)
	assert.Equal(t, 3., J.At(0, 0))
	assert.Equal(t, 1., J.At(0, 3))
	assert.Equal(t, 0., J.At(1, 1))
}

func TestGather(t *testing.T) {
	a := NewResidual("a", 0, 2, 3)
	b := NewResidual("b", 2, 3, 3)
	empty := NewResidual("empty", 3, 3, 3)
	a.Add(0, Expr{Value: 1, Terms: []Term{{0, 2}, {2, -1}}})
	a.Add(1, Expr{Value: 2, Terms: []Term{{1, 4}}})
	b.Add(2, Expr{Value: 3, Terms: []Term{{2, 5}, {0, 1}}})

	J, R, err := Gather([]*Residual{a, b, empty})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, R)
	D := J.ToDense()
	assert.Equal(t, []float64{2, 0, -1}, D.Row(0))
	assert.Equal(t, []float64{0, 4, 0}, D.Row(1))
	assert.Equal(t, []float64{1, 0, 5}, D.Row(2))

	_, _, err = Gather([]*Residual{b, a})
	assert.Error(t, err)
	_, _, err = Gather([]*Residual{a})
	assert.Error(t, err)
}
