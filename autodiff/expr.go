package autodiff

import "sort"

// Term is one partial derivative of an expression
type Term struct {
	Index int
	Coef  float64
}

// Expr is a value together with its derivatives with respect to the global
// unknowns. Expressions here are affine, so the derivatives are exact.
type Expr struct {
	Value float64
	Terms []Term
}

func Const(v float64) Expr { return Expr{Value: v} }

func (e Expr) Add(o Expr) Expr {
	terms := make([]Term, 0, len(e.Terms)+len(o.Terms))
	terms = append(append(terms, e.Terms...), o.Terms...)
	return Expr{Value: e.Value + o.Value, Terms: terms}
}

func (e Expr) Sub(o Expr) Expr { return e.Add(o.Scale(-1)) }

func (e Expr) Scale(a float64) Expr {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{t.Index, a * t.Coef}
	}
	return Expr{Value: a * e.Value, Terms: terms}
}

func (e Expr) AddConst(c float64) Expr {
	return Expr{Value: e.Value + c, Terms: e.Terms}
}

// Sum is the linear combination Σ coef[i]·es[i]
func Sum(coef []float64, es []Expr) (s Expr) {
	for i, e := range es {
		if coef[i] == 0 {
			continue
		}
		s.Value += coef[i] * e.Value
		for _, t := range e.Terms {
			s.Terms = append(s.Terms, Term{t.Index, coef[i] * t.Coef})
		}
	}
	return
}

// Derivative with respect to unknown index
func (e Expr) Derivative(index int) (d float64) {
	for _, t := range e.Terms {
		if t.Index == index {
			d += t.Coef
		}
	}
	return
}

// Compact merges repeated indices and drops exact zeros, ordered by index
func (e Expr) Compact() Expr {
	acc := make(map[int]float64, len(e.Terms))
	for _, t := range e.Terms {
		acc[t.Index] += t.Coef
	}
	terms := make([]Term, 0, len(acc))
	for i, c := range acc {
		if c != 0 {
			terms = append(terms, Term{i, c})
		}
	}
	sort.Slice(terms, func(a, b int) bool { return terms[a].Index < terms[b].Index })
	return Expr{Value: e.Value, Terms: terms}
}
