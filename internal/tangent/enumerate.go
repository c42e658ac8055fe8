// Package tangent enumerates polynomial curves over a bounded integer
// lattice, derives the tangent line at each integer point, and filters the
// results down to problems with small integer answers.
//
// Enumeration is lazy: Curves, Tangents and Candidates return iter.Seq
// values that produce one element per pull and stop as soon as the consumer
// breaks out of its range loop. Every sequence is finite, restartable and
// deterministic.
package tangent

import (
	"iter"
	"slices"

	"github.com/njchilds90/examgen/symbolic"
)

// Var is the curve variable.
const Var = "x"

// Lattice bounds the enumeration: leading coefficients are drawn from
// Leading, the remaining coefficients from [Min, Max], and tangents are
// taken at every integer in Domain.
type Lattice struct {
	Leading []int64 `json:"leading"`
	Min     int64   `json:"min"`
	Max     int64   `json:"max"`
	Domain  []int64 `json:"domain"`
}

// DefaultLattice returns leading coefficients ±1..±5, other coefficients in
// [-10, 10] and tangent points in [-5, 5].
func DefaultLattice() Lattice {
	return Lattice{
		Leading: []int64{-5, -4, -3, -2, -1, 1, 2, 3, 4, 5},
		Min:     -10,
		Max:     10,
		Domain:  []int64{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5},
	}
}

// Curve is a polynomial with integer coefficients, leading first.
type Curve struct {
	Coefficients []int64
	Expr         symbolic.Expr
}

// NewCurve builds the polynomial c[0]*x^n + ... + c[n].
func NewCurve(coeffs ...int64) Curve {
	x := symbolic.S(Var)
	n := len(coeffs) - 1
	terms := make([]symbolic.Expr, 0, len(coeffs))
	for i, c := range coeffs {
		terms = append(terms, symbolic.MulOf(symbolic.N(c), symbolic.PowOf(x, symbolic.N(int64(n-i)))))
	}
	return Curve{Coefficients: slices.Clone(coeffs), Expr: symbolic.AddOf(terms...)}
}

// Degree is the curve's polynomial degree.
func (c Curve) Degree() int { return len(c.Coefficients) - 1 }

func (c Curve) String() string { return c.Expr.String() }

// Quadratics yields a*x^2 + b*x + c in lexicographic coefficient order.
func (l Lattice) Quadratics() iter.Seq[Curve] { return l.curves(2) }

// Cubics yields a*x^3 + b*x^2 + c*x + d in lexicographic coefficient order.
func (l Lattice) Cubics() iter.Seq[Curve] { return l.curves(3) }

// Curves yields every quadratic and then every cubic.
func (l Lattice) Curves() iter.Seq[Curve] {
	return func(yield func(Curve) bool) {
		for c := range l.Quadratics() {
			if !yield(c) {
				return
			}
		}
		for c := range l.Cubics() {
			if !yield(c) {
				return
			}
		}
	}
}

func (l Lattice) curves(degree int) iter.Seq[Curve] {
	return func(yield func(Curve) bool) {
		for coeffs := range tuples(l.Leading, l.Min, l.Max, degree) {
			if !yield(NewCurve(coeffs...)) {
				return
			}
		}
	}
}

// tuples yields (lead, r1..rn) with lead from leading and each r in
// [min, max], the last position varying fastest.
func tuples(leading []int64, min, max int64, n int) iter.Seq[[]int64] {
	return func(yield func([]int64) bool) {
		if min > max {
			return
		}
		for _, lead := range leading {
			t := make([]int64, n+1)
			t[0] = lead
			for i := 1; i <= n; i++ {
				t[i] = min
			}
			for {
				if !yield(slices.Clone(t)) {
					return
				}
				i := n
				for i >= 1 && t[i] == max {
					t[i] = min
					i--
				}
				if i < 1 {
					break
				}
				t[i]++
			}
		}
	}
}

// Point is a point of tangency.
type Point struct {
	X int64
	Y symbolic.Expr
}

func (p Point) String() string { return "(" + symbolic.N(p.X).String() + ", " + p.Y.String() + ")" }
func (p Point) LaTeX() string  { return `\left(` + symbolic.N(p.X).LaTeX() + ", " + p.Y.LaTeX() + `\right)` }

// Candidate is one curve together with its tangent line at X.
type Candidate struct {
	Curve     Curve
	X         int64
	Point     Point
	Slope     symbolic.Expr
	Intercept symbolic.Expr
	Tangent   symbolic.Expr
}

// TangentAt derives the tangent line of curve at x: the point from
// substitution, the slope from the derivative, and the intercept as
// y(x) - y'(x)*x.
func TangentAt(curve Curve, x int64) Candidate {
	at := symbolic.N(x)
	y := symbolic.Sub(curve.Expr, Var, at)
	slope := symbolic.Sub(symbolic.Diff(curve.Expr, Var), Var, at)
	intercept := symbolic.AddOf(y, symbolic.MulOf(symbolic.N(-1), slope, at))
	return Candidate{
		Curve:     curve,
		X:         x,
		Point:     Point{X: x, Y: y},
		Slope:     slope,
		Intercept: intercept,
		Tangent:   symbolic.AddOf(symbolic.MulOf(slope, symbolic.S(Var)), intercept),
	}
}

// Tangents yields the tangent of curve at every x in domain, in order.
func Tangents(curve Curve, domain []int64) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, x := range domain {
			if !yield(TangentAt(curve, x)) {
				return
			}
		}
	}
}

// Candidates yields the tangents of every curve of the lattice, ordered by
// family, coefficients and then x.
func (l Lattice) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for curve := range l.Curves() {
			for c := range Tangents(curve, l.Domain) {
				if !yield(c) {
					return
				}
			}
		}
	}
}
