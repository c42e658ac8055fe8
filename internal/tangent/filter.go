package tangent

import (
	"iter"

	"github.com/njchilds90/examgen/symbolic"
)

// Bound admits exact integers in [Min, Max], excluding zero when NonZero is
// set.
type Bound struct {
	Min     int64 `json:"min"`
	Max     int64 `json:"max"`
	NonZero bool  `json:"non_zero,omitempty"`
}

// Admits reports whether e is an exact integer inside the bound.
func (b Bound) Admits(e symbolic.Expr) bool {
	v, ok := symbolic.Int64Of(e)
	if !ok || v < b.Min || v > b.Max {
		return false
	}
	return !b.NonZero || v != 0
}

// Filter is the quality gate for tangent problems.
type Filter struct {
	PointY    Bound `json:"point_y"`
	Slope     Bound `json:"slope"`
	Intercept Bound `json:"intercept"`
}

// DefaultFilter accepts y in [-20, 20], a nonzero slope in [-5, 5] and an
// intercept in [-10, 10].
func DefaultFilter() Filter {
	return Filter{
		PointY:    Bound{Min: -20, Max: 20},
		Slope:     Bound{Min: -5, Max: 5, NonZero: true},
		Intercept: Bound{Min: -10, Max: 10},
	}
}

// ReasonablePoint checks the y-coordinate of the point of tangency.
func (f Filter) ReasonablePoint(p Point) bool {
	return f.PointY.Admits(p.Y)
}

// ReasonableTangent checks the slope and intercept of a line in Var.
func (f Filter) ReasonableTangent(line symbolic.Expr) bool {
	if !symbolic.IsPolynomial(line, Var) || symbolic.Degree(line, Var) > 1 {
		return false
	}
	coeffs := symbolic.PolyCoeffs(line, Var)
	return f.Slope.Admits(coeffs.Coeff(1)) && f.Intercept.Admits(coeffs.Coeff(0))
}

// Accept requires both the point and the tangent to be reasonable.
func (f Filter) Accept(c Candidate) bool {
	return f.ReasonablePoint(c.Point) && f.ReasonableTangent(c.Tangent)
}

// Accepted yields the candidates of seq that f accepts.
func Accepted(seq iter.Seq[Candidate], f Filter) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for c := range seq {
			if f.Accept(c) && !yield(c) {
				return
			}
		}
	}
}
