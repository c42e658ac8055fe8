package symbolic

import (
	"math/big"
	"strings"
)

// ============================================================
// Intervals and sets of the real line
// ============================================================

// Interval is a connected subset of the reals. Infinite ends are always open.
type Interval struct {
	Lower, Upper         Expr
	LowerOpen, UpperOpen bool
}

func NewInterval(lower, upper Expr, lowerOpen, upperOpen bool) Interval {
	if _, ok := lower.(*Infinity); ok {
		lowerOpen = true
	}
	if _, ok := upper.(*Infinity); ok {
		upperOpen = true
	}
	return Interval{Lower: lower.Simplify(), Upper: upper.Simplify(), LowerOpen: lowerOpen, UpperOpen: upperOpen}
}

func Reals() Interval                 { return NewInterval(NegInf(), Inf(), true, true) }
func AtLeast(a Expr) Interval         { return NewInterval(a, Inf(), false, true) }
func AtMost(a Expr) Interval          { return NewInterval(NegInf(), a, true, false) }
func GreaterThan(a Expr) Interval     { return NewInterval(a, Inf(), true, true) }
func LessThan(a Expr) Interval        { return NewInterval(NegInf(), a, true, true) }
func ClosedInterval(a, b Expr) Interval { return NewInterval(a, b, false, false) }
func OpenInterval(a, b Expr) Interval   { return NewInterval(a, b, true, true) }

// Contains reports whether the numeric value v lies in the interval. Values
// that cannot be evaluated to a real number are never contained.
func (iv Interval) Contains(v Expr) bool {
	c, ok := compareBound(v, iv.Lower)
	if !ok || c < 0 || (c == 0 && iv.LowerOpen) {
		return false
	}
	c, ok = compareBound(v, iv.Upper)
	if !ok || c > 0 || (c == 0 && iv.UpperOpen) {
		return false
	}
	return true
}

func (iv Interval) IsLowerBounded() bool { _, inf := iv.Lower.(*Infinity); return !inf }
func (iv Interval) IsUpperBounded() bool { _, inf := iv.Upper.(*Infinity); return !inf }

func (iv Interval) IsReals() bool { return !iv.IsLowerBounded() && !iv.IsUpperBounded() }

func (iv Interval) IsEmpty() bool {
	c, ok := compareBound(iv.Lower, iv.Upper)
	if !ok {
		return false
	}
	return c > 0 || (c == 0 && (iv.LowerOpen || iv.UpperOpen))
}

func (iv Interval) Equal(o Interval) bool {
	return iv.LowerOpen == o.LowerOpen && iv.UpperOpen == o.UpperOpen &&
		iv.Lower.Equal(o.Lower) && iv.Upper.Equal(o.Upper)
}

func (iv Interval) String() string {
	l, r := "[", "]"
	if iv.LowerOpen {
		l = "("
	}
	if iv.UpperOpen {
		r = ")"
	}
	return l + iv.Lower.String() + ", " + iv.Upper.String() + r
}

func (iv Interval) LaTeX() string {
	if iv.IsReals() {
		return "\\mathbb{R}"
	}
	l, r := "\\left[", "\\right]"
	if iv.LowerOpen {
		l = "\\left("
	}
	if iv.UpperOpen {
		r = "\\right)"
	}
	return l + iv.Lower.LaTeX() + ", " + iv.Upper.LaTeX() + r
}

// Set returns the interval as a one-part set.
func (iv Interval) Set() Set { return SetOf(iv) }

// Set is a finite union of disjoint intervals, kept in the order given.
type Set struct{ parts []Interval }

func SetOf(parts ...Interval) Set {
	kept := make([]Interval, 0, len(parts))
	for _, p := range parts {
		if !p.IsEmpty() {
			kept = append(kept, p)
		}
	}
	return Set{parts: kept}
}

// RealsExcept is the real line with one point removed.
func RealsExcept(p Expr) Set {
	return SetOf(LessThan(p), GreaterThan(p))
}

func (s Set) Intervals() []Interval { return append([]Interval(nil), s.parts...) }

func (s Set) Contains(v Expr) bool {
	for _, p := range s.parts {
		if p.Contains(v) {
			return true
		}
	}
	return false
}

func (s Set) IsReals() bool { return len(s.parts) == 1 && s.parts[0].IsReals() }

func (s Set) Equal(o Set) bool {
	if len(s.parts) != len(o.parts) {
		return false
	}
	for i := range s.parts {
		if !s.parts[i].Equal(o.parts[i]) {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	if len(s.parts) == 0 {
		return "EmptySet"
	}
	out := make([]string, len(s.parts))
	for i, p := range s.parts {
		out[i] = p.String()
	}
	return strings.Join(out, " U ")
}

func (s Set) LaTeX() string {
	if len(s.parts) == 0 {
		return "\\emptyset"
	}
	out := make([]string, len(s.parts))
	for i, p := range s.parts {
		out[i] = p.LaTeX()
	}
	return strings.Join(out, " \\cup ")
}

func compareBound(a, b Expr) (int, bool) {
	ia, aInf := a.(*Infinity)
	ib, bInf := b.(*Infinity)
	switch {
	case aInf && bInf:
		if ia.negative == ib.negative {
			return 0, true
		}
		if ia.negative {
			return -1, true
		}
		return 1, true
	case aInf:
		if ia.negative {
			return -1, true
		}
		return 1, true
	case bInf:
		if ib.negative {
			return 1, true
		}
		return -1, true
	}
	av, ok1 := a.Eval()
	bv, ok2 := b.Eval()
	if !ok1 || !ok2 {
		return 0, false
	}
	return av.Cmp(bv), true
}

// ============================================================
// Numeric predicates
// ============================================================

// IsInteger reports whether e is an exact integer.
func IsInteger(e Expr) bool {
	n, ok := e.Simplify().(*Num)
	return ok && n.IsInteger()
}

// Int64Of returns e as an int64 when it is an exact integer that fits.
func Int64Of(e Expr) (int64, bool) {
	n, ok := e.Simplify().(*Num)
	if !ok {
		return 0, false
	}
	return n.Int64()
}

// IsPerfectSquare reports whether n is the square of an integer.
func IsPerfectSquare(n int64) bool {
	if n < 0 {
		return false
	}
	b := big.NewInt(n)
	r := new(big.Int).Sqrt(b)
	return new(big.Int).Mul(r, r).Cmp(b) == 0
}
