package symbolic

import (
	"errors"
	"fmt"
)

// ErrUnsolvable is returned when Solve has no closed form for the equation.
var ErrUnsolvable = errors.New("symbolic: cannot solve")

// ============================================================
// Solvers
// ============================================================

// Solve returns the solutions of expr = 0 for varName.
//
// Branch order is deterministic:
//   - even powers give the positive root first, then the negative one
//   - cubes give the real cube root first, then the two complex roots
//   - quadratics give (-b + sqrt(disc)) / 2a first
//
// When varName occurs once the equation is solved by isolation, peeling
// inverses off the outermost operation. Otherwise polynomials of degree one
// and two are solved by formula; anything else fails with ErrUnsolvable.
func Solve(expr Expr, varName string) ([]Expr, error) {
	expr = expr.Simplify()
	switch occurrences(expr, varName) {
	case 0:
		return nil, fmt.Errorf("%w: %s does not contain %s", ErrUnsolvable, expr, varName)
	case 1:
		return isolate(expr, N(0), varName)
	}
	if IsPolynomial(expr, varName) {
		coeffs := PolyCoeffs(expr, varName)
		switch Degree(Expand(expr), varName) {
		case 1:
			return []Expr{MulOf(N(-1), coeffs.Coeff(0), PowOf(coeffs.Coeff(1), N(-1)))}, nil
		case 2:
			return quadraticRoots(coeffs.Coeff(2), coeffs.Coeff(1), coeffs.Coeff(0)), nil
		}
	}
	return nil, fmt.Errorf("%w: %s = 0 for %s", ErrUnsolvable, expr, varName)
}

func quadraticRoots(a, b, c Expr) []Expr {
	disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
	root := SqrtOf(disc)
	denom := PowOf(MulOf(N(2), a), N(-1))
	negB := MulOf(N(-1), b)
	return []Expr{
		MulOf(AddOf(negB, root), denom),
		MulOf(AddOf(negB, MulOf(N(-1), root)), denom),
	}
}

func isolate(lhs, rhs Expr, varName string) ([]Expr, error) {
	switch e := lhs.(type) {
	case *Sym:
		return []Expr{rhs.Simplify()}, nil
	case *Add:
		var inner Expr
		moved := []Expr{rhs}
		for _, t := range e.terms {
			if Contains(t, varName) {
				inner = t
				continue
			}
			moved = append(moved, MulOf(N(-1), t))
		}
		return isolate(inner, AddOf(moved...), varName)
	case *Mul:
		var inner Expr
		rest := []Expr{}
		for _, f := range e.factors {
			if Contains(f, varName) {
				inner = f
				continue
			}
			rest = append(rest, f)
		}
		return isolate(inner, MulOf(rhs, PowOf(MulOf(rest...), N(-1))), varName)
	case *Pow:
		if Contains(e.exp, varName) {
			if c, ok := e.base.(*Const); ok && c.name == "E" {
				return isolate(e.exp, LnOf(rhs), varName)
			}
			return isolate(e.exp, MulOf(LnOf(rhs), PowOf(LnOf(e.base), N(-1))), varName)
		}
		n, ok := e.exp.(*Num)
		if !ok {
			break
		}
		return isolatePower(e.base, n, rhs, varName)
	case *Func:
		var inv Expr
		switch e.name {
		case "exp":
			inv = LnOf(rhs)
		case "ln":
			inv = ExpOf(rhs)
		case "sin":
			inv = AsinOf(rhs)
		case "cos":
			inv = AcosOf(rhs)
		case "tan":
			inv = AtanOf(rhs)
		default:
			return nil, fmt.Errorf("%w: no inverse for %s", ErrUnsolvable, e.name)
		}
		return isolate(e.arg, inv, varName)
	}
	return nil, fmt.Errorf("%w: cannot isolate %s in %s", ErrUnsolvable, varName, lhs)
}

func isolatePower(base Expr, n *Num, rhs Expr, varName string) ([]Expr, error) {
	if n.IsNegative() {
		return isolatePower(base, numNeg(n), PowOf(rhs, N(-1)), varName)
	}
	if !n.IsInteger() {
		return isolate(base, PowOf(rhs, numRecip(n)), varName)
	}
	k, ok := n.Int64()
	if !ok || k > 64 {
		return nil, fmt.Errorf("%w: exponent %s too large", ErrUnsolvable, n)
	}
	root := PowOf(rhs, F(1, k))
	var branches []Expr
	switch {
	case k%2 == 0:
		branches = []Expr{root, MulOf(N(-1), root)}
	case k == 3:
		// real root, then the two complex cube roots of unity
		omega := AddOf(F(-1, 2), MulOf(F(1, 2), SqrtOf(N(3)), I()))
		omegaBar := AddOf(F(-1, 2), MulOf(F(-1, 2), SqrtOf(N(3)), I()))
		branches = []Expr{root, MulOf(omega, root), MulOf(omegaBar, root)}
	default:
		branches = []Expr{root}
	}
	var out []Expr
	for _, b := range branches {
		sols, err := isolate(base, b, varName)
		if err != nil {
			return nil, err
		}
		out = append(out, sols...)
	}
	return out, nil
}
