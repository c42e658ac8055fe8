package family

import (
	"fmt"

	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/symbolic"
)

// ============================================================
// linear: y = m x + c, coefficients (m, c)
// ============================================================

type linear struct{}

var linearTiers = tiers{
	1: {Ranges: []sampler.Range{sampler.NonZero(-5, 5), sampler.Fixed(0)}},
	2: {Ranges: []sampler.Range{sampler.Fixed(1), sampler.NonZero(-10, 10)}},
	3: {
		Ranges: []sampler.Range{sampler.NonZero(-5, 5), sampler.NonZero(-10, 10)},
		Accept: func(c sampler.Coefficients) bool { return c[0] != 1 },
	},
}

func (linear) Kind() Kind                     { return Linear }
func (linear) Levels() []Level                { return linearTiers.levels() }
func (linear) Policy(l Level) (Policy, error) { return linearTiers.policy(Linear, l) }

func (linear) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := linearTiers.check(Linear, l, c); err != nil {
		return Function{}, err
	}
	eq := symbolic.AddOf(symbolic.MulOf(num(c[0]), x()), num(c[1]))
	return Function{
		Kind: Linear, Level: l, Coefficients: c, Var: Var,
		Equation: eq, Domain: reals(), Range: reals(),
	}, nil
}

// ============================================================
// quadratic: y = a x^2 + b x + c, coefficients (a, b, c)
// ============================================================

type quadratic struct{}

func discriminant(c sampler.Coefficients) int64 { return c[1]*c[1] - 4*c[0]*c[2] }

func quadraticPolicy(accept func(disc int64, c sampler.Coefficients) bool) Policy {
	return Policy{
		Ranges: []sampler.Range{sampler.NonZero(-3, 3), sampler.Between(-20, 20), sampler.Between(-20, 20)},
		Accept: func(c sampler.Coefficients) bool { return accept(discriminant(c), c) },
	}
}

var quadraticTiers = tiers{
	// repeated root; no linear or no constant term
	1: quadraticPolicy(func(d int64, c sampler.Coefficients) bool {
		return d == 0 && (c[1] == 0 || c[2] == 0)
	}),
	// two rational roots
	2: quadraticPolicy(func(d int64, _ sampler.Coefficients) bool {
		return d > 0 && symbolic.IsPerfectSquare(d)
	}),
	// two irrational roots
	3: quadraticPolicy(func(d int64, _ sampler.Coefficients) bool {
		return d > 0 && !symbolic.IsPerfectSquare(d)
	}),
	// complex roots with rational imaginary part
	4: quadraticPolicy(func(d int64, _ sampler.Coefficients) bool {
		return d < 0 && symbolic.IsPerfectSquare(-d)
	}),
	5: quadraticPolicy(func(d int64, _ sampler.Coefficients) bool {
		return d < 0 && !symbolic.IsPerfectSquare(-d)
	}),
}

func (quadratic) Kind() Kind                     { return Quadratic }
func (quadratic) Levels() []Level                { return quadraticTiers.levels() }
func (quadratic) Policy(l Level) (Policy, error) { return quadraticTiers.policy(Quadratic, l) }

func (quadratic) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := quadraticTiers.check(Quadratic, l, c); err != nil {
		return Function{}, err
	}
	a, b := c[0], c[1]
	eq := symbolic.AddOf(
		symbolic.MulOf(num(a), symbolic.PowOf(x(), num(2))),
		symbolic.MulOf(num(b), x()),
		num(c[2]),
	)
	_, vy := vertex(a, b, eq)
	rng := symbolic.AtMost(vy)
	if a > 0 {
		rng = symbolic.AtLeast(vy)
	}
	return Function{
		Kind: Quadratic, Level: l, Coefficients: c, Var: Var,
		Equation: eq, Domain: reals(), Range: rng.Set(),
		Discriminant: num(discriminant(c)),
	}, nil
}

// Vertex returns the turning point of a quadratic function. Other kinds
// yield ErrUnsupportedShape.
func Vertex(f Function) (symbolic.Expr, symbolic.Expr, error) {
	if f.Kind != Quadratic || len(f.Coefficients) != 3 || f.Coefficients[0] == 0 {
		return nil, nil, fmt.Errorf("%w: vertex of %s %s", ErrUnsupportedShape, f.Kind, f.Equation)
	}
	vx, vy := vertex(f.Coefficients[0], f.Coefficients[1], f.Equation)
	return vx, vy, nil
}

func vertex(a, b int64, eq symbolic.Expr) (symbolic.Expr, symbolic.Expr) {
	vx := symbolic.F(-b, 2*a)
	return vx, symbolic.Sub(eq, Var, vx)
}

// ============================================================
// cubic: y = m x^3 + c, coefficients (m, c)
// ============================================================

type cubic struct{}

var cubicTiers = tiers{
	1: {Ranges: []sampler.Range{sampler.NonZero(-3, 3), sampler.NonZero(-5, 5)}},
}

func (cubic) Kind() Kind                     { return Cubic }
func (cubic) Levels() []Level                { return cubicTiers.levels() }
func (cubic) Policy(l Level) (Policy, error) { return cubicTiers.policy(Cubic, l) }

func (cubic) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := cubicTiers.check(Cubic, l, c); err != nil {
		return Function{}, err
	}
	eq := symbolic.AddOf(symbolic.MulOf(num(c[0]), symbolic.PowOf(x(), num(3))), num(c[1]))
	return Function{
		Kind: Cubic, Level: l, Coefficients: c, Var: Var,
		Equation: eq, Domain: reals(), Range: reals(),
	}, nil
}
