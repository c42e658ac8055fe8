package family

import (
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/symbolic"
)

// ============================================================
// log: y = a ln(b x + d) + c, coefficients (a, b, d, c)
// ============================================================

type logarithmic struct{}

func logPolicy(b, d sampler.Range) Policy {
	return Policy{Ranges: []sampler.Range{sampler.NonZero(-3, 3), b, d, sampler.Between(-5, 5)}}
}

var logTiers = tiers{
	1: logPolicy(sampler.Between(1, 3), sampler.Fixed(0)),
	2: logPolicy(sampler.Between(-3, -1), sampler.Fixed(0)),
	3: logPolicy(sampler.NonZero(-3, 3), sampler.NonZero(-5, 5)),
}

func (logarithmic) Kind() Kind                     { return Log }
func (logarithmic) Levels() []Level                { return logTiers.levels() }
func (logarithmic) Policy(l Level) (Policy, error) { return logTiers.policy(Log, l) }

func (logarithmic) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := logTiers.check(Log, l, c); err != nil {
		return Function{}, err
	}
	a, b, d, k := c[0], c[1], c[2], c[3]
	arg := symbolic.AddOf(symbolic.MulOf(num(b), x()), num(d))
	eq := symbolic.AddOf(symbolic.MulOf(num(a), symbolic.LnOf(arg)), num(k))
	// the argument is positive on one side of x = -d/b
	edge := symbolic.F(-d, b)
	domain := symbolic.LessThan(edge)
	if b > 0 {
		domain = symbolic.GreaterThan(edge)
	}
	return Function{
		Kind: Log, Level: l, Coefficients: c, Var: Var,
		Equation: eq, Domain: domain.Set(), Range: reals(),
	}, nil
}

// ============================================================
// exp: y = a e^(k x) + c, coefficients (a, k, c)
// ============================================================

type exponential struct{}

func expPolicy(a, c sampler.Range) Policy {
	return Policy{Ranges: []sampler.Range{a, sampler.NonZero(-3, 3), c}}
}

var expTiers = tiers{
	1: expPolicy(sampler.Fixed(1), sampler.Fixed(0)),
	2: expPolicy(sampler.Fixed(1), sampler.NonZero(-5, 5)),
	3: expPolicy(sampler.NonZero(-3, 3), sampler.NonZero(-5, 5)),
}

func (exponential) Kind() Kind                     { return Exp }
func (exponential) Levels() []Level                { return expTiers.levels() }
func (exponential) Policy(l Level) (Policy, error) { return expTiers.policy(Exp, l) }

func (exponential) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := expTiers.check(Exp, l, c); err != nil {
		return Function{}, err
	}
	a, k, shift := c[0], c[1], c[2]
	eq := symbolic.AddOf(symbolic.MulOf(num(a), symbolic.ExpOf(symbolic.MulOf(num(k), x()))), num(shift))
	rng := symbolic.LessThan(num(shift))
	if a > 0 {
		rng = symbolic.GreaterThan(num(shift))
	}
	return Function{
		Kind: Exp, Level: l, Coefficients: c, Var: Var,
		Equation: eq, Domain: reals(), Range: rng.Set(),
	}, nil
}

// ============================================================
// sin, cos, tan: f(u) with u = (pi if p) q x + k pi/6,
// coefficients (p, q, k)
// ============================================================

type trig struct{ kind Kind }

func trigPolicy(k sampler.Range) Policy {
	return Policy{Ranges: []sampler.Range{sampler.Between(0, 1), sampler.Between(1, 3), k}}
}

var trigTiers = tiers{
	1: trigPolicy(sampler.Fixed(0)),
	2: trigPolicy(sampler.NonZero(-3, 3)),
}

func (t trig) Kind() Kind                     { return t.kind }
func (t trig) Levels() []Level                { return trigTiers.levels() }
func (t trig) Policy(l Level) (Policy, error) { return trigTiers.policy(t.kind, l) }

// trigInner returns the slope s and phase t of u = s x + t.
func trigInner(c sampler.Coefficients) (symbolic.Expr, symbolic.Expr) {
	slope := symbolic.Expr(num(c[1]))
	if c[0] == 1 {
		slope = symbolic.MulOf(symbolic.Pi(), num(c[1]))
	}
	phase := symbolic.MulOf(symbolic.F(c[2], 6), symbolic.Pi())
	return slope, phase
}

func (t trig) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := trigTiers.check(t.kind, l, c); err != nil {
		return Function{}, err
	}
	slope, phase := trigInner(c)
	u := symbolic.AddOf(symbolic.MulOf(slope, x()), phase)
	fn := Function{Kind: t.kind, Level: l, Coefficients: c, Var: Var, Domain: reals()}
	switch t.kind {
	case Sin:
		fn.Equation = symbolic.SinOf(u)
		fn.Range = symbolic.ClosedInterval(num(-1), num(1)).Set()
	case Cos:
		fn.Equation = symbolic.CosOf(u)
		fn.Range = symbolic.ClosedInterval(num(-1), num(1)).Set()
	case Tan:
		fn.Equation = symbolic.TanOf(u)
		fn.Range = reals()
		// principal period: -pi/2 < s x + t < pi/2
		halfPi := symbolic.MulOf(symbolic.F(1, 2), symbolic.Pi())
		inv := symbolic.PowOf(slope, num(-1))
		lower := symbolic.MulOf(symbolic.AddOf(symbolic.MulOf(num(-1), halfPi), symbolic.MulOf(num(-1), phase)), inv)
		upper := symbolic.MulOf(symbolic.AddOf(halfPi, symbolic.MulOf(num(-1), phase)), inv)
		fn.Domain = symbolic.OpenInterval(lower, upper).Set()
	}
	return fn, nil
}

// ============================================================
// hyperbola: y = a/(x - h) + k, coefficients (a, h, k)
// ============================================================

type hyperbola struct{}

func hyperbolaPolicy(h, k sampler.Range) Policy {
	return Policy{Ranges: []sampler.Range{sampler.NonZero(-5, 5), h, k}}
}

var hyperbolaTiers = tiers{
	1: hyperbolaPolicy(sampler.Fixed(0), sampler.Fixed(0)),
	2: hyperbolaPolicy(sampler.Fixed(0), sampler.NonZero(-5, 5)),
	3: hyperbolaPolicy(sampler.NonZero(-5, 5), sampler.NonZero(-5, 5)),
}

func (hyperbola) Kind() Kind                     { return Hyperbola }
func (hyperbola) Levels() []Level                { return hyperbolaTiers.levels() }
func (hyperbola) Policy(l Level) (Policy, error) { return hyperbolaTiers.policy(Hyperbola, l) }

func (hyperbola) Build(l Level, c sampler.Coefficients) (Function, error) {
	if err := hyperbolaTiers.check(Hyperbola, l, c); err != nil {
		return Function{}, err
	}
	a, h, k := c[0], c[1], c[2]
	shifted := symbolic.PowOf(symbolic.AddOf(x(), num(-h)), num(-1))
	eq := symbolic.AddOf(symbolic.MulOf(num(a), shifted), num(k))
	return Function{
		Kind: Hyperbola, Level: l, Coefficients: c, Var: Var,
		Equation: eq, Domain: symbolic.RealsExcept(num(h)), Range: symbolic.RealsExcept(num(k)),
	}, nil
}
