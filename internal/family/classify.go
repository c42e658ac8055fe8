package family

import (
	"fmt"
	"slices"
	"sort"

	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/symbolic"
)

// ============================================================
// Random family selection
// ============================================================

// Group is a family as offered to random selection; "trig" stands for one
// of sin, cos and tan.
type Group string

const (
	GroupLinear    Group = "linear"
	GroupQuadratic Group = "quadratic"
	GroupLog       Group = "log"
	GroupTrig      Group = "trig"
	GroupExp       Group = "exp"
)

type levelSpan struct{ min, max Level }

var groups = []struct {
	group Group
	span  levelSpan
}{
	{GroupLinear, levelSpan{1, 2}},
	{GroupQuadratic, levelSpan{1, 3}},
	{GroupLog, levelSpan{1, 2}},
	{GroupTrig, levelSpan{1, 2}},
	{GroupExp, levelSpan{1, 3}},
}

// Groups lists the groups offered to Random.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = g.group
	}
	return out
}

// Options restricts random selection.
type Options struct {
	// Exclude removes groups from the draw.
	Exclude []Group
	// Levels pins the level of a group instead of drawing it.
	Levels map[Group]Level
}

// Choice is a randomly selected family and level.
type Choice struct {
	Kind  Kind
	Level Level
}

// Random picks a group uniformly among those not excluded, resolves "trig"
// to sin, cos or tan, and draws a level from the group's default span.
func Random(src sampler.Source, opts Options) (Choice, error) {
	type candidate struct {
		group Group
		span  levelSpan
	}
	var pool []candidate
	for _, g := range groups {
		if !slices.Contains(opts.Exclude, g.group) {
			pool = append(pool, candidate{g.group, g.span})
		}
	}
	if len(pool) == 0 {
		return Choice{}, ErrNoCandidates
	}
	picked := sampler.Pick(src, pool)

	kind := Kind(picked.group)
	if picked.group == GroupTrig {
		kind = sampler.Pick(src, []Kind{Sin, Cos, Tan})
	}
	level, pinned := opts.Levels[picked.group]
	if !pinned {
		level = picked.span.min + Level(src.Int64N(int64(picked.span.max-picked.span.min+1)))
	}
	f, err := Lookup(kind)
	if err != nil {
		return Choice{}, err
	}
	if _, err := f.Policy(level); err != nil {
		return Choice{}, err
	}
	return Choice{Kind: kind, Level: level}, nil
}

// ============================================================
// Classification
// ============================================================

// Classify detects which family an expression in varName belongs to.
func Classify(expr symbolic.Expr, varName string) (Kind, error) {
	expr = expr.Simplify()
	found := map[Kind]bool{}
	collectTranscendental(expr, varName, found)
	switch len(found) {
	case 0:
	case 1:
		for k := range found {
			return k, nil
		}
	default:
		return "", fmt.Errorf("%w: %s mixes %d function types", ErrUnsupportedShape, expr, len(found))
	}

	if symbolic.IsPolynomial(expr, varName) {
		switch symbolic.Degree(symbolic.Expand(expr), varName) {
		case 1:
			return Linear, nil
		case 2:
			return Quadratic, nil
		case 3:
			return Cubic, nil
		}
		return "", fmt.Errorf("%w: polynomial %s", ErrUnsupportedShape, expr)
	}
	if hasReciprocal(expr, varName) {
		return Hyperbola, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedShape, expr)
}

func collectTranscendental(e symbolic.Expr, varName string, out map[Kind]bool) {
	switch v := e.(type) {
	case *symbolic.Add:
		for _, t := range v.Terms() {
			collectTranscendental(t, varName, out)
		}
	case *symbolic.Mul:
		for _, f := range v.Factors() {
			collectTranscendental(f, varName, out)
		}
	case *symbolic.Pow:
		if c, ok := v.Base().(*symbolic.Const); ok && c.Name() == "E" && symbolic.Contains(v.ExpExpr(), varName) {
			out[Exp] = true
		}
		collectTranscendental(v.Base(), varName, out)
		collectTranscendental(v.ExpExpr(), varName, out)
	case *symbolic.Func:
		if symbolic.Contains(v.Arg(), varName) {
			switch v.FuncName() {
			case "exp":
				out[Exp] = true
			case "ln":
				out[Log] = true
			case "sin":
				out[Sin] = true
			case "cos":
				out[Cos] = true
			case "tan":
				out[Tan] = true
			}
		}
		collectTranscendental(v.Arg(), varName, out)
	}
}

func hasReciprocal(e symbolic.Expr, varName string) bool {
	switch v := e.(type) {
	case *symbolic.Add:
		for _, t := range v.Terms() {
			if hasReciprocal(t, varName) {
				return true
			}
		}
	case *symbolic.Mul:
		for _, f := range v.Factors() {
			if hasReciprocal(f, varName) {
				return true
			}
		}
	case *symbolic.Pow:
		n, ok := v.ExpExpr().(*symbolic.Num)
		return ok && n.IsNegative() && symbolic.Contains(v.Base(), varName)
	}
	return false
}

// ============================================================
// Trig helpers
// ============================================================

// SensibleTrigX returns the x values, in increasing order, at which the
// argument of the single trig function in expr is a multiple of pi/6 in
// [-5pi/6, pi]. For tan the asymptotes at +-pi/2 are skipped.
func SensibleTrigX(expr symbolic.Expr, varName string) ([]symbolic.Expr, error) {
	fn, err := trigCall(expr.Simplify(), varName)
	if err != nil {
		return nil, err
	}
	inner := fn.Arg()
	if !symbolic.IsPolynomial(inner, varName) || symbolic.Degree(inner, varName) != 1 {
		return nil, fmt.Errorf("%w: argument %s is not linear in %s", ErrUnsupportedShape, inner, varName)
	}
	coeffs := symbolic.PolyCoeffs(inner, varName)
	slope, phase := coeffs.Coeff(1), coeffs.Coeff(0)
	invSlope := symbolic.PowOf(slope, symbolic.N(-1))

	var xs []symbolic.Expr
	for i := int64(-5); i <= 6; i++ {
		if fn.FuncName() == "tan" && (i == 3 || i == -3) {
			continue
		}
		target := symbolic.MulOf(symbolic.F(i, 6), symbolic.Pi())
		xs = append(xs, symbolic.MulOf(symbolic.AddOf(target, symbolic.MulOf(symbolic.N(-1), phase)), invSlope))
	}
	sort.SliceStable(xs, func(i, j int) bool {
		a, _ := xs[i].Eval()
		b, _ := xs[j].Eval()
		return a != nil && b != nil && a.Cmp(b) < 0
	})
	return xs, nil
}

func trigCall(e symbolic.Expr, varName string) (*symbolic.Func, error) {
	var calls []*symbolic.Func
	var walk func(symbolic.Expr)
	walk = func(e symbolic.Expr) {
		switch v := e.(type) {
		case *symbolic.Add:
			for _, t := range v.Terms() {
				walk(t)
			}
		case *symbolic.Mul:
			for _, f := range v.Factors() {
				walk(f)
			}
		case *symbolic.Pow:
			walk(v.Base())
			walk(v.ExpExpr())
		case *symbolic.Func:
			switch v.FuncName() {
			case "sin", "cos", "tan":
				if symbolic.Contains(v.Arg(), varName) {
					calls = append(calls, v)
					return
				}
			}
			walk(v.Arg())
		}
	}
	walk(e)
	if len(calls) != 1 {
		return nil, fmt.Errorf("%w: want one trig call in %s, found %d", ErrUnsupportedShape, e, len(calls))
	}
	return calls[0], nil
}

// ChooseBounds picks an increasing pair of values from a sorted slice.
func ChooseBounds(src sampler.Source, xs []symbolic.Expr) (symbolic.Expr, symbolic.Expr, error) {
	if len(xs) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrTooFewValues, len(xs))
	}
	i := src.Int64N(int64(len(xs) - 1))
	j := i + 1 + src.Int64N(int64(len(xs))-1-i)
	return xs[i], xs[j], nil
}
