package inverse

import "github.com/njchilds90/examgen/symbolic"

// CanonicalizeLog gives logarithmic expressions one presentation: logs that
// share a coefficient are merged into a single log of the product, and every
// log argument is expanded so numeric factors are multiplied through.
func CanonicalizeLog(e symbolic.Expr) symbolic.Expr {
	switch v := e.(type) {
	case *symbolic.Add:
		type group struct {
			coeff symbolic.Expr
			args  []symbolic.Expr
		}
		groups := map[string]*group{}
		var order []string
		var rest []symbolic.Expr
		for _, t := range v.Terms() {
			t = CanonicalizeLog(t)
			coeff, arg, ok := logTerm(t)
			if !ok {
				rest = append(rest, t)
				continue
			}
			key := coeff.String()
			g, seen := groups[key]
			if !seen {
				g = &group{coeff: coeff}
				groups[key] = g
				order = append(order, key)
			}
			g.args = append(g.args, arg)
		}
		terms := make([]symbolic.Expr, 0, len(order)+len(rest))
		for _, key := range order {
			g := groups[key]
			arg := symbolic.Expand(symbolic.MulOf(g.args...))
			terms = append(terms, symbolic.MulOf(g.coeff, symbolic.LnOf(arg)))
		}
		return symbolic.AddOf(append(terms, rest...)...)
	case *symbolic.Mul:
		factors := v.Factors()
		for i, f := range factors {
			factors[i] = CanonicalizeLog(f)
		}
		return symbolic.MulOf(factors...)
	case *symbolic.Pow:
		return symbolic.PowOf(CanonicalizeLog(v.Base()), CanonicalizeLog(v.ExpExpr()))
	case *symbolic.Func:
		arg := CanonicalizeLog(v.Arg())
		if v.FuncName() == "ln" {
			arg = symbolic.Expand(arg)
		}
		return symbolic.Apply(v.FuncName(), arg)
	}
	return e
}

// logTerm splits c*ln(u) into (c, u).
func logTerm(t symbolic.Expr) (symbolic.Expr, symbolic.Expr, bool) {
	switch v := t.(type) {
	case *symbolic.Func:
		if v.FuncName() == "ln" {
			return symbolic.N(1), v.Arg(), true
		}
	case *symbolic.Mul:
		var arg symbolic.Expr
		var coeff []symbolic.Expr
		for _, f := range v.Factors() {
			if fn, ok := f.(*symbolic.Func); ok && fn.FuncName() == "ln" && arg == nil {
				arg = fn.Arg()
				continue
			}
			coeff = append(coeff, f)
		}
		if arg != nil {
			return symbolic.MulOf(coeff...), arg, true
		}
	}
	return nil, nil, false
}
