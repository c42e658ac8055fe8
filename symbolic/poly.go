package symbolic

import "sort"

// ============================================================
// Top-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func Diff2(expr Expr, varName string) Expr {
	return Diff(Diff(expr, varName), varName)
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		result := Expr(N(1))
		for _, f := range v.factors {
			result = distribute(result, expandExpr(f))
		}
		return result
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp, _ := n.Int64()
			if exp >= 0 && exp <= 10 {
				result := Expr(N(1))
				base := expandExpr(v.base)
				for i := int64(0); i < exp; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two expanded expressions term by term.
func distribute(a, b Expr) Expr {
	at, bt := addends(a), addends(b)
	terms := make([]Expr, 0, len(at)*len(bt))
	for _, p := range at {
		for _, q := range bt {
			terms = append(terms, MulOf(p, q))
		}
	}
	return AddOf(terms...)
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols returns the names of the variables in e. Constants such as pi
// are not symbols.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

// SortedSymbols returns the free symbol names of e in lexical order.
func SortedSymbols(e Expr) []string {
	set := FreeSymbols(e)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// Contains reports whether the variable occurs anywhere in e.
func Contains(e Expr, varName string) bool {
	return occurrences(e, varName) > 0
}

func occurrences(e Expr, varName string) int {
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
	case *Add:
		n := 0
		for _, t := range v.terms {
			n += occurrences(t, varName)
		}
		return n
	case *Mul:
		n := 0
		for _, f := range v.factors {
			n += occurrences(f, varName)
		}
		return n
	case *Pow:
		return occurrences(v.base, varName) + occurrences(v.exp, varName)
	case *Func:
		return occurrences(v.arg, varName)
	}
	return 0
}

// ContainsConst reports whether the named constant (pi, E, I) occurs in e.
func ContainsConst(e Expr, name string) bool {
	switch v := e.(type) {
	case *Const:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if ContainsConst(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if ContainsConst(f, name) {
				return true
			}
		}
	case *Pow:
		return ContainsConst(v.base, name) || ContainsConst(v.exp, name)
	case *Func:
		return ContainsConst(v.arg, name)
	}
	return false
}

// IsReal reports whether e is free of the imaginary unit.
func IsReal(e Expr) bool { return !ContainsConst(e, "I") }

// ============================================================
// Polynomial utilities
// ============================================================

// IsPolynomial reports whether e is a polynomial in varName: the variable
// only appears under sums, products and non-negative integer powers.
func IsPolynomial(e Expr, varName string) bool {
	switch v := e.Simplify().(type) {
	case *Add:
		for _, t := range v.terms {
			if !IsPolynomial(t, varName) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !IsPolynomial(f, varName) {
				return false
			}
		}
		return true
	case *Pow:
		if !Contains(v.base, varName) {
			return !Contains(v.exp, varName)
		}
		n, ok := v.exp.(*Num)
		return ok && n.IsInteger() && !n.IsNegative() && IsPolynomial(v.base, varName)
	case *Func:
		return !Contains(v.arg, varName)
	}
	return true
}

func Degree(expr Expr, varName string) int {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
		return 0
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && Contains(v.base, varName) {
			k, _ := n.Int64()
			return Degree(v.base, varName) * int(k)
		}
		return 0
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := Degree(t, varName); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		totalDeg := 0
		for _, f := range v.factors {
			totalDeg += Degree(f, varName)
		}
		return totalDeg
	}
	return 0
}

// PolyCoeffsResult maps a degree to its coefficient.
type PolyCoeffsResult map[int]Expr

// Coeff returns the coefficient of varName^deg, zero when absent.
func (r PolyCoeffsResult) Coeff(deg int) Expr {
	if c, ok := r[deg]; ok {
		return c
	}
	return N(0)
}

// PolyCoeffs expands expr and collects the coefficient of each power of
// varName. The result is only meaningful when IsPolynomial holds.
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	extractCoeffs(Expand(expr), varName, result)
	return result
}

func extractCoeffs(e Expr, varName string, out PolyCoeffsResult) {
	switch v := e.(type) {
	case *Num:
		addCoeff(out, 0, v)
	case *Sym:
		if v.name == varName {
			addCoeff(out, 1, N(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() {
				k, _ := n.Int64()
				addCoeff(out, int(k), N(1))
				return
			}
		}
		addCoeff(out, 0, e)
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, varName); d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		var coeff Expr
		switch len(coeffFactors) {
		case 0:
			coeff = N(1)
		case 1:
			coeff = coeffFactors[0]
		default:
			coeff = MulOf(coeffFactors...)
		}
		addCoeff(out, deg, coeff)
	case *Add:
		for _, t := range v.terms {
			extractCoeffs(t, varName, out)
		}
	default:
		addCoeff(out, 0, e)
	}
}

func addCoeff(out PolyCoeffsResult, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}
