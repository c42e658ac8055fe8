// Package inverse derives inverse functions.
//
// The equation y = f(x) is solved for x and one candidate is kept according
// to the branch rule of the function's family:
//
//	linear, exp, log, hyperbola, sin, cos, tan   single
//	cubic                                        real
//	quadratic                                    principal, or in-domain with InverseOn
//	anything else                                positional
//
// Errors:
//   - ErrInvalidArity (as *ArityError) if the expression does not have
//     exactly one free variable.
//   - ErrNoBranch if the rule finds no acceptable candidate.
//   - symbolic.ErrUnsolvable, wrapped, if the equation cannot be solved.
package inverse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/examgen/internal/family"
	"github.com/njchilds90/examgen/symbolic"
)

var (
	// ErrInvalidArity indicates an expression without exactly one variable.
	ErrInvalidArity = errors.New("inverse: expression must have exactly one variable")

	// ErrNoBranch indicates that no solver candidate satisfies the branch rule.
	ErrNoBranch = errors.New("inverse: no acceptable branch")
)

// ArityError lists the free variables of a rejected expression.
type ArityError struct {
	Vars []string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s, got {%s}", ErrInvalidArity, strings.Join(e.Vars, ", "))
}

func (e *ArityError) Is(target error) bool { return target == ErrInvalidArity }

// Rule selects one inverse branch among the solver's candidates.
type Rule int

const (
	// Positional keeps the second candidate when there are several.
	Positional Rule = iota
	// Single requires exactly one candidate.
	Single
	// Real keeps the unique candidate free of the imaginary unit.
	Real
	// Principal keeps the first candidate, the +sqrt branch.
	Principal
	// InDomain keeps the candidate mapping back into a restricted domain.
	InDomain
)

func (r Rule) String() string {
	switch r {
	case Single:
		return "single"
	case Real:
		return "real"
	case Principal:
		return "principal"
	case InDomain:
		return "in-domain"
	}
	return "positional"
}

var rules = map[family.Kind]Rule{
	family.Linear:    Single,
	family.Exp:       Single,
	family.Log:       Single,
	family.Hyperbola: Single,
	family.Sin:       Single,
	family.Cos:       Single,
	family.Tan:       Single,
	family.Cubic:     Real,
	family.Quadratic: Principal,
}

// RuleFor returns the branch rule of a family kind.
func RuleFor(k family.Kind) Rule {
	if r, ok := rules[k]; ok {
		return r
	}
	return Positional
}

// Inverse returns the inverse of expr, expressed in expr's own variable.
func Inverse(expr symbolic.Expr) (symbolic.Expr, error) {
	return invert(expr, nil)
}

// InverseOn returns the inverse of expr restricted to domain: for families
// with several real branches the branch mapping back into domain is kept.
func InverseOn(expr symbolic.Expr, domain symbolic.Set) (symbolic.Expr, error) {
	return invert(expr, &domain)
}

func invert(expr symbolic.Expr, domain *symbolic.Set) (symbolic.Expr, error) {
	vars := symbolic.SortedSymbols(expr)
	if len(vars) != 1 {
		return nil, &ArityError{Vars: vars}
	}
	v := vars[0]
	y := freshName(v)

	candidates, err := symbolic.Solve(symbolic.AddOf(expr, symbolic.MulOf(symbolic.N(-1), symbolic.S(y))), v)
	if err != nil {
		return nil, fmt.Errorf("inverse of %s: %w", expr, err)
	}

	rule := Positional
	if kind, err := family.Classify(expr, v); err == nil {
		rule = RuleFor(kind)
	}
	if rule == Principal && domain != nil {
		rule = InDomain
	}

	chosen, err := selectBranch(rule, candidates, expr, v, y, domain)
	if err != nil {
		return nil, fmt.Errorf("inverse of %s (%s rule): %w", expr, rule, err)
	}
	result := symbolic.Sub(chosen, y, symbolic.S(v))
	if hasLog(result) {
		result = CanonicalizeLog(result)
	}
	return result, nil
}

func freshName(v string) string {
	if v == "y" {
		return "z"
	}
	return "y"
}

func selectBranch(rule Rule, candidates []symbolic.Expr, expr symbolic.Expr, v, y string, domain *symbolic.Set) (symbolic.Expr, error) {
	switch rule {
	case Single:
		if len(candidates) != 1 {
			return nil, fmt.Errorf("%w: want one candidate, got %d", ErrNoBranch, len(candidates))
		}
		return candidates[0], nil
	case Real:
		var realOnes []symbolic.Expr
		for _, c := range candidates {
			if symbolic.IsReal(c) {
				realOnes = append(realOnes, c)
			}
		}
		if len(realOnes) != 1 {
			return nil, fmt.Errorf("%w: want one real candidate, got %d", ErrNoBranch, len(realOnes))
		}
		return realOnes[0], nil
	case Principal:
		return candidates[0], nil
	case InDomain:
		inner, ok := interiorPoint(*domain)
		if !ok {
			return nil, fmt.Errorf("%w: no interior point in %s", ErrNoBranch, domain)
		}
		image := symbolic.Sub(expr, v, inner)
		for _, c := range candidates {
			back := symbolic.Sub(c, y, image)
			if domain.Contains(back) {
				return c, nil
			}
		}
		return nil, fmt.Errorf("%w: no candidate maps into %s", ErrNoBranch, domain)
	}
	if len(candidates) > 1 {
		return candidates[1], nil
	}
	return candidates[0], nil
}

// interiorPoint picks a point inside the domain, away from finite ends.
func interiorPoint(domain symbolic.Set) (symbolic.Expr, bool) {
	parts := domain.Intervals()
	if len(parts) == 0 {
		return nil, false
	}
	iv := parts[0]
	var p symbolic.Expr
	switch {
	case iv.IsLowerBounded() && iv.IsUpperBounded():
		p = symbolic.MulOf(symbolic.F(1, 2), symbolic.AddOf(iv.Lower, iv.Upper))
	case iv.IsLowerBounded():
		p = symbolic.AddOf(iv.Lower, symbolic.N(1))
	case iv.IsUpperBounded():
		p = symbolic.AddOf(iv.Upper, symbolic.N(-1))
	default:
		p = symbolic.N(0)
	}
	return p, iv.Contains(p)
}

func hasLog(e symbolic.Expr) bool {
	switch v := e.(type) {
	case *symbolic.Func:
		return v.FuncName() == "ln" || hasLog(v.Arg())
	case *symbolic.Add:
		for _, t := range v.Terms() {
			if hasLog(t) {
				return true
			}
		}
	case *symbolic.Mul:
		for _, f := range v.Factors() {
			if hasLog(f) {
				return true
			}
		}
	case *symbolic.Pow:
		return hasLog(v.Base()) || hasLog(v.ExpExpr())
	}
	return false
}
