// Package symbolic provides the exact-rational expression kernel used by the
// question generators.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), never floating point for
//     coefficients
//   - Deterministic simplification and stable output, so that enumerated
//     results can be compared and cached
//   - Only the algebra the generators need: substitution, differentiation,
//     polynomial coefficients, single-variable solving and interval sets
package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable symbolic expression. Operations never modify a node;
// they always return a new expression.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(new(big.Rat).SetInt64(1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(new(big.Rat).SetInt64(-1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Sign() int             { return n.val.Sign() }
func (n *Num) Cmp(o *Num) int        { return n.val.Cmp(o.val) }

// Int64 reports the value as an int64 when it is an integer that fits.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return sign + "\\frac{" + v.Num().String() + "}{" + v.Denom().String() + "}"
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const: named mathematical constants (pi, E, I)
// ============================================================

// Const is a named constant. It is never a free symbol.
type Const struct{ name string }

func Pi() *Const { return &Const{name: "pi"} }
func E() *Const  { return &Const{name: "E"} }

// I is the imaginary unit. It only appears in non-real solver branches.
func I() *Const { return &Const{name: "I"} }

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Name() string          { return c.name }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	switch c.name {
	case "pi":
		return "\\pi"
	case "E":
		return "e"
	case "I":
		return "i"
	}
	return c.name
}

func (c *Const) Eval() (*Num, bool) {
	switch c.name {
	case "pi":
		return NFloat(math.Pi), true
	case "E":
		return NFloat(math.E), true
	}
	return nil, false
}

// ============================================================
// Infinity: unbounded interval ends
// ============================================================

// Infinity only appears as an interval bound; it takes no part in arithmetic.
type Infinity struct{ negative bool }

func Inf() *Infinity    { return &Infinity{} }
func NegInf() *Infinity { return &Infinity{negative: true} }

func (o *Infinity) Simplify() Expr        { return o }
func (o *Infinity) Sub(string, Expr) Expr { return o }
func (o *Infinity) Diff(string) Expr      { return N(0) }
func (o *Infinity) Eval() (*Num, bool)    { return nil, false }
func (o *Infinity) IsNegative() bool      { return o.negative }
func (o *Infinity) exprType() string      { return "inf" }
func (o *Infinity) Equal(other Expr) bool {
	v, ok := other.(*Infinity)
	return ok && v.negative == o.negative
}
func (o *Infinity) String() string {
	if o.negative {
		return "-oo"
	}
	return "oo"
}
func (o *Infinity) LaTeX() string {
	if o.negative {
		return "-\\infty"
	}
	return "\\infty"
}
func (o *Infinity) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "inf", "negative": o.negative}
}

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and collects like terms
// (terms equal up to a numeric coefficient).
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type likeTerm struct {
		rest  Expr
		coeff *Num
	}
	numAccum := N(0)
	groups := map[string]*likeTerm{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		g, seen := groups[key]
		if !seen {
			g = &likeTerm{rest: rest, coeff: N(0)}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff = numAdd(g.coeff, coeff)
	}

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		switch {
		case g.coeff.IsZero():
		case g.coeff.IsOne():
			result = append(result, g.rest)
		default:
			result = append(result, MulOf(g.coeff, g.rest))
		}
	}
	sortTerms(result)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.String())
			continue
		}
		if abs, neg := negated(t); neg {
			sb.WriteString(" - " + abs.String())
		} else {
			sb.WriteString(" + " + t.String())
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			sb.WriteString(t.LaTeX())
			continue
		}
		if abs, neg := negated(t); neg {
			sb.WriteString(" - " + abs.LaTeX())
		} else {
			sb.WriteString(" + " + t.LaTeX())
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient, merges
// powers of a common base and distributes a numeric coefficient over a lone
// sum.
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type power struct {
		base Expr
		exp  Expr
	}
	coeff := N(1)
	groups := map[string]*power{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if g, seen := groups[key]; seen {
			g.exp = AddOf(g.exp, exp)
			continue
		}
		groups[key] = &power{base: base, exp: exp}
		order = append(order, key)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	regroup := false
	for _, key := range order {
		g := groups[key]
		merged := PowOf(g.base, g.exp)
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
			continue
		case *Mul:
			regroup = true
		}
		others = append(others, merged)
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	if len(others) == 1 {
		if sum, ok := others[0].(*Add); ok && !coeff.IsOne() {
			terms := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
		if coeff.IsOne() {
			return others[0]
		}
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if coeff.IsOne() {
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	coeff, num, den := m.split()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
	}
	p := new(big.Int).Abs(coeff.val.Num())
	q := coeff.val.Denom()

	numParts := []string{}
	if p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
		numParts = append(numParts, p.String())
	}
	for _, f := range num {
		numParts = append(numParts, wrapFactor(f, false))
	}
	out := sign + strings.Join(numParts, "*")

	denParts := []string{}
	if q.Cmp(big.NewInt(1)) != 0 {
		denParts = append(denParts, q.String())
	}
	for _, f := range den {
		denParts = append(denParts, wrapFactor(f, false))
	}
	switch len(denParts) {
	case 0:
		return out
	case 1:
		return out + "/" + denParts[0]
	}
	return out + "/(" + strings.Join(denParts, "*") + ")"
}

func (m *Mul) LaTeX() string {
	coeff, num, den := m.split()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
	}
	p := new(big.Int).Abs(coeff.val.Num())
	q := coeff.val.Denom()

	numParts := []string{}
	if p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
		numParts = append(numParts, p.String())
	}
	for _, f := range num {
		numParts = append(numParts, wrapFactor(f, true))
	}
	denParts := []string{}
	if q.Cmp(big.NewInt(1)) != 0 {
		denParts = append(denParts, q.String())
	}
	for _, f := range den {
		denParts = append(denParts, f.LaTeX())
	}
	if len(denParts) == 0 {
		return sign + strings.Join(numParts, " ")
	}
	return sign + "\\frac{" + strings.Join(numParts, " ") + "}{" + strings.Join(denParts, " ") + "}"
}

// split separates the numeric coefficient, the numerator factors and the
// denominator factors (negative numeric exponents, returned made positive).
func (m *Mul) split() (*Num, []Expr, []Expr) {
	coeff := N(1)
	var num, den []Expr
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() {
				if e.IsNegOne() {
					den = append(den, p.base)
				} else {
					den = append(den, &Pow{base: p.base, exp: numNeg(e)})
				}
				continue
			}
		}
		num = append(num, f)
	}
	return coeff, num, den
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	en, expIsNum := exp.(*Num)

	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		// 0^0 is indeterminate; 0^negative is division by zero.
		if bn.IsZero() {
			if expIsNum && !en.IsPositive() {
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		}
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum {
			if r, ok := ratPow(bn, en); ok {
				return r
			}
		}
		return &Pow{base: base, exp: exp}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	if m, ok := base.(*Mul); ok && expIsNum && en.IsInteger() {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, exp)
		}
		return MulOf(factors...)
	}
	// (y/2 - 3/2)^-1 -> 2*(y - 3)^-1
	if sum, ok := base.(*Add); ok && expIsNum && en.IsInteger() && en.IsNegative() {
		if c, ok := integralContent(sum); ok {
			return MulOf(PowOf(c, exp), PowOf(MulOf(numRecip(c), sum), exp))
		}
	}
	return &Pow{base: base, exp: exp}
}

// integralContent returns the leading coefficient of sum when dividing every
// term by it leaves integer coefficients and it is not already one.
func integralContent(sum *Add) (*Num, bool) {
	lead, _ := extractCoefficient(sum.terms[0])
	if n, ok := sum.terms[0].(*Num); ok {
		lead = n
	}
	if lead.IsOne() || lead.IsZero() {
		return nil, false
	}
	for _, t := range sum.terms {
		c, _ := extractCoefficient(t)
		if n, ok := t.(*Num); ok {
			c = n
		}
		if !numDiv(c, lead).IsInteger() {
			return nil, false
		}
	}
	return lead, true
}

func (p *Pow) String() string {
	if e, ok := p.exp.(*Num); ok {
		if e.IsNegative() {
			return "1/" + wrapFactor(positivePow(p.base, numNeg(e)), false)
		}
		if e.Equal(F(1, 2)) {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	expStr := p.exp.String()
	if e, ok := p.exp.(*Num); !ok || !e.IsInteger() {
		expStr = "(" + expStr + ")"
	}
	return wrapBase(p.base, false) + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok {
		if e.IsNegative() {
			return "\\frac{1}{" + positivePow(p.base, numNeg(e)).LaTeX() + "}"
		}
		if e.Equal(F(1, 2)) {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
		if e.Equal(F(1, 3)) {
			return "\\sqrt[3]{" + p.base.LaTeX() + "}"
		}
	}
	return wrapBase(p.base, true) + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	_, expIsNum := p.exp.(*Num)
	if expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !Contains(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if !Contains(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if r, ok := ratPow(b, e); ok {
		return r, true
	}
	bf, ef := b.Float64(), e.Float64()
	var pf float64
	if bf < 0 && isOddRoot(e) {
		// real root of a negative base, e.g. (-8)^(1/3) = -2
		pf = -math.Pow(-bf, ef)
	} else {
		pf = math.Pow(bf, ef)
	}
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func CbrtOf(arg Expr) Expr { return PowOf(arg, F(1, 3)) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }

// Apply rebuilds a named function application, e.g. when rewriting a tree.
func Apply(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

// undoes maps a function to the inverse it cancels from the outside.
// asin(sin(u)) and its kin equal u only on a principal interval and stay.
var undoes = map[string]string{
	"exp": "ln",
	"ln":  "exp",
	"sin": "asin",
	"cos": "acos",
	"tan": "atan",
}

// Simplify applies exact identities only; numeric arguments stay symbolic
// (ln(2) is kept as ln(2)). Use Eval for a floating-point value.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if inner, ok := arg.(*Func); ok && inner.name == undoes[f.name] {
		return inner.arg
	}
	switch f.name {
	case "sin", "tan", "asin", "atan":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "acos":
		if isNumEqual(arg, 1) {
			return N(0)
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if c, ok := arg.(*Const); ok && c.name == "E" {
			return N(1)
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n)
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 2 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				rest := append([]Expr{numAbs(coeff)}, m.factors[1:]...)
				return AbsOf(MulOf(rest...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "ln":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	var r float64
	switch f.name {
	case "sin":
		r = math.Sin(v)
	case "cos":
		r = math.Cos(v)
	case "tan":
		r = math.Tan(v)
	case "exp":
		r = math.Exp(v)
	case "ln":
		r = math.Log(v)
	case "abs":
		r = math.Abs(v)
	case "asin":
		r = math.Asin(v)
	case "acos":
		r = math.Acos(v)
	case "atan":
		r = math.Atan(v)
	default:
		return nil, false
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	return NFloat(r), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// ============================================================
// Helpers
// ============================================================

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// negated reports whether a term carries a negative numeric coefficient and,
// if so, returns the term with that coefficient made positive.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		coeff, rest := extractCoefficient(v)
		if coeff.IsNegative() {
			return MulOf(numNeg(coeff), rest), true
		}
	}
	return t, false
}

func positivePow(base Expr, exp *Num) Expr {
	if exp.IsOne() {
		return base
	}
	return &Pow{base: base, exp: exp}
}

func wrapFactor(f Expr, latex bool) string {
	switch f.(type) {
	case *Add, *Mul:
		if latex {
			return "\\left(" + f.LaTeX() + "\\right)"
		}
		return "(" + f.String() + ")"
	}
	if latex {
		return f.LaTeX()
	}
	return f.String()
}

func wrapBase(b Expr, latex bool) string {
	paren := false
	switch v := b.(type) {
	case *Add, *Mul, *Pow:
		paren = true
	case *Num:
		paren = v.IsNegative() || !v.IsInteger()
	}
	s := b.String()
	if latex {
		s = b.LaTeX()
	}
	if !paren {
		return s
	}
	if latex {
		return "\\left(" + s + "\\right)"
	}
	return "(" + s + ")"
}

// sortTerms orders the terms of a sum by descending degree, then by their
// string form, so that equal sums always print and compare the same way.
func sortTerms(terms []Expr) {
	type keyed struct {
		e      Expr
		degree float64
		key    string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := extractCoefficient(t)
		ks[i] = keyed{e: t, degree: sortDegree(t), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].degree != ks[j].degree {
			return ks[i].degree > ks[j].degree
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func sortDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			return sortDegree(v.base) * n.Float64()
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += sortDegree(f)
		}
		return d
	case *Add:
		d := 0.0
		for _, t := range v.terms {
			d = math.Max(d, sortDegree(t))
		}
		return d
	}
	return 0
}

func isOddRoot(e *Num) bool {
	d := e.val.Denom()
	return d.Bit(0) == 1 && d.Cmp(big.NewInt(1)) != 0
}

// ratPow computes b^e exactly when the result is rational: integer exponents
// (bounded), and rational exponents whose root of b is exact. Odd roots of
// negative numbers take the real root.
func ratPow(b, e *Num) (*Num, bool) {
	if !e.IsInteger() {
		q := e.val.Denom()
		if !q.IsInt64() || q.Int64() > 64 {
			return nil, false
		}
		root, ok := ratRoot(b, q.Int64())
		if !ok {
			return nil, false
		}
		return ratPow(root, &Num{val: new(big.Rat).SetInt(e.val.Num())})
	}
	k, ok := e.Int64()
	if !ok || k > 64 || k < -64 {
		return nil, false
	}
	neg := k < 0
	if neg {
		if b.IsZero() {
			return nil, false
		}
		k = -k
	}
	result := N(1)
	for i := int64(0); i < k; i++ {
		result = numMul(result, b)
	}
	if neg {
		return numRecip(result), true
	}
	return result, true
}

func ratRoot(b *Num, q int64) (*Num, bool) {
	negative := b.IsNegative()
	if negative && q%2 == 0 {
		return nil, false
	}
	abs := numAbs(b)
	num, ok1 := intRoot(abs.val.Num(), q)
	den, ok2 := intRoot(abs.val.Denom(), q)
	if !ok1 || !ok2 {
		return nil, false
	}
	r := &Num{val: new(big.Rat).SetFrac(num, den)}
	if negative {
		r = numNeg(r)
	}
	return r, true
}

func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if q == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for c := guess - 1; c <= guess+1; c++ {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(q), nil).Cmp(n) == 0 {
			return r, true
		}
	}
	return nil, false
}
