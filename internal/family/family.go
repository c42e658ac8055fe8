// Package family defines the equation families questions are built from.
//
// A Family maps each difficulty level to a sampling Policy (coefficient
// ranges plus an acceptance predicate) and turns an accepted coefficient
// vector into a Function: the equation with its exact domain and range.
//
// Errors:
//   - ErrInvalidDifficulty if a level is not declared by the family. It is
//     reported before any coefficient is drawn.
//   - ErrUnknownKind if a kind is not registered.
//   - ErrUnsupportedShape if an expression does not match a family shape.
//   - ErrTooFewValues if bounds are requested from fewer than two values.
package family

import (
	"errors"
	"fmt"
	"slices"

	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/symbolic"
)

var (
	// ErrInvalidDifficulty indicates a level the family does not declare.
	ErrInvalidDifficulty = errors.New("family: invalid difficulty")

	// ErrUnknownKind indicates a kind with no registered family.
	ErrUnknownKind = errors.New("family: unknown kind")

	// ErrUnsupportedShape indicates an expression outside every family shape.
	ErrUnsupportedShape = errors.New("family: unsupported shape")

	// ErrTooFewValues indicates fewer than two candidate bounds.
	ErrTooFewValues = errors.New("family: too few values")

	// ErrNoCandidates indicates every family was excluded from a random pick.
	ErrNoCandidates = errors.New("family: no family left to choose from")
)

// Var is the independent variable of every generated equation.
const Var = "x"

// Kind names a family.
type Kind string

const (
	Linear    Kind = "linear"
	Quadratic Kind = "quadratic"
	Log       Kind = "log"
	Exp       Kind = "exp"
	Sin       Kind = "sin"
	Cos       Kind = "cos"
	Tan       Kind = "tan"
	Hyperbola Kind = "hyperbola"
	Cubic     Kind = "cubic"
)

// Level is a difficulty tier; each family declares its own.
type Level int

// Policy is what the sampler needs for one level.
type Policy struct {
	Ranges []sampler.Range
	Accept sampler.Predicate
}

// Function is a sampled equation with its exact domain and range.
type Function struct {
	Kind         Kind
	Level        Level
	Coefficients sampler.Coefficients
	Var          string
	Equation     symbolic.Expr
	Domain       symbolic.Set
	Range        symbolic.Set
	// Discriminant is set for quadratics only.
	Discriminant symbolic.Expr
}

// Family is one equation family.
type Family interface {
	Kind() Kind
	Levels() []Level
	Policy(level Level) (Policy, error)
	Build(level Level, c sampler.Coefficients) (Function, error)
}

// Generate validates the level, samples coefficients under its policy and
// builds the function.
func Generate(f Family, s *sampler.Sampler, level Level) (Function, error) {
	p, err := f.Policy(level)
	if err != nil {
		return Function{}, err
	}
	c, err := s.Sample(p.Ranges, p.Accept)
	if err != nil {
		return Function{}, fmt.Errorf("%s level %d: %w", f.Kind(), level, err)
	}
	return f.Build(level, c)
}

func invalidLevel(k Kind, l Level) error {
	return fmt.Errorf("%w: %s level %d", ErrInvalidDifficulty, k, l)
}

// tiers is the level table shared by every family.
type tiers map[Level]Policy

func (t tiers) levels() []Level {
	out := make([]Level, 0, len(t))
	for l := range t {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

func (t tiers) policy(k Kind, l Level) (Policy, error) {
	p, ok := t[l]
	if !ok {
		return Policy{}, invalidLevel(k, l)
	}
	return p, nil
}

// check validates the level and the coefficient vector handed to Build.
func (t tiers) check(k Kind, l Level, c sampler.Coefficients) error {
	p, err := t.policy(k, l)
	if err != nil {
		return err
	}
	if len(c) != len(p.Ranges) {
		return fmt.Errorf("family: %s expects %d coefficients, got %d", k, len(p.Ranges), len(c))
	}
	return nil
}

var registry = map[Kind]Family{
	Linear:    linear{},
	Quadratic: quadratic{},
	Log:       logarithmic{},
	Exp:       exponential{},
	Sin:       trig{kind: Sin},
	Cos:       trig{kind: Cos},
	Tan:       trig{kind: Tan},
	Hyperbola: hyperbola{},
	Cubic:     cubic{},
}

// Lookup returns the family registered for k.
func Lookup(k Kind) (Family, error) {
	f, ok := registry[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return f, nil
}

// Kinds lists every registered kind in a fixed order.
func Kinds() []Kind {
	return []Kind{Linear, Quadratic, Log, Exp, Sin, Cos, Tan, Hyperbola, Cubic}
}

func x() symbolic.Expr { return symbolic.S(Var) }

func num(v int64) *symbolic.Num { return symbolic.N(v) }

func reals() symbolic.Set { return symbolic.Reals().Set() }
