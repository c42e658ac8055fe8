// Package problem holds the immutable result of question generation.
package problem

import (
	"encoding/json"
	"strconv"

	"github.com/google/uuid"

	"github.com/njchilds90/examgen/symbolic"
)

// Field keys shared by the generators.
const (
	KeyFunctionType     = "function_type"
	KeyLevel            = "level"
	KeyEquation         = "equation"
	KeyDomain           = "domain"
	KeyRange            = "range"
	KeyDiscriminant     = "discriminant"
	KeyInverse          = "inverse"
	KeyInverseDomain    = "inverse_domain"
	KeyCurve            = "curve"
	KeyTangent          = "tangent"
	KeyPointOfTangency  = "point_of_tangency"
	KeyTangentSlope     = "slope"
	KeyTangentIntercept = "intercept"
)

// Value is anything a problem can present. symbolic.Expr, symbolic.Set and
// symbolic.Interval all qualify.
type Value interface {
	String() string
	LaTeX() string
}

// Text is a plain string value.
type Text string

func (t Text) String() string { return string(t) }
func (t Text) LaTeX() string  { return `\text{` + string(t) + `}` }

// Int is an integer value.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) LaTeX() string  { return i.String() }

// Field is one keyed value.
type Field struct {
	Key   string
	Value Value
}

// With is shorthand for Field{key, v}.
func With(key string, v Value) Field { return Field{Key: key, Value: v} }

// Problem is a generated question. It is never modified after New returns,
// so it may be shared freely between goroutines.
type Problem struct {
	id     uuid.UUID
	kind   string
	fields []Field
	index  map[string]int
}

// New builds a problem. Fields keep their order; a repeated key replaces the
// earlier value in place.
func New(kind string, fields ...Field) *Problem {
	p := &Problem{id: uuid.New(), kind: kind, index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if i, ok := p.index[f.Key]; ok {
			p.fields[i] = f
			continue
		}
		p.index[f.Key] = len(p.fields)
		p.fields = append(p.fields, f)
	}
	return p
}

func (p *Problem) ID() uuid.UUID { return p.id }
func (p *Problem) Kind() string  { return p.kind }

// Get returns the value stored under key.
func (p *Problem) Get(key string) (Value, bool) {
	i, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return p.fields[i].Value, true
}

// Expr returns the value under key when it is an expression.
func (p *Problem) Expr(key string) (symbolic.Expr, bool) {
	v, ok := p.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(symbolic.Expr)
	return e, ok
}

// Keys lists the field keys in order.
func (p *Problem) Keys() []string {
	keys := make([]string, len(p.fields))
	for i, f := range p.fields {
		keys[i] = f.Key
	}
	return keys
}

// Strings maps every key to its plain-text form, for template
// substitution.
func (p *Problem) Strings() map[string]string {
	out := make(map[string]string, len(p.fields))
	for _, f := range p.fields {
		out[f.Key] = f.Value.String()
	}
	return out
}

// LaTeX maps every key to its LaTeX form.
func (p *Problem) LaTeX() map[string]string {
	out := make(map[string]string, len(p.fields))
	for _, f := range p.fields {
		out[f.Key] = f.Value.LaTeX()
	}
	return out
}

type wireField struct {
	Key   string `json:"key"`
	Text  string `json:"text"`
	LaTeX string `json:"latex"`
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	fields := make([]wireField, len(p.fields))
	for i, f := range p.fields {
		fields[i] = wireField{Key: f.Key, Text: f.Value.String(), LaTeX: f.Value.LaTeX()}
	}
	return json.Marshal(struct {
		ID     string      `json:"id"`
		Kind   string      `json:"kind"`
		Fields []wireField `json:"fields"`
	}{p.id.String(), p.kind, fields})
}
