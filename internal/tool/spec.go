package tool

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/njchilds90/examgen/internal/family"
	"github.com/njchilds90/examgen/internal/generator"
)

// Spec describes one tool for agent registration.
type Spec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func object(required []string, props map[string]any) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func enum[T ~string](values []T) map[string]any {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return map[string]any{"type": "string", "enum": out}
}

var exprParam = map[string]any{"type": "object", "required": []string{"type"}}

var varParam = map[string]any{"type": "string", "minLength": 1}

// Specs lists every tool the handler serves.
func Specs() []Spec {
	return []Spec{
		{"generate_function", "Sample a function of a family at a difficulty level; returns equation, domain, range and, for quadratics, the discriminant",
			object([]string{"kind", "level"}, map[string]any{
				"kind":  enum(family.Kinds()),
				"level": map[string]any{"type": "integer", "minimum": 1},
			})},
		{"random_function", "Sample a function of a randomly chosen family and level",
			object(nil, map[string]any{
				"exclude": map[string]any{"type": "array", "items": enum(family.Groups())},
			})},
		{"simple_inverse", "Inverse-function question for an exp, hyperbola, log or cubic function; kind is random when omitted",
			object(nil, map[string]any{"kind": enum(generator.InverseKinds)})},
		{"tangent", "Tangent-line question with integer point, slope and intercept", object(nil, map[string]any{})},
		{"inverse", "Inverse of a one-variable expression", object([]string{"expr"}, map[string]any{"expr": exprParam})},
		{"classify", "Family of a one-variable expression", object([]string{"expr"}, map[string]any{"expr": exprParam})},
		{"solve", "Solve expr = 0 for var", object([]string{"expr", "var"}, map[string]any{"expr": exprParam, "var": varParam})},
		{"diff", "First derivative d/dvar", object([]string{"expr", "var"}, map[string]any{"expr": exprParam, "var": varParam})},
		{"substitute", "Substitute var with value", object([]string{"expr", "var", "value"}, map[string]any{"expr": exprParam, "var": varParam, "value": exprParam})},
		{"spec", "Return this tool schema", object(nil, map[string]any{})},
	}
}

// SpecJSON is the indented {"tools": [...]} document served on /schema.
func SpecJSON() string {
	b, _ := json.MarshalIndent(map[string]any{"tools": Specs()}, "", "  ")
	return string(b)
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	out := make(map[string]*jsonschema.Schema)
	for _, s := range Specs() {
		raw, err := json.Marshal(s.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: encode schema: %w", s.Name, err)
		}
		schema, err := jsonschema.CompileString("examgen://tools/"+s.Name+".json", string(raw))
		if err != nil {
			return nil, fmt.Errorf("tool %s: compile schema: %w", s.Name, err)
		}
		out[s.Name] = schema
	}
	return out, nil
}
