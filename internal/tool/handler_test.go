package tool_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/examgen/internal/cache"
	"github.com/njchilds90/examgen/internal/generator"
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/internal/tangent"
	"github.com/njchilds90/examgen/internal/tool"
	"github.com/njchilds90/examgen/symbolic"
)

const responseSchema = `{
	"type": "object",
	"properties": {
		"result": {},
		"latex": {"type": "string"},
		"string": {"type": "string"},
		"error": {"type": "string"}
	},
	"additionalProperties": false
}`

const problemSchema = `{
	"type": "object",
	"required": ["id", "kind", "fields"],
	"properties": {
		"id": {"type": "string", "format": "uuid"},
		"kind": {"type": "string"},
		"fields": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["key", "text", "latex"]
			}
		}
	}
}`

func newHandler(t *testing.T) *tool.Handler {
	t.Helper()
	lattice := tangent.Lattice{Leading: []int64{1}, Min: -2, Max: 2, Domain: []int64{-1, 0, 1}}
	scanner := tangent.NewScanner(lattice, tangent.DefaultFilter(), cache.NewMemoryStore(), zerolog.Nop())
	svc := generator.NewService(sampler.NewSource(21), zerolog.Nop(), generator.WithScanner(scanner))
	h, err := tool.NewHandler(svc, zerolog.Nop())
	require.NoError(t, err)
	return h
}

// call sends the request through JSON the way the server receives it and
// returns the decoded response document.
func call(t *testing.T, h *tool.Handler, name string, params map[string]any) (tool.ToolResponse, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(tool.ToolRequest{Tool: name, Params: params})
	require.NoError(t, err)
	var req tool.ToolRequest
	require.NoError(t, json.Unmarshal(raw, &req))

	resp := h.Handle(context.Background(), req)
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))

	schema, err := jsonschema.CompileString("examgen://tests/response.json", responseSchema)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(doc))
	return resp, doc
}

func TestGenerateFunction(t *testing.T) {
	h := newHandler(t)
	resp, doc := call(t, h, "generate_function", map[string]any{"kind": "quadratic", "level": 2})
	require.Empty(t, resp.Error)
	require.Contains(t, resp.String, "equation: ")
	require.Contains(t, resp.String, "discriminant: ")

	schema, err := jsonschema.CompileString("examgen://tests/problem.json", problemSchema)
	require.NoError(t, err)
	require.NoError(t, schema.Validate(doc["result"]))
}

func TestParamsAreValidated(t *testing.T) {
	h := newHandler(t)
	cases := []map[string]any{
		{"kind": "quadratic", "level": 0},
		{"kind": "parabola", "level": 1},
		{"kind": "quadratic"},
		{"kind": "quadratic", "level": 1, "seed": 3},
		{"kind": "quadratic", "level": 1.5},
	}
	for _, params := range cases {
		resp, _ := call(t, h, "generate_function", params)
		require.Contains(t, resp.Error, "invalid params", "%v", params)
	}
}

func TestInvalidLevelReportsError(t *testing.T) {
	resp, _ := call(t, newHandler(t), "generate_function", map[string]any{"kind": "quadratic", "level": 9})
	require.Equal(t, "family: invalid difficulty: quadratic level 9", resp.Error)
}

func TestUnknownTool(t *testing.T) {
	resp, _ := call(t, newHandler(t), "integrate", nil)
	require.Equal(t, "unknown tool: integrate", resp.Error)
}

func TestSimpleInverseAndTangent(t *testing.T) {
	h := newHandler(t)
	resp, _ := call(t, h, "simple_inverse", map[string]any{"kind": "log"})
	require.Empty(t, resp.Error)
	require.Contains(t, resp.String, "inverse_domain: ")

	resp, _ = call(t, h, "simple_inverse", map[string]any{"kind": "sin"})
	require.Contains(t, resp.Error, "invalid params")

	resp, _ = call(t, h, "random_function", map[string]any{"exclude": []string{"quadratic", "log", "trig", "exp"}})
	require.Empty(t, resp.Error)
	require.Contains(t, resp.String, "function_type: linear")

	resp, _ = call(t, h, "tangent", nil)
	require.Empty(t, resp.Error)
	require.Contains(t, resp.String, "point_of_tangency: ")
}

func TestKernelTools(t *testing.T) {
	h := newHandler(t)
	x := symbolic.S("x")
	line := symbolic.ToMap(symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(3)))

	resp, _ := call(t, h, "inverse", map[string]any{"expr": line})
	require.Empty(t, resp.Error)
	require.Equal(t, "x/2 - 3/2", resp.String)

	resp, _ = call(t, h, "classify", map[string]any{"expr": line})
	require.Equal(t, "linear", resp.String)

	resp, _ = call(t, h, "solve", map[string]any{"expr": line, "var": "x"})
	require.Equal(t, "-3/2", resp.String)

	resp, _ = call(t, h, "diff", map[string]any{"expr": line, "var": "x"})
	require.Equal(t, "2", resp.String)

	resp, _ = call(t, h, "substitute", map[string]any{"expr": line, "var": "x", "value": symbolic.ToMap(symbolic.N(1))})
	require.Equal(t, "5", resp.String)

	two := symbolic.ToMap(symbolic.AddOf(x, symbolic.S("t")))
	resp, _ = call(t, h, "classify", map[string]any{"expr": two})
	require.Contains(t, resp.Error, "exactly one variable")
}

func TestSpec(t *testing.T) {
	var doc struct {
		Tools []tool.Spec `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(tool.SpecJSON()), &doc))
	names := make([]string, len(doc.Tools))
	for i, s := range doc.Tools {
		names[i] = s.Name
	}
	require.Contains(t, names, "generate_function")
	require.Contains(t, names, "tangent")

	resp, _ := call(t, newHandler(t), "spec", nil)
	require.Equal(t, tool.SpecJSON(), resp.String)
}
