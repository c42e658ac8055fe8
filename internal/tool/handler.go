// Package tool exposes the generators and a few kernel operations as JSON
// tool calls for agent frameworks.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/njchilds90/examgen/internal/family"
	"github.com/njchilds90/examgen/internal/generator"
	"github.com/njchilds90/examgen/internal/inverse"
	"github.com/njchilds90/examgen/internal/observability"
	"github.com/njchilds90/examgen/internal/problem"
	"github.com/njchilds90/examgen/symbolic"
)

type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	LaTeX  string `json:"latex,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Handler validates tool requests and dispatches them.
type Handler struct {
	svc     *generator.Service
	schemas map[string]*jsonschema.Schema
	logger  zerolog.Logger
}

// NewHandler compiles the tool schemas.
func NewHandler(svc *generator.Service, logger zerolog.Logger) (*Handler, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, schemas: schemas, logger: logger.With().Str("component", "tool").Logger()}, nil
}

// Handle runs one tool call. Failures are reported in ToolResponse.Error.
func (h *Handler) Handle(ctx context.Context, req ToolRequest) ToolResponse {
	resp := h.dispatch(ctx, req)
	status := "ok"
	if resp.Error != "" {
		status = "error"
		h.logger.Warn().Str("tool", req.Tool).Str("error", resp.Error).Msg("tool call failed")
	}
	name := req.Tool
	if _, known := h.schemas[name]; !known {
		name = "unknown"
	}
	observability.ToolRequests().WithLabelValues(name, status).Inc()
	return resp
}

func (h *Handler) dispatch(ctx context.Context, req ToolRequest) ToolResponse {
	schema, ok := h.schemas[req.Tool]
	if !ok {
		return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}
	params := req.Params
	if params == nil {
		params = map[string]any{}
	}
	if err := schema.Validate(params); err != nil {
		return ToolResponse{Error: fmt.Sprintf("invalid params: %v", err)}
	}

	getExpr := func(key string) (symbolic.Expr, error) {
		v, ok := params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return symbolic.FromJSON(val)
	}
	getString := func(key string) string {
		s, _ := params[key].(string)
		return s
	}
	respond := func(e symbolic.Expr) ToolResponse {
		return ToolResponse{Result: symbolic.ToMap(e), LaTeX: e.LaTeX(), String: e.String()}
	}
	respondProblem := func(p *problem.Problem, err error) ToolResponse {
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: p, String: summarize(p)}
	}

	switch req.Tool {
	case "generate_function":
		level, _ := params["level"].(float64)
		return respondProblem(h.svc.Function(family.Kind(getString("kind")), family.Level(level)))

	case "random_function":
		var opts family.Options
		if raw, ok := params["exclude"].([]any); ok {
			for _, g := range raw {
				s, _ := g.(string)
				opts.Exclude = append(opts.Exclude, family.Group(s))
			}
		}
		return respondProblem(h.svc.RandomFunction(opts))

	case "simple_inverse":
		return respondProblem(h.svc.SimpleInverse(ctx, family.Kind(getString("kind"))))

	case "tangent":
		return respondProblem(h.svc.Tangent(ctx))

	case "inverse":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		inv, err := inverse.Inverse(e)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(inv)

	case "classify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars := symbolic.SortedSymbols(e)
		if len(vars) != 1 {
			return ToolResponse{Error: (&inverse.ArityError{Vars: vars}).Error()}
		}
		kind, err := family.Classify(e, vars[0])
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: string(kind), String: string(kind)}

	case "solve":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		roots, err := symbolic.Solve(e, getString("var"))
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		strs := make([]string, len(roots))
		for i, r := range roots {
			strs[i] = r.String()
		}
		return ToolResponse{Result: strs, String: strings.Join(strs, ", ")}

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(symbolic.Diff(e, getString("var")))

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		val, err := getExpr("value")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(symbolic.Sub(e, getString("var"), val))

	case "spec":
		return ToolResponse{Result: Specs(), String: SpecJSON()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// summarize renders "key: value" pairs in field order.
func summarize(p *problem.Problem) string {
	fields := p.Strings()
	parts := make([]string, 0, len(fields))
	for _, k := range p.Keys() {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
