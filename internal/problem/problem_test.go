package problem_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/examgen/internal/problem"
	"github.com/njchilds90/examgen/symbolic"
)

func quadratic() *problem.Problem {
	x := symbolic.S("x")
	return problem.New("quadratic",
		problem.With(problem.KeyEquation, symbolic.PowOf(x, symbolic.N(2))),
		problem.With(problem.KeyDomain, symbolic.Reals().Set()),
		problem.With(problem.KeyRange, symbolic.AtLeast(symbolic.N(0))),
		problem.With(problem.KeyLevel, problem.Int(1)),
	)
}

func TestProblemFields(t *testing.T) {
	p := quadratic()
	require.NotEqual(t, uuid.Nil, p.ID())
	require.Equal(t, "quadratic", p.Kind())
	require.Equal(t, []string{"equation", "domain", "range", "level"}, p.Keys())

	eq, ok := p.Expr(problem.KeyEquation)
	require.True(t, ok)
	require.Equal(t, "x^2", eq.String())

	_, ok = p.Expr(problem.KeyLevel)
	require.False(t, ok)
	_, ok = p.Get(problem.KeyInverse)
	require.False(t, ok)

	require.Equal(t, map[string]string{
		"equation": "x^2",
		"domain":   "(-oo, oo)",
		"range":    "[0, oo)",
		"level":    "1",
	}, p.Strings())
}

func TestRepeatedKeyReplacesInPlace(t *testing.T) {
	p := problem.New("linear",
		problem.With("a", problem.Text("one")),
		problem.With("b", problem.Text("two")),
		problem.With("a", problem.Text("three")),
	)
	require.Equal(t, []string{"a", "b"}, p.Keys())
	v, _ := p.Get("a")
	require.Equal(t, "three", v.String())
}

func TestDistinctIDs(t *testing.T) {
	require.NotEqual(t, quadratic().ID(), quadratic().ID())
}

func TestMarshalJSON(t *testing.T) {
	p := quadratic()
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded struct {
		ID     string `json:"id"`
		Kind   string `json:"kind"`
		Fields []struct {
			Key   string `json:"key"`
			Text  string `json:"text"`
			LaTeX string `json:"latex"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, p.ID().String(), decoded.ID)
	require.Equal(t, "quadratic", decoded.Kind)
	require.Len(t, decoded.Fields, 4)
	require.Equal(t, "equation", decoded.Fields[0].Key)
	require.Equal(t, "x^2", decoded.Fields[0].Text)
	require.Equal(t, "x^{2}", decoded.Fields[0].LaTeX)
}
