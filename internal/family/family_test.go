package family_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/examgen/internal/family"
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/symbolic"
)

func isSquare(n int64) bool { return symbolic.IsPerfectSquare(n) }

func TestEveryLevelStaysInRangeAndRebuilds(t *testing.T) {
	for _, kind := range family.Kinds() {
		f, err := family.Lookup(kind)
		require.NoError(t, err)
		for _, level := range f.Levels() {
			policy, err := f.Policy(level)
			require.NoError(t, err)
			s := sampler.New(sampler.NewSource(uint64(level) * 31))
			for i := 0; i < 200; i++ {
				fn, err := family.Generate(f, s, level)
				require.NoError(t, err)
				require.Equal(t, kind, fn.Kind)
				require.Equal(t, level, fn.Level)
				require.Len(t, fn.Coefficients, len(policy.Ranges))
				for j, r := range policy.Ranges {
					require.True(t, r.Contains(fn.Coefficients[j]), "%s level %d coefficient %d = %d", kind, level, j, fn.Coefficients[j])
				}
				require.Equal(t, []string{family.Var}, symbolic.SortedSymbols(fn.Equation), "%s", fn.Equation)

				again, err := f.Build(level, fn.Coefficients)
				require.NoError(t, err)
				require.True(t, again.Equation.Equal(fn.Equation))
				require.Equal(t, fn.Domain.String(), again.Domain.String())
			}
		}
	}
}

func TestQuadraticLevelPredicates(t *testing.T) {
	f, err := family.Lookup(family.Quadratic)
	require.NoError(t, err)
	checks := map[family.Level]func(disc, b, c int64) bool{
		1: func(d, b, c int64) bool { return d == 0 && (b == 0 || c == 0) },
		2: func(d, _, _ int64) bool { return d > 0 && isSquare(d) },
		3: func(d, _, _ int64) bool { return d > 0 && !isSquare(d) },
		4: func(d, _, _ int64) bool { return d < 0 && isSquare(-d) },
		5: func(d, _, _ int64) bool { return d < 0 && !isSquare(-d) },
	}
	for level, check := range checks {
		draws := 0
		for seed := uint64(1); seed <= 50; seed++ {
			s := sampler.New(sampler.NewSource(seed))
			for i := 0; i < 20; i++ {
				fn, err := family.Generate(f, s, level)
				require.NoError(t, err)
				a, b, c := fn.Coefficients[0], fn.Coefficients[1], fn.Coefficients[2]
				disc := b*b - 4*a*c
				require.True(t, check(disc, b, c), "level %d seed %d: a=%d b=%d c=%d", level, seed, a, b, c)
				require.Equal(t, symbolic.N(disc).String(), fn.Discriminant.String())
				draws++
			}
		}
		require.Equal(t, 1000, draws)
	}
}

func TestQuadraticRangeFollowsLeadingSign(t *testing.T) {
	f, err := family.Lookup(family.Quadratic)
	require.NoError(t, err)
	s := sampler.New(sampler.NewSource(99))
	for i := 0; i < 100; i++ {
		fn, err := family.Generate(f, s, 3)
		require.NoError(t, err)
		parts := fn.Range.Intervals()
		require.Len(t, parts, 1)
		_, vy, err := family.Vertex(fn)
		require.NoError(t, err)
		if fn.Coefficients[0] > 0 {
			require.True(t, parts[0].Lower.Equal(vy))
			require.False(t, parts[0].IsUpperBounded())
			require.False(t, parts[0].LowerOpen)
		} else {
			require.True(t, parts[0].Upper.Equal(vy))
			require.False(t, parts[0].IsLowerBounded())
			require.False(t, parts[0].UpperOpen)
		}
	}
}

func TestVertexRejectsOtherKinds(t *testing.T) {
	f, err := family.Lookup(family.Linear)
	require.NoError(t, err)
	fn, err := f.Build(2, sampler.Coefficients{1, -4})
	require.NoError(t, err)
	_, _, err = family.Vertex(fn)
	require.ErrorIs(t, err, family.ErrUnsupportedShape)

	q, err := family.Lookup(family.Quadratic)
	require.NoError(t, err)
	fn, err = q.Build(2, sampler.Coefficients{1, 2, -3})
	require.NoError(t, err)
	vx, vy, err := family.Vertex(fn)
	require.NoError(t, err)
	require.Equal(t, "-1", vx.String())
	require.Equal(t, "-4", vy.String())
}

func TestQuadraticPureSquare(t *testing.T) {
	f, err := family.Lookup(family.Quadratic)
	require.NoError(t, err)
	fn, err := f.Build(1, sampler.Coefficients{1, 0, 0})
	require.NoError(t, err)
	require.Equal(t, "x^2", fn.Equation.String())
	require.Equal(t, "(-oo, oo)", fn.Domain.String())
	require.Equal(t, "[0, oo)", fn.Range.String())
}

func TestInvalidDifficultyBeforeSampling(t *testing.T) {
	f, err := family.Lookup(family.Quadratic)
	require.NoError(t, err)
	s := sampler.New(sampler.NewSource(1))
	_, err = family.Generate(f, s, 9)
	require.ErrorIs(t, err, family.ErrInvalidDifficulty)
	require.EqualError(t, err, "family: invalid difficulty: quadratic level 9")
	require.Zero(t, s.Attempts())

	_, err = f.Build(9, sampler.Coefficients{1, 0, 0})
	require.ErrorIs(t, err, family.ErrInvalidDifficulty)
}

func TestLookupUnknownKind(t *testing.T) {
	_, err := family.Lookup("sec")
	require.ErrorIs(t, err, family.ErrUnknownKind)
}

func TestLinearLevels(t *testing.T) {
	f, err := family.Lookup(family.Linear)
	require.NoError(t, err)
	fn, err := f.Build(2, sampler.Coefficients{1, -4})
	require.NoError(t, err)
	require.Equal(t, "x - 4", fn.Equation.String())

	s := sampler.New(sampler.NewSource(8))
	for i := 0; i < 200; i++ {
		fn, err := family.Generate(f, s, 3)
		require.NoError(t, err)
		require.NotEqual(t, int64(1), fn.Coefficients[0])
		require.NotZero(t, fn.Coefficients[1])
	}
}

func TestLogDomain(t *testing.T) {
	f, err := family.Lookup(family.Log)
	require.NoError(t, err)

	fn, err := f.Build(3, sampler.Coefficients{1, 2, -4, 0})
	require.NoError(t, err)
	require.Equal(t, "ln(2*x - 4)", fn.Equation.String())
	require.Equal(t, "(2, oo)", fn.Domain.String())
	require.Equal(t, "(-oo, oo)", fn.Range.String())

	fn, err = f.Build(3, sampler.Coefficients{-2, -2, 4, 3})
	require.NoError(t, err)
	require.Equal(t, "(-oo, 2)", fn.Domain.String())
	require.True(t, fn.Domain.Contains(symbolic.N(1)))
	require.False(t, fn.Domain.Contains(symbolic.N(2)))
}

func TestExpRange(t *testing.T) {
	f, err := family.Lookup(family.Exp)
	require.NoError(t, err)
	fn, err := f.Build(3, sampler.Coefficients{-2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, "(-oo, 4)", fn.Range.String())

	fn, err = f.Build(1, sampler.Coefficients{1, -1, 0})
	require.NoError(t, err)
	require.Equal(t, "exp(-x)", fn.Equation.String())
	require.Equal(t, "(0, oo)", fn.Range.String())
}

func TestTanPrincipalDomain(t *testing.T) {
	f, err := family.Lookup(family.Tan)
	require.NoError(t, err)
	fn, err := f.Build(1, sampler.Coefficients{0, 1, 0})
	require.NoError(t, err)
	require.Equal(t, "tan(x)", fn.Equation.String())
	require.Equal(t, "(-pi/2, pi/2)", fn.Domain.String())

	fn, err = f.Build(2, sampler.Coefficients{1, 2, 1})
	require.NoError(t, err)
	require.Equal(t, "(-1/3, 1/6)", fn.Domain.String())
}

func TestSinRange(t *testing.T) {
	f, err := family.Lookup(family.Sin)
	require.NoError(t, err)
	fn, err := f.Build(1, sampler.Coefficients{0, 2, 0})
	require.NoError(t, err)
	require.Equal(t, "sin(2*x)", fn.Equation.String())
	require.Equal(t, "[-1, 1]", fn.Range.String())
}

func TestHyperbolaExcludesAsymptotes(t *testing.T) {
	f, err := family.Lookup(family.Hyperbola)
	require.NoError(t, err)
	fn, err := f.Build(3, sampler.Coefficients{3, 2, -1})
	require.NoError(t, err)
	require.Equal(t, "3/(x - 2) - 1", fn.Equation.String())
	require.Equal(t, "(-oo, 2) U (2, oo)", fn.Domain.String())
	require.Equal(t, "(-oo, -1) U (-1, oo)", fn.Range.String())
}

func TestBuildRejectsWrongArity(t *testing.T) {
	f, err := family.Lookup(family.Cubic)
	require.NoError(t, err)
	_, err = f.Build(1, sampler.Coefficients{1})
	require.Error(t, err)
}

func TestRandomRespectsExclusions(t *testing.T) {
	src := sampler.NewSource(12)
	opts := family.Options{Exclude: []family.Group{family.GroupLinear, family.GroupQuadratic, family.GroupLog, family.GroupTrig}}
	for i := 0; i < 50; i++ {
		c, err := family.Random(src, opts)
		require.NoError(t, err)
		require.Equal(t, family.Exp, c.Kind)
		require.GreaterOrEqual(t, c.Level, family.Level(1))
		require.LessOrEqual(t, c.Level, family.Level(3))
	}

	opts = family.Options{
		Exclude: []family.Group{family.GroupLinear, family.GroupQuadratic, family.GroupLog, family.GroupExp},
		Levels:  map[family.Group]family.Level{family.GroupTrig: 2},
	}
	c, err := family.Random(src, opts)
	require.NoError(t, err)
	require.Contains(t, []family.Kind{family.Sin, family.Cos, family.Tan}, c.Kind)
	require.Equal(t, family.Level(2), c.Level)
}

func TestRandomNothingLeft(t *testing.T) {
	opts := family.Options{Exclude: []family.Group{
		family.GroupLinear, family.GroupQuadratic, family.GroupLog, family.GroupTrig, family.GroupExp,
	}}
	_, err := family.Random(sampler.NewSource(1), opts)
	require.ErrorIs(t, err, family.ErrNoCandidates)
}

func TestClassify(t *testing.T) {
	x := symbolic.S("x")
	cases := []struct {
		name string
		expr symbolic.Expr
		want family.Kind
	}{
		{"linear", symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(1)), family.Linear},
		{"quadratic", symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1)), family.Quadratic},
		{"cubic", symbolic.PowOf(x, symbolic.N(3)), family.Cubic},
		{"exp", symbolic.AddOf(symbolic.ExpOf(symbolic.MulOf(symbolic.N(2), x)), symbolic.N(1)), family.Exp},
		{"log", symbolic.LnOf(x), family.Log},
		{"cos", symbolic.CosOf(x), family.Cos},
		{"hyperbola", symbolic.PowOf(symbolic.AddOf(x, symbolic.N(-1)), symbolic.N(-1)), family.Hyperbola},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := family.Classify(tc.expr, "x")
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := family.Classify(symbolic.MulOf(symbolic.LnOf(x), symbolic.SinOf(x)), "x")
	require.ErrorIs(t, err, family.ErrUnsupportedShape)
	_, err = family.Classify(symbolic.N(4), "x")
	require.ErrorIs(t, err, family.ErrUnsupportedShape)
}

func TestSensibleTrigX(t *testing.T) {
	x := symbolic.S("x")
	xs, err := family.SensibleTrigX(symbolic.SinOf(x), "x")
	require.NoError(t, err)
	require.Len(t, xs, 12)
	require.Equal(t, "-5*pi/6", xs[0].String())
	require.Equal(t, "pi", xs[11].String())

	xs, err = family.SensibleTrigX(symbolic.TanOf(symbolic.MulOf(symbolic.Pi(), x)), "x")
	require.NoError(t, err)
	require.Len(t, xs, 10)
	for _, v := range xs {
		require.NotEqual(t, "1/2", v.String())
		require.NotEqual(t, "-1/2", v.String())
	}

	_, err = family.SensibleTrigX(symbolic.LnOf(x), "x")
	require.ErrorIs(t, err, family.ErrUnsupportedShape)
}

func TestChooseBounds(t *testing.T) {
	xs := []symbolic.Expr{symbolic.N(1), symbolic.N(2), symbolic.N(3), symbolic.N(4)}
	src := sampler.NewSource(5)
	for i := 0; i < 100; i++ {
		lo, hi, err := family.ChooseBounds(src, xs)
		require.NoError(t, err)
		l, _ := lo.Eval()
		h, _ := hi.Eval()
		require.Equal(t, -1, l.Cmp(h))
	}
	_, _, err := family.ChooseBounds(src, xs[:1])
	require.ErrorIs(t, err, family.ErrTooFewValues)
}
