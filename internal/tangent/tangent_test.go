package tangent_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/examgen/internal/cache"
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/internal/tangent"
	"github.com/njchilds90/examgen/symbolic"
)

var x = symbolic.S("x")

func line(slope, intercept int64) symbolic.Expr {
	return symbolic.AddOf(symbolic.MulOf(symbolic.N(slope), x), symbolic.N(intercept))
}

func TestQuadraticCount(t *testing.T) {
	n := 0
	for range tangent.DefaultLattice().Quadratics() {
		n++
	}
	require.Equal(t, 10*21*21, n)
}

func TestQuadraticsDeterministic(t *testing.T) {
	pass := func() []string {
		var out []string
		for c := range tangent.DefaultLattice().Quadratics() {
			out = append(out, c.String())
		}
		return out
	}
	first := pass()
	require.Equal(t, first, pass())
	require.Equal(t, []int64{-5, -10, -10}, tangent.NewCurve(-5, -10, -10).Coefficients)
}

func TestLexicographicOrder(t *testing.T) {
	l := tangent.Lattice{Leading: []int64{-1, 1}, Min: 0, Max: 1, Domain: []int64{0}}
	var got [][]int64
	for c := range l.Curves() {
		got = append(got, c.Coefficients)
	}
	require.Len(t, got, 2*2*2+2*2*2*2)
	require.Equal(t, []int64{-1, 0, 0}, got[0])
	require.Equal(t, []int64{-1, 0, 1}, got[1])
	require.Equal(t, []int64{-1, 1, 0}, got[2])
	require.Equal(t, []int64{1, 1, 1}, got[7])
	require.Equal(t, []int64{-1, 0, 0, 0}, got[8])
	require.Equal(t, []int64{1, 1, 1, 1}, got[len(got)-1])
}

func TestEarlyStop(t *testing.T) {
	var seen []tangent.Candidate
	for c := range tangent.DefaultLattice().Candidates() {
		seen = append(seen, c)
		if len(seen) == 5 {
			break
		}
	}
	require.Len(t, seen, 5)
	for i, c := range seen {
		require.Equal(t, []int64{-5, -10, -10}, c.Curve.Coefficients)
		require.Equal(t, int64(-5+i), c.X)
	}
}

func TestTangentOfParabola(t *testing.T) {
	c := tangent.TangentAt(tangent.NewCurve(1, 0, -1), 1)
	require.Equal(t, "x^2 - 1", c.Curve.String())
	require.Equal(t, "2", c.Slope.String())
	require.Equal(t, "-2", c.Intercept.String())
	require.Equal(t, "2*x - 2", c.Tangent.String())
	require.Equal(t, "(1, 0)", c.Point.String())

	f := tangent.DefaultFilter()
	require.True(t, f.ReasonablePoint(c.Point))
	require.True(t, f.ReasonableTangent(c.Tangent))
	require.True(t, f.Accept(c))
}

func TestTangentOfCubic(t *testing.T) {
	c := tangent.TangentAt(tangent.NewCurve(1, 0, 0, 0), 1)
	require.Equal(t, "3*x - 2", c.Tangent.String())
	require.True(t, tangent.DefaultFilter().Accept(c))
}

func TestFilterBoundaries(t *testing.T) {
	f := tangent.DefaultFilter()
	require.True(t, f.ReasonableTangent(line(5, 0)))
	require.True(t, f.ReasonableTangent(line(-5, 0)))
	require.False(t, f.ReasonableTangent(line(6, 0)))
	require.False(t, f.ReasonableTangent(line(0, 3)))
	require.True(t, f.ReasonableTangent(line(1, 10)))
	require.False(t, f.ReasonableTangent(line(1, 11)))
	require.False(t, f.ReasonableTangent(symbolic.AddOf(symbolic.MulOf(symbolic.F(1, 2), x), symbolic.N(1))))
	require.False(t, f.ReasonableTangent(symbolic.PowOf(x, symbolic.N(2))))

	require.True(t, f.ReasonablePoint(tangent.Point{X: 0, Y: symbolic.N(20)}))
	require.False(t, f.ReasonablePoint(tangent.Point{X: 0, Y: symbolic.N(21)}))
	require.False(t, f.ReasonablePoint(tangent.Point{X: 0, Y: symbolic.F(1, 2)}))
}

func TestRejectsLargePoint(t *testing.T) {
	// y(5) = 25 is outside [-20, 20] even though slope and intercept are fine
	c := tangent.TangentAt(tangent.NewCurve(1, -5, 25), 5)
	require.Equal(t, "5*x", c.Tangent.String())
	require.True(t, tangent.DefaultFilter().ReasonableTangent(c.Tangent))
	require.False(t, tangent.DefaultFilter().Accept(c))
}

func smallLattice() tangent.Lattice {
	return tangent.Lattice{Leading: []int64{1}, Min: -1, Max: 1, Domain: []int64{-1, 0, 1}}
}

func TestAcceptedOnlyYieldsAccepted(t *testing.T) {
	f := tangent.DefaultFilter()
	total, kept := 0, 0
	for range smallLattice().Candidates() {
		total++
	}
	for c := range tangent.Accepted(smallLattice().Candidates(), f) {
		require.True(t, f.Accept(c))
		kept++
	}
	require.Equal(t, (9+27)*3, total)
	require.Positive(t, kept)
	require.Less(t, kept, total)
}

func TestScannerCaches(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()
	s := tangent.NewScanner(smallLattice(), tangent.DefaultFilter(), store, zerolog.Nop())

	first, err := s.Accepted(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.Equal(t, 1, store.Len())

	second, err := s.Accepted(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].Curve.Coefficients, second[i].Curve.Coefficients)
		require.Equal(t, first[i].X, second[i].X)
		require.True(t, first[i].Tangent.Equal(second[i].Tangent))
		require.True(t, first[i].Point.Y.Equal(second[i].Point.Y))
	}

	// a fresh scanner reads the store instead of enumerating
	key, err := s.Key()
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, key, []byte(`[]`)))
	fresh := tangent.NewScanner(smallLattice(), tangent.DefaultFilter(), store, zerolog.Nop())
	planted, err := fresh.Accepted(ctx)
	require.NoError(t, err)
	require.Empty(t, planted)

	_, err = fresh.Random(ctx, sampler.NewSource(1))
	require.ErrorIs(t, err, tangent.ErrNoAccepted)

	// the first scanner keeps serving its own list from memory
	held, err := s.Accepted(ctx)
	require.NoError(t, err)
	require.Len(t, held, len(first))

	require.NoError(t, fresh.Invalidate(ctx))
	require.Equal(t, 0, store.Len())
	again, err := fresh.Accepted(ctx)
	require.NoError(t, err)
	require.Len(t, again, len(first))
}

type countingStore struct {
	cache.Store
	mu    sync.Mutex
	loads int
	saves int
}

func (c *countingStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return c.Store.Load(ctx, key)
}

func (c *countingStore) Save(ctx context.Context, key string, payload []byte) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.Store.Save(ctx, key, payload)
}

func TestScannerSharesColdLoad(t *testing.T) {
	store := &countingStore{Store: cache.NewMemoryStore()}
	s := tangent.NewScanner(smallLattice(), tangent.DefaultFilter(), store, zerolog.Nop())

	var wg sync.WaitGroup
	lens := make([]int, 16)
	errs := make([]error, 16)
	for i := range lens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := s.Accepted(context.Background())
			lens[i], errs[i] = len(list), err
		}(i)
	}
	wg.Wait()

	for i := range lens {
		require.NoError(t, errs[i])
		require.Equal(t, lens[0], lens[i])
	}
	require.Equal(t, 1, store.loads)
	require.Equal(t, 1, store.saves)

	for i := 0; i < 5; i++ {
		_, err := s.Random(context.Background(), sampler.NewSource(uint64(i)))
		require.NoError(t, err)
	}
	require.Equal(t, 1, store.loads)
}

func TestScannerHonoursContext(t *testing.T) {
	s := tangent.NewScanner(smallLattice(), tangent.DefaultFilter(), cache.NewMemoryStore(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Accepted(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.NoError(t, s.Warm(context.Background()))
	list, err := s.Accepted(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
}

func TestScannerKeyTracksParameters(t *testing.T) {
	a, err := tangent.NewScanner(smallLattice(), tangent.DefaultFilter(), nil, zerolog.Nop()).Key()
	require.NoError(t, err)

	f := tangent.DefaultFilter()
	f.Intercept.Max = 9
	b, err := tangent.NewScanner(smallLattice(), f, nil, zerolog.Nop()).Key()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestScannerRandomWithSQLStore(t *testing.T) {
	store, err := cache.OpenSQLite("file::memory:?cache=shared")
	require.NoError(t, err)
	s := tangent.NewScanner(smallLattice(), tangent.DefaultFilter(), store, zerolog.Nop())

	c, err := s.Random(context.Background(), sampler.NewSource(3))
	require.NoError(t, err)
	require.True(t, tangent.DefaultFilter().Accept(c))

	again, err := s.Random(context.Background(), sampler.NewSource(3))
	require.NoError(t, err)
	require.Equal(t, c.Curve.Coefficients, again.Curve.Coefficients)
	require.Equal(t, c.X, again.X)
}
