package sampler_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/examgen/internal/sampler"
)

func TestNonZeroRangeNeverDrawsZero(t *testing.T) {
	s := sampler.New(sampler.NewSource(1))
	seen := map[int64]bool{}
	for i := 0; i < 2000; i++ {
		c, err := s.Sample([]sampler.Range{sampler.NonZero(-3, 3)}, nil)
		require.NoError(t, err)
		require.NotZero(t, c[0])
		require.GreaterOrEqual(t, c[0], int64(-3))
		require.LessOrEqual(t, c[0], int64(3))
		seen[c[0]] = true
	}
	require.Len(t, seen, 6, "every non-zero member should be drawn")
}

func TestFixedRange(t *testing.T) {
	s := sampler.New(sampler.NewSource(2))
	c, err := s.Sample([]sampler.Range{sampler.Fixed(7), sampler.Fixed(0)}, nil)
	require.NoError(t, err)
	require.Equal(t, sampler.Coefficients{7, 0}, c)
}

func TestPredicateIsHonoured(t *testing.T) {
	s := sampler.New(sampler.NewSource(3))
	even := func(c sampler.Coefficients) bool { return c[0]%2 == 0 }
	for i := 0; i < 200; i++ {
		c, err := s.Sample([]sampler.Range{sampler.Between(-20, 20)}, even)
		require.NoError(t, err)
		require.Zero(t, c[0]%2)
	}
}

func TestSameSeedSameDraws(t *testing.T) {
	ranges := []sampler.Range{sampler.NonZero(-5, 5), sampler.Between(-10, 10)}
	a := sampler.New(sampler.NewSource(42))
	b := sampler.New(sampler.NewSource(42))
	for i := 0; i < 50; i++ {
		ca, err := a.Sample(ranges, nil)
		require.NoError(t, err)
		cb, err := b.Sample(ranges, nil)
		require.NoError(t, err)
		require.Equal(t, ca, cb)
	}
}

func TestMaxAttempts(t *testing.T) {
	var observed []int
	s := sampler.New(sampler.NewSource(4),
		sampler.WithMaxAttempts(25),
		sampler.WithObserver(func(n int) { observed = append(observed, n) }),
	)
	never := func(sampler.Coefficients) bool { return false }
	_, err := s.Sample([]sampler.Range{sampler.Between(0, 9)}, never)
	require.ErrorIs(t, err, sampler.ErrAttemptsExhausted)
	require.Equal(t, int64(25), s.Attempts())
	require.Empty(t, observed)

	_, err = s.Sample([]sampler.Range{sampler.Between(0, 9)}, nil)
	require.NoError(t, err)
	require.Equal(t, []int{1}, observed)
}

func TestInvalidRange(t *testing.T) {
	s := sampler.New(sampler.NewSource(5))
	_, err := s.Sample([]sampler.Range{sampler.Between(3, 1)}, nil)
	require.ErrorIs(t, err, sampler.ErrInvalidRange)

	_, err = s.Sample([]sampler.Range{sampler.NonZero(0, 0)}, nil)
	require.ErrorIs(t, err, sampler.ErrInvalidRange)
	require.Zero(t, s.Attempts(), "no draw should happen for an invalid range")
}

func TestRangeContains(t *testing.T) {
	r := sampler.NonZero(-2, 2)
	require.True(t, r.Contains(-2))
	require.False(t, r.Contains(0))
	require.False(t, r.Contains(3))
	require.Equal(t, int64(4), r.Size())
}

func TestLockedSourceConcurrentUse(t *testing.T) {
	src := sampler.NewLockedSource(sampler.NewSource(6))
	s := sampler.New(src)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, err := s.Sample([]sampler.Range{sampler.NonZero(-5, 5)}, nil)
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(800), s.Attempts())
}
