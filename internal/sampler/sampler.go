// Package sampler draws integer coefficient vectors by rejection sampling:
// every coefficient is drawn uniformly from its Range and the whole vector is
// redrawn until a Predicate accepts it.
//
// Termination is the caller's obligation. Sample loops until the predicate
// holds unless WithMaxAttempts bounds the number of draws; an unsatisfiable
// predicate over an unbounded Sampler never returns.
package sampler

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrInvalidRange is returned for a range with no members.
	ErrInvalidRange = errors.New("sampler: invalid range")

	// ErrAttemptsExhausted is returned when a bounded Sampler runs out of
	// draws before the predicate accepts a vector.
	ErrAttemptsExhausted = errors.New("sampler: attempts exhausted")
)

// Coefficients is one drawn vector, in the order of the ranges it was drawn
// from.
type Coefficients []int64

// Predicate accepts or rejects a drawn vector. It must be pure.
type Predicate func(Coefficients) bool

// Always accepts every vector.
func Always(Coefficients) bool { return true }

// Range is an inclusive integer range, optionally without zero.
type Range struct {
	Min, Max    int64
	ExcludeZero bool
}

// Between is the inclusive range [min, max].
func Between(min, max int64) Range { return Range{Min: min, Max: max} }

// NonZero is the inclusive range [min, max] without zero.
func NonZero(min, max int64) Range { return Range{Min: min, Max: max, ExcludeZero: true} }

// Fixed is the one-member range {v}.
func Fixed(v int64) Range { return Range{Min: v, Max: v} }

func (r Range) hasZero() bool { return r.Min <= 0 && r.Max >= 0 }

// Size is the number of members of the range.
func (r Range) Size() int64 {
	if r.Min > r.Max {
		return 0
	}
	n := r.Max - r.Min + 1
	if r.ExcludeZero && r.hasZero() {
		n--
	}
	return n
}

// Contains reports whether v is a member of the range.
func (r Range) Contains(v int64) bool {
	if v < r.Min || v > r.Max {
		return false
	}
	return !(r.ExcludeZero && v == 0)
}

// Validate returns ErrInvalidRange for a range with no members.
func (r Range) Validate() error {
	if r.Size() <= 0 {
		return fmt.Errorf("%w: [%d, %d] exclude zero=%t", ErrInvalidRange, r.Min, r.Max, r.ExcludeZero)
	}
	return nil
}

// draw picks a member uniformly; zero is skipped by shifting, not rejected.
func (r Range) draw(src Source) int64 {
	v := r.Min + src.Int64N(r.Size())
	if r.ExcludeZero && r.hasZero() && v >= 0 {
		v++
	}
	return v
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithMaxAttempts bounds the number of vectors drawn per Sample call.
// Zero or negative means unbounded.
func WithMaxAttempts(n int) Option {
	return func(s *Sampler) { s.maxAttempts = n }
}

// WithObserver registers a hook called after every successful Sample with the
// number of vectors it drew.
func WithObserver(fn func(attempts int)) Option {
	return func(s *Sampler) { s.observe = fn }
}

// Sampler runs the rejection loop. It is safe for concurrent use when its
// Source is.
type Sampler struct {
	src         Source
	maxAttempts int
	observe     func(int)
	attempts    atomic.Int64
}

// New returns a Sampler drawing from src.
func New(src Source, opts ...Option) *Sampler {
	if src == nil {
		src = Default()
	}
	s := &Sampler{src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the randomness source the sampler draws from.
func (s *Sampler) Source() Source { return s.src }

// Attempts is the total number of vectors drawn by this sampler.
func (s *Sampler) Attempts() int64 { return s.attempts.Load() }

// Sample draws vectors until pred accepts one. A nil predicate accepts the
// first draw.
func (s *Sampler) Sample(ranges []Range, pred Predicate) (Coefficients, error) {
	for i, r := range ranges {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
	}
	if pred == nil {
		pred = Always
	}
	for n := 1; ; n++ {
		c := make(Coefficients, len(ranges))
		for i, r := range ranges {
			c[i] = r.draw(s.src)
		}
		s.attempts.Add(1)
		if pred(c) {
			if s.observe != nil {
				s.observe(n)
			}
			return c, nil
		}
		if s.maxAttempts > 0 && n >= s.maxAttempts {
			return nil, fmt.Errorf("%w after %d draws", ErrAttemptsExhausted, n)
		}
	}
}
