package tangent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/njchilds90/examgen/internal/cache"
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/symbolic"
)

// ErrNoAccepted is returned by Random when the filter rejects every
// candidate of the lattice.
var ErrNoAccepted = errors.New("tangent: no candidate passes the filter")

const cacheNamespace = "tangent"

// Scanner collects the accepted candidates of a lattice once and keeps them
// in a cache.Store keyed by the lattice and filter. The decoded list is also
// held in memory; concurrent cold calls share a single load.
type Scanner struct {
	lattice Lattice
	filter  Filter
	store   cache.Store
	logger  zerolog.Logger
	tracer  trace.Tracer

	flight singleflight.Group
	mu     sync.RWMutex
	loaded []Candidate
}

// NewScanner returns a Scanner. A nil store disables caching.
func NewScanner(lattice Lattice, filter Filter, store cache.Store, logger zerolog.Logger) *Scanner {
	return &Scanner{
		lattice: lattice,
		filter:  filter,
		store:   store,
		logger:  logger.With().Str("component", "tangent_scanner").Logger(),
		tracer:  otel.Tracer("github.com/njchilds90/examgen/internal/tangent"),
	}
}

// Key is the cache key of the scanner's lattice and filter.
func (s *Scanner) Key() (string, error) {
	return cache.Key(cacheNamespace, struct {
		Lattice Lattice `json:"lattice"`
		Filter  Filter  `json:"filter"`
	}{s.lattice, s.filter})
}

// Accepted returns every accepted candidate in enumeration order. The first
// call reads the cache store and enumerates on a miss; later calls are served
// from memory. A caller whose ctx ends first gets ctx.Err() while the load
// carries on for the others. The returned slice is shared and must not be
// modified.
func (s *Scanner) Accepted(ctx context.Context) ([]Candidate, error) {
	if list, ok := s.memoized(); ok {
		return list, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := s.flight.DoChan(cacheNamespace, func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Candidate), nil
	}
}

// Warm loads the accepted candidates so later calls are served from memory.
func (s *Scanner) Warm(ctx context.Context) error {
	_, err := s.Accepted(ctx)
	return err
}

// Invalidate drops the in-memory list and the cache entry.
func (s *Scanner) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.loaded = nil
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	key, err := s.Key()
	if err != nil {
		return err
	}
	return s.store.Invalidate(ctx, key)
}

func (s *Scanner) memoized() ([]Candidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded, s.loaded != nil
}

func (s *Scanner) remember(list []Candidate) []Candidate {
	s.mu.Lock()
	s.loaded = list
	s.mu.Unlock()
	return list
}

func (s *Scanner) load(ctx context.Context) ([]Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "tangent.accepted")
	defer span.End()

	key, err := s.Key()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("tangent.cache_key", key))

	if s.store != nil {
		payload, ok, err := s.store.Load(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read enumeration cache")
			span.RecordError(err)
		case ok:
			list := []Candidate{}
			if err := json.Unmarshal(payload, &list); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cache entry")
				break
			}
			span.SetAttributes(attribute.Bool("tangent.cache_hit", true), attribute.Int("tangent.accepted", len(list)))
			s.logger.Debug().Str("key", key).Int("accepted", len(list)).Msg("enumeration served from cache")
			return s.remember(list), nil
		}
	}

	list := s.enumerate(ctx)
	span.SetAttributes(attribute.Bool("tangent.cache_hit", false), attribute.Int("tangent.accepted", len(list)))
	s.logger.Info().Str("key", key).Int("accepted", len(list)).Msg("enumeration complete")

	if s.store != nil {
		payload, err := json.Marshal(list)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode_failed")
			return nil, fmt.Errorf("tangent: encode accepted candidates: %w", err)
		}
		if err := s.store.Save(ctx, key, payload); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to store enumeration cache")
			span.RecordError(err)
		}
	}
	return s.remember(list), nil
}

func (s *Scanner) enumerate(ctx context.Context) []Candidate {
	_, span := s.tracer.Start(ctx, "tangent.enumerate")
	defer span.End()

	list := []Candidate{}
	for c := range Accepted(s.lattice.Candidates(), s.filter) {
		list = append(list, c)
	}
	return list
}

// Random picks one accepted candidate uniformly.
func (s *Scanner) Random(ctx context.Context, src sampler.Source) (Candidate, error) {
	list, err := s.Accepted(ctx)
	if err != nil {
		return Candidate{}, err
	}
	if len(list) == 0 {
		return Candidate{}, ErrNoAccepted
	}
	return sampler.Pick(src, list), nil
}

type wireCandidate struct {
	Curve     []int64        `json:"curve"`
	X         int64          `json:"x"`
	Y         map[string]any `json:"y"`
	Slope     map[string]any `json:"slope"`
	Intercept map[string]any `json:"intercept"`
	Tangent   map[string]any `json:"tangent"`
}

// MarshalJSON stores the curve by its coefficients and the derived values as
// expression trees.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCandidate{
		Curve:     c.Curve.Coefficients,
		X:         c.X,
		Y:         symbolic.ToMap(c.Point.Y),
		Slope:     symbolic.ToMap(c.Slope),
		Intercept: symbolic.ToMap(c.Intercept),
		Tangent:   symbolic.ToMap(c.Tangent),
	})
}

func (c *Candidate) UnmarshalJSON(data []byte) error {
	var w wireCandidate
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Curve) == 0 {
		return errors.New("tangent: candidate without curve")
	}
	exprs := make([]symbolic.Expr, 4)
	for i, m := range []map[string]any{w.Y, w.Slope, w.Intercept, w.Tangent} {
		e, err := symbolic.FromJSON(m)
		if err != nil {
			return fmt.Errorf("tangent: decode candidate: %w", err)
		}
		exprs[i] = e
	}
	*c = Candidate{
		Curve:     NewCurve(w.Curve...),
		X:         w.X,
		Point:     Point{X: w.X, Y: exprs[0]},
		Slope:     exprs[1],
		Intercept: exprs[2],
		Tangent:   exprs[3],
	}
	return nil
}
