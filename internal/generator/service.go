// Package generator assembles exam questions from the sampling, inverse and
// tangent engines.
package generator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/njchilds90/examgen/internal/family"
	"github.com/njchilds90/examgen/internal/inverse"
	"github.com/njchilds90/examgen/internal/observability"
	"github.com/njchilds90/examgen/internal/problem"
	"github.com/njchilds90/examgen/internal/sampler"
	"github.com/njchilds90/examgen/internal/tangent"
	"github.com/njchilds90/examgen/symbolic"
)

var (
	// ErrUnsupportedKind is returned by SimpleInverse for families it does
	// not ask about.
	ErrUnsupportedKind = errors.New("generator: unsupported kind")

	// ErrNoScanner is returned by Tangent when the service has no scanner.
	ErrNoScanner = errors.New("generator: tangent scanner not configured")
)

// InverseKinds are the families SimpleInverse draws from.
var InverseKinds = []family.Kind{family.Exp, family.Hyperbola, family.Log, family.Cubic}

// inverseLevel is the difficulty used for exp, hyperbola and log inverses.
const inverseLevel family.Level = 3

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts bounds every rejection-sampling loop.
func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

// WithScanner enables tangent questions.
func WithScanner(sc *tangent.Scanner) Option {
	return func(s *Service) { s.scanner = sc }
}

// Service generates problems. It is safe for concurrent use when its source
// is.
type Service struct {
	src         sampler.Source
	maxAttempts int
	scanner     *tangent.Scanner
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewService returns a Service drawing from src, or from sampler.Default
// when src is nil.
func NewService(src sampler.Source, logger zerolog.Logger, opts ...Option) *Service {
	if src == nil {
		src = sampler.Default()
	}
	s := &Service{
		src:    src,
		logger: logger.With().Str("component", "generator").Logger(),
		tracer: otel.Tracer("github.com/njchilds90/examgen/internal/generator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) newSampler(kind family.Kind) *sampler.Sampler {
	return sampler.New(s.src,
		sampler.WithMaxAttempts(s.maxAttempts),
		sampler.WithObserver(func(n int) {
			observability.SamplerAttempts().WithLabelValues(string(kind)).Observe(float64(n))
		}),
	)
}

func (s *Service) generate(kind family.Kind, level family.Level) (family.Function, error) {
	f, err := family.Lookup(kind)
	if err != nil {
		return family.Function{}, err
	}
	return family.Generate(f, s.newSampler(kind), level)
}

func (s *Service) fail(kind family.Kind, err error) error {
	observability.GenerationErrors().WithLabelValues(string(kind)).Inc()
	s.logger.Error().Err(err).Str("kind", string(kind)).Msg("generation failed")
	return err
}

func (s *Service) done(p *problem.Problem) *problem.Problem {
	observability.ProblemsGenerated().WithLabelValues(p.Kind()).Inc()
	s.logger.Debug().Str("id", p.ID().String()).Str("kind", p.Kind()).Msg("problem generated")
	return p
}

// Function samples a function of the given family and level and reports its
// equation, domain and range, plus the discriminant for quadratics.
func (s *Service) Function(kind family.Kind, level family.Level) (*problem.Problem, error) {
	fn, err := s.generate(kind, level)
	if err != nil {
		return nil, s.fail(kind, err)
	}
	fields := []problem.Field{
		problem.With(problem.KeyFunctionType, problem.Text(fn.Kind)),
		problem.With(problem.KeyLevel, problem.Int(fn.Level)),
		problem.With(problem.KeyEquation, fn.Equation),
		problem.With(problem.KeyDomain, fn.Domain),
		problem.With(problem.KeyRange, fn.Range),
	}
	if fn.Discriminant != nil {
		fields = append(fields, problem.With(problem.KeyDiscriminant, fn.Discriminant))
	}
	return s.done(problem.New(string(fn.Kind), fields...)), nil
}

// RandomFunction picks a family and level with family.Random and generates
// it.
func (s *Service) RandomFunction(opts family.Options) (*problem.Problem, error) {
	choice, err := family.Random(s.src, opts)
	if err != nil {
		return nil, s.fail("random", err)
	}
	return s.Function(choice.Kind, choice.Level)
}

// SimpleInverse asks for the inverse of an exp, hyperbola, log or cubic
// function; an empty kind picks one of them at random. The inverse's domain
// is the function's range.
func (s *Service) SimpleInverse(ctx context.Context, kind family.Kind) (*problem.Problem, error) {
	if kind == "" {
		kind = sampler.Pick(s.src, InverseKinds)
	}
	_, span := s.tracer.Start(ctx, "generator.simple_inverse")
	defer span.End()
	span.SetAttributes(attribute.String("generator.kind", string(kind)))

	if !slices.Contains(InverseKinds, kind) {
		err := fmt.Errorf("%w: inverse of %s", ErrUnsupportedKind, kind)
		span.RecordError(err)
		return nil, s.fail(kind, err)
	}

	var (
		fn     family.Function
		domain symbolic.Set
		rng    symbolic.Set
		err    error
	)
	if kind == family.Cubic {
		fn, err = s.generate(kind, 1)
		if err == nil {
			domain, rng = cubicHalfLine(s.src, fn.Coefficients)
		}
	} else {
		fn, err = s.generate(kind, inverseLevel)
		domain, rng = fn.Domain, fn.Range
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sample_failed")
		return nil, s.fail(kind, err)
	}

	inv, err := inverse.InverseOn(fn.Equation, domain)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inverse_failed")
		return nil, s.fail(kind, err)
	}

	return s.done(problem.New("simple_inverse",
		problem.With(problem.KeyFunctionType, problem.Text(kind)),
		problem.With(problem.KeyEquation, fn.Equation),
		problem.With(problem.KeyDomain, domain),
		problem.With(problem.KeyRange, rng),
		problem.With(problem.KeyInverse, inv),
		problem.With(problem.KeyInverseDomain, rng),
	)), nil
}

// cubicHalfLine restricts m*x^3 + c to (-oo, 0] or [0, oo) and returns the
// matching range.
func cubicHalfLine(src sampler.Source, c sampler.Coefficients) (symbolic.Set, symbolic.Set) {
	m, k := c[0], symbolic.N(c[1])
	if src.Int64N(2) == 0 {
		if m > 0 {
			return symbolic.AtMost(symbolic.N(0)).Set(), symbolic.AtMost(k).Set()
		}
		return symbolic.AtMost(symbolic.N(0)).Set(), symbolic.AtLeast(k).Set()
	}
	if m > 0 {
		return symbolic.AtLeast(symbolic.N(0)).Set(), symbolic.AtLeast(k).Set()
	}
	return symbolic.AtLeast(symbolic.N(0)).Set(), symbolic.AtMost(k).Set()
}

// Tangent picks one accepted tangent candidate.
func (s *Service) Tangent(ctx context.Context) (*problem.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "generator.tangent")
	defer span.End()

	if s.scanner == nil {
		return nil, s.fail("tangent", ErrNoScanner)
	}
	c, err := s.scanner.Random(ctx, s.src)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan_failed")
		return nil, s.fail("tangent", err)
	}
	span.SetAttributes(attribute.String("generator.curve", c.Curve.String()), attribute.Int64("generator.x", c.X))

	return s.done(problem.New("tangent",
		problem.With(problem.KeyCurve, c.Curve.Expr),
		problem.With(problem.KeyTangent, c.Tangent),
		problem.With(problem.KeyPointOfTangency, c.Point),
		problem.With(problem.KeyTangentSlope, c.Slope),
		problem.With(problem.KeyTangentIntercept, c.Intercept),
	)), nil
}
