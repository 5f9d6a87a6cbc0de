// Package search builds advanced and quick search queries for the search index.
package search

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/domain/search/query"
	"github.com/opencrvs/crvs-search/internal/logger"
	"github.com/opencrvs/crvs-search/internal/metrics"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

const tracerName = "crvs-search/search"

// ConfigReader is the consumer interface for event configurations (ISP).
type ConfigReader interface {
	Get(ctx context.Context, id string) (event.Config, error)
	List(ctx context.Context) ([]event.Config, error)
}

// AdvancedResult is the outcome of an advanced search request.
type AdvancedResult struct {
	Query *query.QueryType `json:"query"`
	// Filled counts filled parameters; name parts count individually.
	Filled  int          `json:"filled"`
	Allowed bool         `json:"allowed"`
	Errors  []FieldError `json:"errors"`
}

// Service resolves event configurations and builds search queries from them.
type Service struct {
	configs   ConfigReader
	builder   *Builder
	resolver  *searchfield.Resolver
	minFilled int
}

// New creates a search service.
func New(configs ConfigReader, resolver *searchfield.Resolver, builder *Builder) *Service {
	return &Service{configs: configs, resolver: resolver, builder: builder, minFilled: DefaultMinFilledParams}
}

// WithMinFilledParams sets the filled-parameter threshold of the search-allowed signal.
func (s *Service) WithMinFilledParams(n int) *Service {
	if n > 0 {
		s.minFilled = n
	}
	return s
}

// Events lists the configured events.
func (s *Service) Events(ctx context.Context) ([]event.Config, error) {
	events, err := s.configs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Sections resolves the advanced search form of an event.
func (s *Service) Sections(ctx context.Context, eventID string) ([]searchfield.Section, error) {
	ec, err := s.configs.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %q: %w", eventID, err)
	}
	sections, err := s.resolver.Sections(ec)
	if err != nil {
		s.configFault(ctx, eventID, err)
		return nil, fmt.Errorf("resolve sections: %w", err)
	}
	return sections, nil
}

// Advanced builds the AND-composed query for state together with the
// search-allowed signal and advisory validation errors.
func (s *Service) Advanced(ctx context.Context, eventID string, state event.State) (*AdvancedResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "search.Advanced",
		trace.WithAttributes(attribute.String("event", eventID), attribute.Int("params", len(state))))
	defer span.End()

	ec, err := s.configs.Get(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event not found")
		return nil, fmt.Errorf("get event %q: %w", eventID, err)
	}

	resolved, err := s.resolver.ResolveAll(ec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		s.configFault(ctx, eventID, err)
		return nil, fmt.Errorf("resolve search fields: %w", err)
	}
	fields := make([]field.Config, 0, len(resolved))
	for _, r := range resolved {
		fields = append(fields, r.Field)
	}

	now := s.builder.Now()
	errs := Validate(state, fields, now)
	q, rejected, err := s.builder.BuildAdvancedQuery(state, ec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		metrics.SearchQueriesTotal.WithLabelValues("advanced", eventID, "error").Inc()
		s.configFault(ctx, eventID, err)
		return nil, err
	}

	res := &AdvancedResult{
		Query:  q,
		Filled: CountFilledParams(state, fields),
		Errors: mergeFieldErrors(errs, rejected),
	}
	res.Allowed = res.Filled >= s.minFilled && len(res.Errors) == 0

	metrics.SearchQueriesTotal.WithLabelValues("advanced", eventID, "ok").Inc()
	metrics.SearchQueryClauses.WithLabelValues("advanced").Observe(float64(q.ClauseCount()))
	if !res.Allowed {
		metrics.SearchNotAllowedTotal.WithLabelValues(eventID).Inc()
	}
	span.SetAttributes(
		attribute.Int("filled", res.Filled),
		attribute.Bool("allowed", res.Allowed),
		attribute.Int("clauses", q.ClauseCount()),
	)
	return res, nil
}

// mergeFieldErrors appends builder rejections for fields validation did not
// already report. The result is never nil.
func mergeFieldErrors(validation, rejected []FieldError) []FieldError {
	out := make([]FieldError, 0, len(validation)+len(rejected))
	out = append(out, validation...)
	for _, r := range rejected {
		if !slices.ContainsFunc(out, func(e FieldError) bool { return e.FieldID == r.FieldID }) {
			out = append(out, r)
		}
	}
	return out
}

// Quick builds the OR-composed free-text query across every configured event.
func (s *Service) Quick(ctx context.Context, terms []string) (*query.QueryType, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "search.Quick")
	defer span.End()

	events, err := s.configs.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list events failed")
		return nil, fmt.Errorf("list events: %w", err)
	}
	q := BuildQuickSearchQuery(terms, events)

	metrics.SearchQueriesTotal.WithLabelValues("quick", "", "ok").Inc()
	metrics.SearchQueryClauses.WithLabelValues("quick").Observe(float64(q.ClauseCount()))
	span.SetAttributes(attribute.Int("terms", len(terms)), attribute.Int("clauses", q.ClauseCount()))
	return q, nil
}

func (s *Service) configFault(ctx context.Context, eventID string, err error) {
	if !errors.Is(err, domain.ErrInvalidConfig) {
		return
	}
	metrics.ConfigFaultsTotal.WithLabelValues(eventID).Inc()
	logger.FromContext(ctx).Warn("event configuration fault", zap.String("event", eventID), zap.Error(err))
}
