package correction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/logger"
	"github.com/opencrvs/crvs-search/internal/metrics"
)

const tracerName = "crvs-search/correction"

// Result is a diff plus the annotation collected by the correction flow.
type Result struct {
	Diff
	Annotation event.State `json:"annotation"`
}

// Service runs correction diffs against event configurations and documents.
type Service struct {
	configs ConfigReader
	docs    DocumentStore
	engine  *Engine
	newID   func() string
	now     func() time.Time
}

// New creates a correction service. Document operations need WithDocuments.
func New(configs ConfigReader, engine *Engine) *Service {
	return &Service{configs: configs, engine: engine, newID: uuid.NewString, now: time.Now}
}

// WithDocuments enables document-backed previews and requests.
func (s *Service) WithDocuments(docs DocumentStore) *Service {
	s.docs = docs
	return s
}

// WithIDGenerator overrides action id generation.
func (s *Service) WithIDGenerator(newID func() string) *Service {
	if newID != nil {
		s.newID = newID
	}
	return s
}

// WithClock overrides the action timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Diff compares previous and current declarations of an event. The event
// must configure a correction request flow.
func (s *Service) Diff(
	ctx context.Context, eventID string, previous, current, annotation event.State,
) (*Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "correction.Diff")
	defer span.End()
	span.SetAttributes(attribute.String("event", eventID))

	ec, err := s.configs.Get(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event not found")
		return nil, fmt.Errorf("get event %q: %w", eventID, err)
	}
	ac, err := ec.Action(event.ActionRequestCorrection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing correction configuration")
		logger.FromContext(ctx).Warn("event configuration fault", zap.String("event", eventID), zap.Error(err))
		metrics.ConfigFaultsTotal.WithLabelValues(eventID).Inc()
		return nil, err
	}

	res := &Result{
		Diff:       s.engine.Diff(ec.DeclarationFields(), current, previous),
		Annotation: filterAnnotation(ac.Fields(), annotation),
	}
	metrics.CorrectionChangedFields.WithLabelValues(eventID).Observe(float64(len(res.Payload)))
	span.SetAttributes(
		attribute.Int("changed", len(res.Changed)),
		attribute.Int("hidden", len(res.Hidden)),
		attribute.Int("payload", len(res.Payload)),
	)
	return res, nil
}

// Preview diffs form against the current state of a stored document.
func (s *Service) Preview(ctx context.Context, docID string, form, annotation event.State) (*Result, error) {
	doc, err := s.load(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.Diff(ctx, doc.EventType(), doc.CurrentState(), form, annotation)
}

// Request appends a REQUEST_CORRECTION action carrying the declaration delta
// of form against the document's current state.
func (s *Service) Request(
	ctx context.Context, docID string, form, annotation event.State, createdBy string,
) (event.Action, error) {
	ctx = logger.With(ctx, zap.String("document", docID))
	doc, err := s.load(ctx, docID)
	if err != nil {
		return event.Action{}, err
	}
	if pending, ok := doc.PendingCorrection(); ok {
		return event.Action{}, fmt.Errorf("%w: correction %q is pending", domain.ErrActionConflict, pending.ID)
	}

	res, err := s.Diff(ctx, doc.EventType(), doc.CurrentState(), form, annotation)
	if err != nil {
		return event.Action{}, err
	}
	if len(res.Payload) == 0 {
		return event.Action{}, fmt.Errorf("%w: correction changes nothing", domain.ErrInvalidInput)
	}

	action := event.Action{
		ID:          s.newID(),
		Type:        event.ActionRequestCorrection,
		Status:      event.StatusRequested,
		CreatedAt:   s.now().UTC(),
		CreatedBy:   createdBy,
		Declaration: res.Payload,
		Annotation:  res.Annotation,
	}
	next, err := doc.Append(action)
	if err != nil {
		return event.Action{}, fmt.Errorf("append correction: %w", err)
	}
	if err := s.docs.Save(ctx, next); err != nil {
		metrics.CorrectionRequestsTotal.WithLabelValues(doc.EventType(), "error").Inc()
		logger.FromContext(ctx).Error("save correction request", zap.Error(err))
		return event.Action{}, fmt.Errorf("save document: %w", err)
	}
	metrics.CorrectionRequestsTotal.WithLabelValues(doc.EventType(), "ok").Inc()
	return action, nil
}

func (s *Service) load(ctx context.Context, docID string) (event.Document, error) {
	if s.docs == nil {
		return event.Document{}, fmt.Errorf("%w: no document store configured", domain.ErrNotImplemented)
	}
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return event.Document{}, err
		}
		return event.Document{}, fmt.Errorf("get document %q: %w", docID, err)
	}
	return doc, nil
}

// filterAnnotation keeps the non-empty values of configured annotation fields.
func filterAnnotation(fields []field.Config, annotation event.State) event.State {
	out := event.State{}
	for _, f := range fields {
		if v, ok := annotation[f.ID]; ok && !field.IsEmptyRaw(v) {
			out[f.ID] = v
		}
	}
	return out
}
