package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// Service handles event document storage and action appends.
type Service struct {
	repo    Repository
	configs ConfigReader
	newID   func() string
	now     func() time.Time
}

// New creates a document service.
func New(repo Repository, configs ConfigReader) *Service {
	return &Service{repo: repo, configs: configs, newID: uuid.NewString, now: time.Now}
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

// Put validates and stores a whole document. Returns true if it was created.
func (s *Service) Put(ctx context.Context, id, eventType string, actions []event.Action) (event.Document, bool, error) {
	if _, err := s.configs.Get(ctx, eventType); err != nil {
		return event.Document{}, false, fmt.Errorf("get event %q: %w", eventType, err)
	}
	for i := range actions {
		s.stamp(&actions[i])
	}
	doc, err := event.NewDocument(id, eventType, actions)
	if err != nil {
		return event.Document{}, false, err
	}
	created, err := s.repo.Upsert(ctx, doc)
	if err != nil {
		return event.Document{}, false, fmt.Errorf("upsert document: %w", err)
	}
	return doc, created, nil
}

// Get returns a document by id.
func (s *Service) Get(ctx context.Context, id string) (event.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return event.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns the ids of stored documents.
func (s *Service) List(ctx context.Context) ([]string, error) {
	ids, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return ids, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// AppendAction adds an action to the end of a document's history. Missing
// ids and timestamps are generated.
func (s *Service) AppendAction(ctx context.Context, docID string, action event.Action) (event.Document, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return event.Document{}, err
	}
	s.stamp(&action)
	next, err := doc.Append(action)
	if err != nil {
		return event.Document{}, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return event.Document{}, fmt.Errorf("save document: %w", err)
	}
	return next, nil
}

func (s *Service) stamp(a *event.Action) {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
}
