package crvs

import (
	"context"
	"fmt"
	"time"
)

// DocumentService manages stored event documents.
type DocumentService struct {
	svc documentUseCase
	obs *observer
}

// Put creates or replaces a document. Reports whether it was created.
func (s *DocumentService) Put(ctx context.Context, doc Document) (_ Document, created bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_put", start, err) }()

	if s.svc == nil {
		return Document{}, false, ErrNoDocumentStore
	}
	d, created, err := s.svc.Put(ctx, doc.ID, doc.EventType, toDomainActions(doc.Actions))
	if err != nil {
		return Document{}, false, fmt.Errorf("put document: %w", err)
	}
	return fromDomainDocument(d), created, nil
}

// Get returns a document with its folded state.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_get", start, err) }()

	if s.svc == nil {
		return Document{}, ErrNoDocumentStore
	}
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromDomainDocument(d), nil
}

// List returns the ids of all stored documents.
func (s *DocumentService) List(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_list", start, err) }()

	if s.svc == nil {
		return nil, ErrNoDocumentStore
	}
	ids, err := s.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return ids, nil
}

// Delete removes a document.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_delete", start, err) }()

	if s.svc == nil {
		return ErrNoDocumentStore
	}
	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Append adds an action to a document's log.
func (s *DocumentService) Append(ctx context.Context, id string, action Action) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("document_append", start, err) }()

	if s.svc == nil {
		return Document{}, ErrNoDocumentStore
	}
	d, err := s.svc.AppendAction(ctx, id, toDomainAction(action))
	if err != nil {
		return Document{}, fmt.Errorf("append action: %w", err)
	}
	return fromDomainDocument(d), nil
}
