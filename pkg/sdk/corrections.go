package crvs

import (
	"context"
	"fmt"
	"time"
)

// CorrectionService diffs declarations and files correction requests.
type CorrectionService struct {
	svc correctionUseCase
	obs *observer
}

// Diff compares two declarations of an event under its visibility rules.
func (s *CorrectionService) Diff(ctx context.Context, eventID string, previous, current, annotation State) (_ *Diff, err error) {
	start := time.Now()
	defer func() { s.obs.observe("correction_diff", start, err) }()

	res, err := s.svc.Diff(ctx, eventID,
		toDomainState(previous), toDomainState(current), toDomainState(annotation))
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return fromDomainDiff(res), nil
}

// Preview diffs form against the current state of a stored document.
func (s *CorrectionService) Preview(ctx context.Context, docID string, form, annotation State) (_ *Diff, err error) {
	start := time.Now()
	defer func() { s.obs.observe("correction_preview", start, err) }()

	res, err := s.svc.Preview(ctx, docID, toDomainState(form), toDomainState(annotation))
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return fromDomainDiff(res), nil
}

// Request appends a correction request to a stored document and returns it.
func (s *CorrectionService) Request(
	ctx context.Context, docID string, form, annotation State, createdBy string,
) (_ Action, err error) {
	start := time.Now()
	defer func() { s.obs.observe("correction_request", start, err) }()

	a, err := s.svc.Request(ctx, docID, toDomainState(form), toDomainState(annotation), createdBy)
	if err != nil {
		return Action{}, fmt.Errorf("request correction: %w", err)
	}
	return fromDomainAction(a), nil
}
