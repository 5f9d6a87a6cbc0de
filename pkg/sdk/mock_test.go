package crvs

import (
	"context"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/search/query"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	healthuc "github.com/opencrvs/crvs-search/internal/usecase/health"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	eventsFn   func(ctx context.Context) ([]event.Config, error)
	sectionsFn func(ctx context.Context, eventID string) ([]searchfield.Section, error)
	advancedFn func(ctx context.Context, eventID string, state event.State) (*searchuc.AdvancedResult, error)
	quickFn    func(ctx context.Context, terms []string) (*query.QueryType, error)
}

func (m *mockSearchUC) Events(ctx context.Context) ([]event.Config, error) {
	return m.eventsFn(ctx)
}

func (m *mockSearchUC) Sections(ctx context.Context, eventID string) ([]searchfield.Section, error) {
	return m.sectionsFn(ctx, eventID)
}

func (m *mockSearchUC) Advanced(
	ctx context.Context, eventID string, state event.State,
) (*searchuc.AdvancedResult, error) {
	return m.advancedFn(ctx, eventID, state)
}

func (m *mockSearchUC) Quick(ctx context.Context, terms []string) (*query.QueryType, error) {
	return m.quickFn(ctx, terms)
}

// --- correctionUseCase mock ---

type mockCorrectionUC struct {
	diffFn    func(ctx context.Context, eventID string, previous, current, annotation event.State) (*correctionuc.Result, error)
	previewFn func(ctx context.Context, docID string, form, annotation event.State) (*correctionuc.Result, error)
	requestFn func(ctx context.Context, docID string, form, annotation event.State, createdBy string) (event.Action, error)
}

func (m *mockCorrectionUC) Diff(
	ctx context.Context, eventID string, previous, current, annotation event.State,
) (*correctionuc.Result, error) {
	return m.diffFn(ctx, eventID, previous, current, annotation)
}

func (m *mockCorrectionUC) Preview(
	ctx context.Context, docID string, form, annotation event.State,
) (*correctionuc.Result, error) {
	return m.previewFn(ctx, docID, form, annotation)
}

func (m *mockCorrectionUC) Request(
	ctx context.Context, docID string, form, annotation event.State, createdBy string,
) (event.Action, error) {
	return m.requestFn(ctx, docID, form, annotation, createdBy)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	putFn    func(ctx context.Context, id, eventType string, actions []event.Action) (event.Document, bool, error)
	getFn    func(ctx context.Context, id string) (event.Document, error)
	listFn   func(ctx context.Context) ([]string, error)
	deleteFn func(ctx context.Context, id string) error
	appendFn func(ctx context.Context, docID string, action event.Action) (event.Document, error)
}

func (m *mockDocumentUC) Put(
	ctx context.Context, id, eventType string, actions []event.Action,
) (event.Document, bool, error) {
	return m.putFn(ctx, id, eventType, actions)
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (event.Document, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) List(ctx context.Context) ([]string, error) {
	return m.listFn(ctx)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentUC) AppendAction(ctx context.Context, docID string, action event.Action) (event.Document, error) {
	return m.appendFn(ctx, docID, action)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}
