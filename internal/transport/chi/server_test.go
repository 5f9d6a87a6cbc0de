package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/eventtest"
	"github.com/opencrvs/crvs-search/internal/repository/eventconfig"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	documentuc "github.com/opencrvs/crvs-search/internal/usecase/document"
	healthuc "github.com/opencrvs/crvs-search/internal/usecase/health"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// --- Fakes ---

type memDocs struct {
	docs   map[string]event.Document
	listFn func(ctx context.Context) ([]string, error)
}

func newMemDocs() *memDocs { return &memDocs{docs: map[string]event.Document{}} }

func (m *memDocs) Upsert(_ context.Context, doc event.Document) (bool, error) {
	_, exists := m.docs[doc.ID()]
	m.docs[doc.ID()] = doc
	return !exists, nil
}

func (m *memDocs) Save(_ context.Context, doc event.Document) error {
	m.docs[doc.ID()] = doc
	return nil
}

func (m *memDocs) Get(_ context.Context, id string) (event.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return event.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *memDocs) List(ctx context.Context) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memDocs) Delete(_ context.Context, id string) error {
	if _, ok := m.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}

func newTestServer(t *testing.T, docs *memDocs) http.Handler {
	t.Helper()
	configs, err := eventconfig.New(eventtest.Birth(), eventtest.Death())
	if err != nil {
		t.Fatalf("eventconfig.New: %v", err)
	}
	clock := func() time.Time { return fixedNow }

	resolver := searchfield.New(searchfield.DefaultTable())
	builder := searchuc.NewBuilder(resolver, searchuc.WithClock(clock), searchuc.WithLocation(time.UTC))
	searchSvc := searchuc.New(configs, resolver, builder)
	corrSvc := correctionuc.New(configs, correctionuc.NewEngine(clock)).WithClock(clock)

	var docSvc *documentuc.Service
	if docs != nil {
		n := 0
		docSvc = documentuc.New(docs, configs).
			WithClock(clock).
			WithIDGenerator(func() string { n++; return fmt.Sprintf("act-%d", n) })
		corrSvc = corrSvc.WithDocuments(docs).WithIDGenerator(func() string { return "req-1" })
	}

	srv := NewServer(searchSvc, corrSvc, docSvc, healthuc.New(nil, configs), zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

// --- Health / events ---

func TestHealthCheck(t *testing.T) {
	rr := do(t, newTestServer(t, nil), "GET", "/health", nil)
	expectStatus(t, rr, http.StatusOK)

	var resp HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" || resp.Checks["events"] != "ok" {
		t.Errorf("unexpected health %+v", resp)
	}
	if _, ok := resp.Checks["database"]; ok {
		t.Error("database check must be omitted without a store")
	}
}

func TestListEvents(t *testing.T) {
	rr := do(t, newTestServer(t, nil), "GET", "/events", nil)
	expectStatus(t, rr, http.StatusOK)

	var resp listEventsResponse
	decode(t, rr, &resp)
	if len(resp.Events) != 2 || resp.Events[0].ID != "birth" || resp.Events[1].ID != "death" {
		t.Errorf("unexpected events %+v", resp.Events)
	}
}

func TestSearchFields(t *testing.T) {
	h := newTestServer(t, nil)

	rr := do(t, h, "GET", "/events/birth/search-fields", nil)
	expectStatus(t, rr, http.StatusOK)
	var resp searchFieldsResponse
	decode(t, rr, &resp)
	if resp.Event != "birth" || len(resp.Sections) != 3 || resp.Sections[1].ID != "child" {
		t.Errorf("unexpected sections %+v", resp)
	}

	rr = do(t, h, "GET", "/events/marriage/search-fields", nil)
	expectStatus(t, rr, http.StatusNotFound)
	var errResp ErrorResponse
	decode(t, rr, &errResp)
	if errResp.Code != CodeEventNotFound {
		t.Errorf("code = %s, want %s", errResp.Code, CodeEventNotFound)
	}
}

// --- Search ---

func TestAdvancedSearch_PostAndGetAgree(t *testing.T) {
	h := newTestServer(t, nil)
	state := map[string]any{"child.gender": "female", "event.status": "REGISTERED"}

	post := do(t, h, "POST", "/events/birth/search/advanced", state)
	expectStatus(t, post, http.StatusOK)

	var res struct {
		Query struct {
			Type    string            `json:"type"`
			Clauses []json.RawMessage `json:"clauses"`
		} `json:"query"`
		Filled  int  `json:"filled"`
		Allowed bool `json:"allowed"`
	}
	decode(t, post, &res)
	if res.Query.Type != "and" || string(res.Query.Clauses[0]) != `{"eventType":"birth"}` {
		t.Errorf("unexpected query %+v", res.Query)
	}
	if res.Filled != 2 || !res.Allowed {
		t.Errorf("filled=%d allowed=%v", res.Filled, res.Allowed)
	}

	get := do(t, h, "GET", "/events/birth/search/advanced?child.gender=female&event.status=REGISTERED", nil)
	expectStatus(t, get, http.StatusOK)
	if get.Body.String() != post.Body.String() {
		t.Errorf("GET and POST differ:\n%s\n%s", get.Body.String(), post.Body.String())
	}
}

func TestAdvancedSearch_Errors(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantErr  ErrorCode
	}{
		{"malformed body", "/events/birth/search/advanced", "{", http.StatusBadRequest, CodeBadRequest},
		{"unknown event", "/events/marriage/search/advanced", map[string]any{}, http.StatusNotFound, CodeEventNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, "POST", tc.path, tc.body)
			expectStatus(t, rr, tc.wantCode)
			var errResp ErrorResponse
			decode(t, rr, &errResp)
			if errResp.Code != tc.wantErr {
				t.Errorf("code = %s, want %s", errResp.Code, tc.wantErr)
			}
		})
	}
}

func TestAdvancedSearch_InvalidValueIsAdvisory(t *testing.T) {
	h := newTestServer(t, nil)
	rr := do(t, h, "POST", "/events/birth/search/advanced",
		map[string]any{"child.dob": "not-a-date", "event.status": "ALL"})
	expectStatus(t, rr, http.StatusOK)

	var res struct {
		Query   json.RawMessage `json:"query"`
		Allowed bool            `json:"allowed"`
		Errors  []struct {
			FieldID string `json:"fieldId"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	decode(t, rr, &res)
	if res.Allowed {
		t.Error("expected allowed=false")
	}
	if len(res.Errors) != 1 || res.Errors[0].FieldID != "child.dob" || res.Errors[0].Message != searchuc.MsgInvalidDate {
		t.Errorf("errors = %+v", res.Errors)
	}
	if bytes.Contains(res.Query, []byte("child.dob")) {
		t.Errorf("invalid field in query: %s", res.Query)
	}
}

func TestQuickSearch(t *testing.T) {
	h := newTestServer(t, nil)
	for _, path := range []string{"/search/quick?terms=Nina&terms=Roy", "/search/quick?a=Nina&b=Roy"} {
		t.Run(path, func(t *testing.T) {
			rr := do(t, h, "GET", path, nil)
			expectStatus(t, rr, http.StatusOK)
			var q struct {
				Type    string            `json:"type"`
				Clauses []json.RawMessage `json:"clauses"`
			}
			decode(t, rr, &q)
			if q.Type != "or" || len(q.Clauses) == 0 {
				t.Errorf("unexpected quick query %s", rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), `"trackingId"`) {
				t.Errorf("expected trackingId clause, got %s", rr.Body.String())
			}
		})
	}
}

func TestQuickSearch_RepeatedTerms(t *testing.T) {
	h := newTestServer(t, nil)
	count := func(path string) int {
		rr := do(t, h, "GET", path, nil)
		expectStatus(t, rr, http.StatusOK)
		var q struct {
			Clauses []json.RawMessage `json:"clauses"`
		}
		decode(t, rr, &q)
		return len(q.Clauses)
	}
	if repeated, single := count("/search/quick?terms=Nina&terms=Nina"), count("/search/quick?terms=Nina"); repeated != single {
		t.Errorf("repeated terms gave %d clauses, want %d", repeated, single)
	}
}

func TestSearchParams_RoundTrip(t *testing.T) {
	h := newTestServer(t, nil)

	rr := do(t, h, "POST", "/search-params/serialize", map[string]any{
		"child.name": map[string]any{"firstname": "Nina"},
		"status":     "ALL",
	})
	expectStatus(t, rr, http.StatusOK)
	var enc serializeResponse
	decode(t, rr, &enc)
	if enc.Query == "" || !strings.HasPrefix(enc.Query, "child.name=") {
		t.Fatalf("unexpected query %q", enc.Query)
	}

	rr = do(t, h, "POST", "/search-params/deserialize", enc)
	expectStatus(t, rr, http.StatusOK)
	var state map[string]any
	decode(t, rr, &state)
	name, ok := state["child.name"].(map[string]any)
	if !ok || name["firstname"] != "Nina" || state["status"] != "ALL" {
		t.Errorf("unexpected state %v", state)
	}
}

// --- Corrections ---

func TestCorrectionDiff(t *testing.T) {
	rr := do(t, newTestServer(t, nil), "POST", "/events/birth/corrections/diff", map[string]any{
		"previous":   map[string]any{"child.gender": "female"},
		"current":    map[string]any{"child.gender": "male"},
		"annotation": map[string]any{"correction.reason": "typo"},
	})
	expectStatus(t, rr, http.StatusOK)

	var res correctionuc.Result
	decode(t, rr, &res)
	if len(res.Changed) != 1 || res.Payload["child.gender"] != "male" {
		t.Errorf("unexpected diff %+v", res)
	}
	if res.Annotation["correction.reason"] != "typo" {
		t.Errorf("annotation = %v", res.Annotation)
	}
}

// --- Documents ---

func TestDocuments_NotConfigured(t *testing.T) {
	h := newTestServer(t, nil)
	for _, tc := range []struct{ method, path string }{
		{"GET", "/documents"},
		{"GET", "/documents/d1"},
		{"PUT", "/documents/d1"},
		{"POST", "/documents/d1/corrections/preview"},
	} {
		rr := do(t, h, tc.method, tc.path, nil)
		if rr.Code != http.StatusNotImplemented {
			t.Errorf("%s %s: got %d, want 501", tc.method, tc.path, rr.Code)
		}
	}
}

func TestDocuments_Lifecycle(t *testing.T) {
	docs := newMemDocs()
	h := newTestServer(t, docs)

	put := map[string]any{
		"eventType": "birth",
		"actions": []map[string]any{
			{"type": "CREATE"},
			{"type": "DECLARE", "declaration": map[string]any{"child.gender": "female"}},
		},
	}
	rr := do(t, h, "PUT", "/documents/d1", put)
	expectStatus(t, rr, http.StatusCreated)
	var doc DocumentResponse
	decode(t, rr, &doc)
	if doc.Status != event.Declared || doc.State["child.gender"] != "female" {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.Actions[0].ID != "act-1" || !doc.UpdatedAt.Equal(fixedNow) {
		t.Errorf("actions must be stamped, got %+v", doc.Actions)
	}

	rr = do(t, h, "PUT", "/documents/d1", put)
	expectStatus(t, rr, http.StatusOK)

	rr = do(t, h, "POST", "/documents/d1/actions", map[string]any{"type": "REGISTER"})
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &doc)
	if doc.Status != event.Registered {
		t.Errorf("status = %s, want REGISTERED", doc.Status)
	}

	form := map[string]any{"form": map[string]any{"child.gender": "male"}}
	rr = do(t, h, "POST", "/documents/d1/corrections/preview", form)
	expectStatus(t, rr, http.StatusOK)
	var preview correctionuc.Result
	decode(t, rr, &preview)
	if preview.Payload["child.gender"] != "male" {
		t.Errorf("preview payload = %v", preview.Payload)
	}

	rr = do(t, h, "POST", "/documents/d1/corrections", form)
	expectStatus(t, rr, http.StatusCreated)
	rr = do(t, h, "GET", "/documents/d1", nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &doc)
	if doc.PendingCorrection != "req-1" || doc.State["child.gender"] != "female" {
		t.Errorf("pending correction must not change state, got %+v", doc)
	}

	rr = do(t, h, "POST", "/documents/d1/corrections", form)
	expectStatus(t, rr, http.StatusConflict)

	rr = do(t, h, "GET", "/documents", nil)
	expectStatus(t, rr, http.StatusOK)
	var list listDocumentsResponse
	decode(t, rr, &list)
	if len(list.IDs) != 1 || list.IDs[0] != "d1" {
		t.Errorf("ids = %v", list.IDs)
	}

	rr = do(t, h, "DELETE", "/documents/d1", nil)
	expectStatus(t, rr, http.StatusNoContent)
	rr = do(t, h, "GET", "/documents/d1", nil)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestPutDocument_Errors(t *testing.T) {
	h := newTestServer(t, newMemDocs())
	tests := []struct {
		name string
		body any
		want int
	}{
		{"malformed", "[", http.StatusBadRequest},
		{"missing event type", map[string]any{"actions": []any{}}, http.StatusBadRequest},
		{"unknown event", map[string]any{"eventType": "marriage"}, http.StatusNotFound},
		{"unknown action", map[string]any{"eventType": "birth", "actions": []map[string]any{{"type": "TELEPORT"}}}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, do(t, h, "PUT", "/documents/d1", tc.body), tc.want)
		})
	}
}

func TestListDocuments_StoreError(t *testing.T) {
	docs := newMemDocs()
	docs.listFn = func(context.Context) ([]string, error) { return nil, errors.New("connection reset") }

	rr := do(t, newTestServer(t, docs), "GET", "/documents", nil)
	expectStatus(t, rr, http.StatusInternalServerError)
	if strings.Contains(rr.Body.String(), "connection reset") {
		t.Errorf("internal details leaked: %s", rr.Body.String())
	}
}

// --- Error mapping ---

func TestHandleDomainError(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, zap.NewNop())
	tests := []struct {
		err      error
		wantCode int
		wantErr  ErrorCode
	}{
		{fmt.Errorf("get: %w", domain.ErrEventNotFound), http.StatusNotFound, CodeEventNotFound},
		{domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound},
		{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
		{fmt.Errorf("%w: bad date", domain.ErrInvalidInput), http.StatusBadRequest, CodeValidationFailed},
		{domain.ErrActionConflict, http.StatusConflict, CodeActionConflict},
		{domain.NewFieldNotFound("x", "birth", ""), http.StatusInternalServerError, CodeConfigurationError},
		{domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.handleDomainError(rr, tc.err)
			expectStatus(t, rr, tc.wantCode)
			var resp ErrorResponse
			decode(t, rr, &resp)
			if resp.Code != tc.wantErr {
				t.Errorf("code = %s, want %s", resp.Code, tc.wantErr)
			}
		})
	}
}

func TestHandleDomainError_SafeMessages(t *testing.T) {
	s := NewServer(nil, nil, nil, nil, zap.NewNop())

	rr := httptest.NewRecorder()
	s.handleDomainError(rr, domain.NewFieldNotFound("secret.field", "birth", "page p1"))
	var resp ErrorResponse
	decode(t, rr, &resp)
	if resp.Message != domain.ErrInvalidConfig.Error() {
		t.Errorf("configuration details must not leak, got %q", resp.Message)
	}

	rr = httptest.NewRecorder()
	s.handleDomainError(rr, fmt.Errorf("%w: child.dob: bad date", domain.ErrInvalidInput))
	decode(t, rr, &resp)
	if !strings.Contains(resp.Message, "child.dob") {
		t.Errorf("input errors keep their detail, got %q", resp.Message)
	}
}
