package search

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/eventtest"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/domain/search/query"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestBuilder(opts ...Option) *Builder {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewBuilder(searchfield.New(searchfield.DefaultTable()), opts...)
}

func mustJSON(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("unmarshal expected: %v", err)
	}
	return out
}

// --- BuildDataCondition ---

func TestBuildDataCondition_StatusAll(t *testing.T) {
	b := newTestBuilder()
	got, err := b.BuildDataCondition(event.State{event.FieldStatus: "ALL"}, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cond, ok := got[event.FieldStatus]
	if !ok {
		t.Fatal("expected status condition")
	}
	if cond.Type() != query.AnyOf {
		t.Fatalf("expected anyOf, got %s", cond.Type())
	}
	want := []string{"CREATED", "NOTIFIED", "DECLARED", "VALIDATED", "REGISTERED", "CERTIFIED", "REJECTED", "ARCHIVED"}
	if !reflect.DeepEqual(cond.Terms(), want) {
		t.Errorf("terms = %v, want %v", cond.Terms(), want)
	}
}

func TestBuildDataCondition_RegisteredAtLocation(t *testing.T) {
	b := newTestBuilder()
	got, err := b.BuildDataCondition(event.State{event.FieldRegisteredAtLocation: "ABC123"}, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := query.NewExact("ABC123")
	if !reflect.DeepEqual(got[event.FieldRegisteredAtLocation], want) {
		t.Errorf("condition = %+v, want %+v", got[event.FieldRegisteredAtLocation], want)
	}
}

func TestBuildDataCondition_SkipsEmptyValues(t *testing.T) {
	b := newTestBuilder()
	state := event.State{
		eventtest.ChildGender:  "",
		eventtest.ChildName:    nil,
		eventtest.ChildAddress: map[string]any{},
		event.FieldTrackingID:  "",
		eventtest.MotherName:   map[string]any{"firstname": "", "surname": " "},
		event.FieldUpdatedAt:   nil,
	}
	got, err := b.BuildDataCondition(state, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no conditions, got %v", got)
	}
}

func TestBuildDataCondition_FieldPolicies(t *testing.T) {
	utc6 := time.FixedZone("UTC+6", 6*60*60)

	tests := []struct {
		name  string
		opts  []Option
		id    field.ID
		value any
		want  query.Condition
	}{
		{
			name:  "name joins parts and is fuzzy",
			id:    eventtest.ChildName,
			value: map[string]any{"firstname": "Nina", "surname": "Roy"},
			want:  query.NewFuzzy("Nina Roy"),
		},
		{
			name:  "select is exact",
			id:    eventtest.ChildGender,
			value: "female",
			want:  query.NewExact("female"),
		},
		{
			name:  "address becomes one json term",
			id:    eventtest.ChildAddress,
			value: map[string]any{"country": "FAR", "district": "d1"},
			want:  query.NewExact(`{"country":"FAR","district":"d1"}`),
		},
		{
			name:  "single date widened to utc day",
			id:    eventtest.ChildDOB,
			value: "2024-01-15",
			want:  query.NewRange("2024-01-15T00:00:00.000Z", "2024-01-15T23:59:59.999Z"),
		},
		{
			name:  "local date converted to utc boundaries",
			opts:  []Option{WithLocation(utc6)},
			id:    eventtest.ChildDOB,
			value: "2024-01-15",
			want:  query.NewRange("2024-01-14T18:00:00.000Z", "2024-01-15T17:59:59.999Z"),
		},
		{
			name:  "date range object passes through",
			id:    event.FieldRegisteredAt,
			value: map[string]any{"start": "2024-01-01", "end": "2024-01-31"},
			want:  query.NewRange("2024-01-01T00:00:00.000Z", "2024-01-31T23:59:59.999Z"),
		},
		{
			name:  "date range string",
			id:    event.FieldRegisteredAt,
			value: "2024-02-01,2024-02-29",
			want:  query.NewRange("2024-02-01T00:00:00.000Z", "2024-02-29T23:59:59.999Z"),
		},
		{
			name:  "time period resolved from clock",
			id:    event.FieldUpdatedAt,
			value: "last7Days",
			want:  query.NewRange("2024-03-03T00:00:00.000Z", "2024-03-10T23:59:59.999Z"),
		},
		{
			name:  "status is exact",
			id:    event.FieldStatus,
			value: "REGISTERED",
			want:  query.NewExact("REGISTERED"),
		},
		{
			name:  "fan-out field uses its configured match",
			id:    eventtest.AnyID,
			value: "1234567890",
			want:  query.NewExact("1234567890"),
		},
		{
			name:  "numeric-looking tracking id stays a string term",
			id:    event.FieldTrackingID,
			value: "12345",
			want:  query.NewExact("12345"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBuilder(tc.opts...)
			got, err := b.BuildDataCondition(event.State{tc.id: tc.value}, eventtest.Birth())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cond, ok := got[tc.id]
			if !ok {
				t.Fatalf("expected condition for %s, got %v", tc.id, got)
			}
			if !reflect.DeepEqual(mustJSON(t, cond), mustJSON(t, tc.want)) {
				t.Errorf("condition = %s, want %s", toString(t, cond), toString(t, tc.want))
			}
		})
	}
}

func TestBuildDataCondition_UnlistedKeys(t *testing.T) {
	b := newTestBuilder()
	state := event.State{
		eventtest.ApplicantEmail: "nina@example.com",
		"unknown.field":          "x",
	}
	got, err := b.BuildDataCondition(state, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got[eventtest.ApplicantEmail], query.NewExact("nina@example.com")) {
		t.Errorf("expected exact condition for declared but unlisted field, got %v", got)
	}
	if _, ok := got["unknown.field"]; ok {
		t.Error("expected unknown key to be skipped")
	}
}

func TestBuildDataCondition_InvalidValue(t *testing.T) {
	b := newTestBuilder()
	tests := []struct {
		name  string
		id    field.ID
		value any
	}{
		{"name not an object", eventtest.ChildName, "Nina"},
		{"bad date", eventtest.ChildDOB, "15/01/2024"},
		{"unknown period", event.FieldUpdatedAt, "lastCentury"},
		{"address not an object", eventtest.ChildAddress, "Dhaka"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.BuildDataCondition(event.State{tc.id: tc.value}, eventtest.Birth())
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestBuildAdvancedQuery_SkipsInvalidValues(t *testing.T) {
	b := newTestBuilder()
	tests := []struct {
		name  string
		id    field.ID
		value any
	}{
		{"name not an object", eventtest.ChildName, "Nina"},
		{"bad date", eventtest.ChildDOB, "15/01/2024"},
		{"unknown period", event.FieldUpdatedAt, "lastCentury"},
		{"address not an object", eventtest.ChildAddress, "Dhaka"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, rejected, err := b.BuildAdvancedQuery(event.State{tc.id: tc.value, eventtest.ChildGender: "male"}, eventtest.Birth())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rejected) != 1 || rejected[0].FieldID != tc.id {
				t.Fatalf("rejected = %v, want %s", rejected, tc.id)
			}
			got := toString(t, q)
			if strings.Contains(got, string(tc.id)) {
				t.Errorf("rejected field in query: %s", got)
			}
			if !strings.Contains(got, string(eventtest.ChildGender)) {
				t.Errorf("valid field missing from query: %s", got)
			}
		})
	}
}

func TestBuildAdvancedQuery_ConfigFault(t *testing.T) {
	ec := eventtest.Birth()
	ec.AdvancedSearch[1].Fields = append(ec.AdvancedSearch[1].Fields, field.SearchField{FieldID: "child.weight"})

	if _, _, err := newTestBuilder().BuildAdvancedQuery(event.State{}, ec); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildDataCondition_UnresolvableSearchField(t *testing.T) {
	ec := eventtest.Birth()
	ec.AdvancedSearch[1].Fields = append(ec.AdvancedSearch[1].Fields, field.SearchField{FieldID: "child.weight"})

	_, err := newTestBuilder().BuildDataCondition(event.State{}, ec)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	var fnf *domain.FieldNotFoundError
	if !errors.As(err, &fnf) || fnf.FieldID != "child.weight" || fnf.EventID != "birth" {
		t.Errorf("expected FieldNotFoundError naming child.weight in birth, got %v", err)
	}
}

// --- BuildSearchQuery ---

func TestBuildSearchQuery_Composition(t *testing.T) {
	b := newTestBuilder()
	state := event.State{
		event.FieldStatus:     "REGISTERED",
		eventtest.ChildName:   map[string]any{"firstname": "Nina", "surname": "Roy"},
		eventtest.AnyID:       "123",
		eventtest.ChildGender: "female",
	}
	q, err := b.BuildSearchQuery(state, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{
	  "type": "and",
	  "clauses": [
	    {"eventType": "birth", "status": {"type": "exact", "term": "REGISTERED"}},
	    {"data": {
	      "child.name": {"type": "fuzzy", "term": "Nina Roy"},
	      "child.gender": {"type": "exact", "term": "female"}
	    }},
	    {"type": "or", "clauses": [
	      {"data": {"mother.idNumber": {"type": "exact", "term": "123"}}},
	      {"data": {"applicant.idNumber": {"type": "exact", "term": "123"}}}
	    ]}
	  ]
	}`
	if !reflect.DeepEqual(mustJSON(t, q), decodeJSON(t, want)) {
		t.Errorf("query = %s", toString(t, q))
	}
}

func TestBuildSearchQuery_MetadataKeys(t *testing.T) {
	b := newTestBuilder()
	state := event.State{
		event.FieldRegisteredAtLocation: "ABC123",
		event.FieldTrackingID:           "T1",
	}
	q, err := b.BuildSearchQuery(state, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type": "and", "clauses": [{
	  "eventType": "birth",
	  "legalStatuses.REGISTERED.createdAtLocation": {"type": "exact", "term": "ABC123"},
	  "trackingId": {"type": "exact", "term": "T1"}
	}]}`
	if !reflect.DeepEqual(mustJSON(t, q), decodeJSON(t, want)) {
		t.Errorf("query = %s", toString(t, q))
	}
}

func TestBuildSearchQuery_EmptyStateKeepsEventClause(t *testing.T) {
	q, err := newTestBuilder().BuildSearchQuery(event.State{eventtest.ChildGender: ""}, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Type != query.And || len(q.Clauses) != 1 {
		t.Fatalf("expected single and clause, got %s", toString(t, q))
	}
	want := `{"type":"and","clauses":[{"eventType":"birth"}]}`
	if toString(t, q) != want {
		t.Errorf("query = %s, want %s", toString(t, q), want)
	}
}

func TestBuildSearchQuery_ByteStable(t *testing.T) {
	b := newTestBuilder()
	state := event.State{
		eventtest.ChildGender:         "male",
		eventtest.ChildDOB:            "2020-05-01",
		event.FieldStatus:             "ALL",
		eventtest.ApplicantName:       map[string]any{"firstname": "Ana"},
		event.FieldUpdatedAt:          "last30Days",
		eventtest.ApplicantEmail:      "a@b.co",
		eventtest.AnyID:               "42",
		eventtest.ChildAddress:        map[string]any{"country": "FAR"},
		event.FieldRegisteredAt:       "2021-01-01,2021-12-31",
		event.FieldTrackingID:         "ABCDEF",
		eventtest.MotherName:          map[string]any{"surname": "Roy"},
		eventtest.ApplicantPhone:      "0123456789",
		event.FieldRegistrationNumber: "R-1",
	}

	first, err := b.BuildSearchQuery(state, eventtest.Birth())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := toString(t, first)
	for range 20 {
		q, err := b.BuildSearchQuery(state.Clone(), eventtest.Birth())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := toString(t, q); got != want {
			t.Fatalf("query not stable:\n%s\n%s", got, want)
		}
	}
}

func TestBuildSearchQuery_DataClauseBeforeFanOut(t *testing.T) {
	ec := eventtest.Birth()
	// move the fan-out field ahead of the name field
	ec.AdvancedSearch[2].Fields[0], ec.AdvancedSearch[2].Fields[1] = ec.AdvancedSearch[2].Fields[1], ec.AdvancedSearch[2].Fields[0]

	q, err := newTestBuilder().BuildSearchQuery(event.State{
		eventtest.AnyID:         "7",
		eventtest.ApplicantName: map[string]any{"firstname": "Ana"},
	}, ec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %s", toString(t, q))
	}
	if _, ok := q.Clauses[1].(*query.QueryType); !ok {
		t.Errorf("expected fan-out or node second, got %s", toString(t, q))
	}
	if _, ok := q.Clauses[2].(query.Clause); !ok {
		t.Errorf("expected data clause last, got %s", toString(t, q))
	}
}

func toString(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
