package crvs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

// State maps field ids ("child.dob", "event.status") to form values.
type State map[string]any

// EventInfo describes a loaded event configuration.
type EventInfo struct {
	ID    string
	Label string
}

// FieldInfo describes one field of an advanced search section.
type FieldInfo struct {
	ID       string
	Type     string
	Label    string
	Required bool
	Options  []string
}

// Section is one section of an advanced search form.
type Section struct {
	ID     string
	Title  string
	Fields []FieldInfo
}

// FieldError is a validation failure of a search field.
type FieldError struct {
	FieldID string
	Message string
}

// AdvancedResult is the outcome of an advanced search.
type AdvancedResult struct {
	// Query is the JSON search query, ready to send to the index.
	Query   json.RawMessage
	Filled  int
	Allowed bool
	Errors  []FieldError
}

// Change is one changed field of a correction diff.
type Change struct {
	FieldID  string
	Label    string
	Type     string
	Previous any
	Current  any
}

// Diff is a correction comparison.
type Diff struct {
	Changed []Change
	// Hidden lists fields that were visible before and are hidden now.
	Hidden     []string
	Payload    State
	Annotation State
}

// Action is one entry of a document's action log.
type Action struct {
	ID          string
	Type        string
	Status      string
	CreatedAt   time.Time
	CreatedBy   string
	Declaration State
	Annotation  State
	// RequestID links an approval or rejection to its correction request.
	RequestID string
}

// Document is an event document with its folded declaration.
type Document struct {
	ID        string
	EventType string
	Status    string
	State     State
	Actions   []Action
	// PendingCorrection is the id of an unresolved correction request.
	PendingCorrection string
}

// --- Converters: SDK → domain ---

func toDomainState(s State) event.State {
	if s == nil {
		return nil
	}
	out := make(event.State, len(s))
	for k, v := range s {
		out[field.ID(k)] = v
	}
	return out
}

func toDomainAction(a Action) event.Action {
	return event.Action{
		ID:          a.ID,
		Type:        event.ActionType(a.Type),
		Status:      event.ActionStatus(a.Status),
		CreatedAt:   a.CreatedAt,
		CreatedBy:   a.CreatedBy,
		Declaration: toDomainState(a.Declaration),
		Annotation:  toDomainState(a.Annotation),
		RequestID:   a.RequestID,
	}
}

func toDomainActions(actions []Action) []event.Action {
	out := make([]event.Action, len(actions))
	for i, a := range actions {
		out[i] = toDomainAction(a)
	}
	return out
}

// --- Converters: domain → SDK ---

func fromDomainState(s event.State) State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for k, v := range s {
		out[string(k)] = v
	}
	return out
}

func fromDomainAction(a event.Action) Action {
	return Action{
		ID:          a.ID,
		Type:        string(a.Type),
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		CreatedBy:   a.CreatedBy,
		Declaration: fromDomainState(a.Declaration),
		Annotation:  fromDomainState(a.Annotation),
		RequestID:   a.RequestID,
	}
}

func fromDomainDocument(d event.Document) Document {
	actions := d.Actions()
	doc := Document{
		ID:        d.ID(),
		EventType: d.EventType(),
		Status:    string(d.Status()),
		State:     fromDomainState(d.CurrentState()),
		Actions:   make([]Action, len(actions)),
	}
	for i, a := range actions {
		doc.Actions[i] = fromDomainAction(a)
	}
	if pending, ok := d.PendingCorrection(); ok {
		doc.PendingCorrection = pending.ID
	}
	return doc
}

func fromDomainAdvanced(r *searchuc.AdvancedResult) (*AdvancedResult, error) {
	raw, err := json.Marshal(r.Query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	out := &AdvancedResult{
		Query:   raw,
		Filled:  r.Filled,
		Allowed: r.Allowed,
	}
	for _, fe := range r.Errors {
		out.Errors = append(out.Errors, FieldError{FieldID: string(fe.FieldID), Message: fe.Message})
	}
	return out, nil
}

func fromDomainDiff(r *correctionuc.Result) *Diff {
	out := &Diff{
		Changed:    make([]Change, len(r.Changed)),
		Payload:    fromDomainState(r.Payload),
		Annotation: fromDomainState(r.Annotation),
	}
	for i, c := range r.Changed {
		out.Changed[i] = Change{
			FieldID:  string(c.FieldID),
			Label:    c.Label,
			Type:     string(c.Type),
			Previous: c.Previous,
			Current:  c.Current,
		}
	}
	for _, id := range r.Hidden {
		out.Hidden = append(out.Hidden, string(id))
	}
	return out
}

func fromDomainSections(sections []searchfield.Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		out[i] = Section{ID: s.ID, Title: s.Title, Fields: make([]FieldInfo, len(s.Fields))}
		for j, f := range s.Fields {
			out[i].Fields[j] = fromDomainField(f)
		}
	}
	return out
}

func fromDomainField(f field.Config) FieldInfo {
	info := FieldInfo{
		ID:       string(f.ID),
		Type:     string(f.Type),
		Label:    f.Label,
		Required: f.Required,
	}
	for _, o := range f.Options {
		info.Options = append(info.Options, o.Value)
	}
	return info
}
