package event

import (
	"fmt"

	"github.com/opencrvs/crvs-search/internal/domain"
)

// Status is the lifecycle status derived from an event's actions.
type Status string

// Status constants, in lifecycle order.
const (
	Created    Status = "CREATED"
	Notified   Status = "NOTIFIED"
	Declared   Status = "DECLARED"
	Validated  Status = "VALIDATED"
	Registered Status = "REGISTERED"
	Certified  Status = "CERTIFIED"
	Rejected   Status = "REJECTED"
	Archived   Status = "ARCHIVED"
)

// StatusAll is the advanced-search sentinel that matches every status.
const StatusAll = "ALL"

// Statuses returns the closed set of statuses in lifecycle order.
func Statuses() []Status {
	return []Status{Created, Notified, Declared, Validated, Registered, Certified, Rejected, Archived}
}

// Document is an event aggregate: its type and ordered action history.
type Document struct {
	id        string
	eventType string
	actions   []Action
}

// NewDocument validates and creates a document.
func NewDocument(id, eventType string, actions []Action) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if eventType == "" {
		return Document{}, fmt.Errorf("%w: event type is required", domain.ErrInvalidInput)
	}
	d := Document{id: id, eventType: eventType}
	for _, a := range actions {
		next, err := d.Append(a)
		if err != nil {
			return Document{}, err
		}
		d = next
	}
	return d, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, eventType string, actions []Action) Document {
	return Document{id: id, eventType: eventType, actions: actions}
}

// ID returns the document id.
func (d Document) ID() string { return d.id }

// EventType returns the event configuration id.
func (d Document) EventType() string { return d.eventType }

// Actions returns a copy of the action history.
func (d Document) Actions() []Action {
	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

// Append returns a new document with the action added at the end.
// Action ids are unique. An approval or rejection must reference a
// correction request that has not been resolved yet.
func (d Document) Append(a Action) (Document, error) {
	if a.ID == "" {
		return Document{}, fmt.Errorf("%w: action id is required", domain.ErrInvalidInput)
	}
	if !a.Type.IsValid() {
		return Document{}, fmt.Errorf("%w: unknown action type %q", domain.ErrInvalidInput, a.Type)
	}
	for _, existing := range d.actions {
		if existing.ID == a.ID {
			return Document{}, fmt.Errorf("%w: action %q already recorded", domain.ErrActionConflict, a.ID)
		}
	}
	if a.Type.resolvesCorrection() {
		req, ok := d.find(a.RequestID)
		if !ok || req.Type != ActionRequestCorrection {
			return Document{}, fmt.Errorf("%w: %s references unknown correction request %q",
				domain.ErrInvalidInput, a.Type, a.RequestID)
		}
		if d.resolved(a.RequestID) {
			return Document{}, fmt.Errorf("%w: correction request %q is already resolved",
				domain.ErrActionConflict, a.RequestID)
		}
	}
	actions := make([]Action, len(d.actions), len(d.actions)+1)
	copy(actions, d.actions)
	return Document{id: d.id, eventType: d.eventType, actions: append(actions, a)}, nil
}

func (t ActionType) resolvesCorrection() bool {
	return t == ActionApproveCorrection || t == ActionRejectCorrection
}

// resolved reports whether an approval or rejection already names requestID.
func (d Document) resolved(requestID string) bool {
	for _, a := range d.actions {
		if a.Type.resolvesCorrection() && a.RequestID == requestID {
			return true
		}
	}
	return false
}

func (d Document) find(id string) (Action, bool) {
	for _, a := range d.actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// CurrentState folds every accepted action in order.
func (d Document) CurrentState() State {
	return d.fold(len(d.actions))
}

// StateBefore folds the accepted actions preceding the given action.
func (d Document) StateBefore(actionID string) (State, error) {
	for i, a := range d.actions {
		if a.ID == actionID {
			return d.fold(i), nil
		}
	}
	return nil, fmt.Errorf("%w: action %q", domain.ErrNotFound, actionID)
}

// fold applies the declaration deltas of the first n actions.
// A correction request takes effect only when its first resolution, folded
// in order, is an approval. Hydrated logs are not validated, so approvals of
// anything else are ignored here too.
func (d Document) fold(n int) State {
	state := State{}
	settled := make(map[string]bool)
	for _, a := range d.actions[:n] {
		if a.Type.resolvesCorrection() {
			first := !settled[a.RequestID]
			settled[a.RequestID] = true
			if !first || a.Type != ActionApproveCorrection || !a.IsAccepted() {
				continue
			}
			if req, ok := d.find(a.RequestID); ok && req.Type == ActionRequestCorrection {
				merge(state, req.Declaration)
			}
			continue
		}
		if a.IsAccepted() && a.Type != ActionRequestCorrection {
			merge(state, a.Declaration)
		}
	}
	return state
}

func merge(dst, delta State) {
	for k, v := range delta {
		dst[k] = v
	}
}

// Status derives the lifecycle status from the last status-bearing accepted action.
func (d Document) Status() Status {
	status := Created
	for _, a := range d.actions {
		if !a.IsAccepted() {
			continue
		}
		switch a.Type {
		case ActionCreate:
			status = Created
		case ActionNotify:
			status = Notified
		case ActionDeclare:
			status = Declared
		case ActionValidate:
			status = Validated
		case ActionRegister:
			status = Registered
		case ActionPrintCertificate:
			status = Certified
		case ActionReject:
			status = Rejected
		case ActionArchive:
			status = Archived
		case ActionRequestCorrection, ActionApproveCorrection, ActionRejectCorrection:
			// corrections keep the current status
		}
	}
	return status
}

// PendingCorrection returns the latest correction request without an approval or rejection.
func (d Document) PendingCorrection() (Action, bool) {
	resolved := make(map[string]bool)
	for _, a := range d.actions {
		if a.Type == ActionApproveCorrection || a.Type == ActionRejectCorrection {
			resolved[a.RequestID] = true
		}
	}
	for i := len(d.actions) - 1; i >= 0; i-- {
		a := d.actions[i]
		if a.Type == ActionRequestCorrection && !resolved[a.ID] {
			return a, true
		}
	}
	return Action{}, false
}
