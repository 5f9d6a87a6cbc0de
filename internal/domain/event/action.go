package event

import "time"

// ActionType is the kind of state transition an action records.
type ActionType string

// Action type constants.
const (
	ActionCreate            ActionType = "CREATE"
	ActionNotify            ActionType = "NOTIFY"
	ActionDeclare           ActionType = "DECLARE"
	ActionValidate          ActionType = "VALIDATE"
	ActionRegister          ActionType = "REGISTER"
	ActionPrintCertificate  ActionType = "PRINT_CERTIFICATE"
	ActionRequestCorrection ActionType = "REQUEST_CORRECTION"
	ActionApproveCorrection ActionType = "APPROVE_CORRECTION"
	ActionRejectCorrection  ActionType = "REJECT_CORRECTION"
	ActionReject            ActionType = "REJECT"
	ActionArchive           ActionType = "ARCHIVE"
)

var actionTypes = map[ActionType]bool{
	ActionCreate: true, ActionNotify: true, ActionDeclare: true, ActionValidate: true,
	ActionRegister: true, ActionPrintCertificate: true, ActionRequestCorrection: true,
	ActionApproveCorrection: true, ActionRejectCorrection: true, ActionReject: true,
	ActionArchive: true,
}

// IsValid checks if the action type is known.
func (t ActionType) IsValid() bool { return actionTypes[t] }

// ActionStatus tracks whether an action took effect.
type ActionStatus string

// Action status constants.
const (
	StatusRequested ActionStatus = "Requested"
	StatusAccepted  ActionStatus = "Accepted"
	StatusRejected  ActionStatus = "Rejected"
)

// Action is one immutable entry of an event's append-only history.
type Action struct {
	ID          string       `json:"id"`
	Type        ActionType   `json:"type"`
	Status      ActionStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	CreatedBy   string       `json:"createdBy,omitempty"`
	Declaration State        `json:"declaration,omitempty"`
	Annotation  State        `json:"annotation,omitempty"`
	// RequestID links APPROVE_CORRECTION / REJECT_CORRECTION to their REQUEST_CORRECTION.
	RequestID string `json:"requestId,omitempty"`
}

// IsAccepted reports whether the action took effect.
// Actions without a status are treated as accepted.
func (a Action) IsAccepted() bool {
	return a.Status == "" || a.Status == StatusAccepted
}
