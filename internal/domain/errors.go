package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEventNotFound signals an unknown event configuration id.
	ErrEventNotFound = errors.New("event configuration not found")
	// ErrDocumentNotFound signals a missing event document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidConfig signals a broken event configuration (deployment fault).
	ErrInvalidConfig = errors.New("invalid event configuration")
	// ErrInvalidInput signals a malformed value supplied by the caller.
	ErrInvalidInput = errors.New("invalid input")
	// ErrActionConflict signals an attempt to rewrite an append-only action log.
	ErrActionConflict = errors.New("action conflict")
	// ErrNotImplemented signals an unavailable feature.
	ErrNotImplemented = errors.New("not implemented")
)

// FieldNotFoundError reports a field id referenced by configuration that
// resolves to neither a metadata field nor a declaration field.
type FieldNotFoundError struct {
	FieldID string
	EventID string
	// Context names where the reference was found, e.g. a section or page id.
	Context string
}

func (e *FieldNotFoundError) Error() string {
	msg := fmt.Sprintf("%s: field %q not found in event %q", ErrInvalidConfig.Error(), e.FieldID, e.EventID)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *FieldNotFoundError) Unwrap() error { return ErrInvalidConfig }

// NewFieldNotFound creates a configuration fault for an unresolvable field id.
func NewFieldNotFound(fieldID, eventID, context string) error {
	return &FieldNotFoundError{FieldID: fieldID, EventID: eventID, Context: context}
}
