// Package correction computes declaration diffs for correction review and
// assembles correction request payloads.
package correction

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/conditional"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// Change is one row of the correction comparison table.
type Change struct {
	FieldID  field.ID   `json:"fieldId"`
	Label    string     `json:"label,omitempty"`
	Type     field.Type `json:"type"`
	Previous any        `json:"previous"`
	Current  any        `json:"current"`
}

// Diff is the outcome of comparing two declaration snapshots.
type Diff struct {
	// Changed lists visible changed fields that are displayed on review.
	Changed []Change `json:"changed"`
	// Hidden lists fields that were visible before and are hidden now.
	Hidden []field.ID `json:"hidden"`
	// Payload is the declaration delta of a correction request.
	Payload event.State `json:"payload"`
}

// Engine compares declaration snapshots under field visibility rules.
// It is stateless apart from its clock.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an engine. A nil clock defaults to time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

func (e *Engine) ctx(s event.State) conditional.Context {
	return conditional.Context{Form: s.Form(), Now: e.now()}
}

// HasFieldChanged reports whether f is visible under form and its value
// differs from previous. A missing value and a nil value are equal.
func (e *Engine) HasFieldChanged(f field.Config, form, previous event.State) bool {
	if !conditional.IsVisible(f.Conditionals, e.ctx(form)) {
		return false
	}
	return !Equal(form[f.ID], previous[f.ID])
}

// ChangedFields returns the value-holding fields that changed, in order.
func (e *Engine) ChangedFields(fields []field.Config, form, previous event.State) []field.Config {
	var out []field.Config
	for _, f := range fields {
		if f.Type.HoldsValue() && e.HasFieldChanged(f, form, previous) {
			out = append(out, f)
		}
	}
	return out
}

// HiddenFields returns the fields that were visible under previous and are
// hidden under form.
func (e *Engine) HiddenFields(fields []field.Config, form, previous event.State) []field.ID {
	formCtx, prevCtx := e.ctx(form), e.ctx(previous)
	var out []field.ID
	for _, f := range fields {
		if !f.Type.HoldsValue() {
			continue
		}
		if conditional.IsVisible(f.Conditionals, prevCtx) && !conditional.IsVisible(f.Conditionals, formCtx) {
			out = append(out, f.ID)
		}
	}
	return out
}

// BuildPayload assembles the declaration delta: changed values, plus nil for
// fields that became hidden while holding a value. Fields absent in both
// snapshots never appear.
func (e *Engine) BuildPayload(fields []field.Config, form, previous event.State) event.State {
	out := event.State{}
	for _, f := range e.ChangedFields(fields, form, previous) {
		out[f.ID] = form[f.ID]
	}
	for _, id := range e.HiddenFields(fields, form, previous) {
		if !field.IsEmptyRaw(previous[id]) {
			out[id] = nil
		}
	}
	return out
}

// Diff computes the comparison table rows, the hidden set and the payload.
func (e *Engine) Diff(fields []field.Config, form, previous event.State) Diff {
	formCtx := e.ctx(form)
	d := Diff{
		Changed: []Change{},
		Hidden:  e.HiddenFields(fields, form, previous),
		Payload: e.BuildPayload(fields, form, previous),
	}
	if d.Hidden == nil {
		d.Hidden = []field.ID{}
	}
	for _, f := range e.ChangedFields(fields, form, previous) {
		if !conditional.IsDisplayedOnReview(f.Conditionals, formCtx) {
			continue
		}
		d.Changed = append(d.Changed, Change{
			FieldID:  f.ID,
			Label:    f.Label,
			Type:     f.Type,
			Previous: previous[f.ID],
			Current:  form[f.ID],
		})
	}
	return d
}

// Equal compares two raw values structurally after JSON normalization, so
// map[string]string and map[string]any with the same content are equal.
// nil and a missing value are equal.
func Equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

func normalize(v any) any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
