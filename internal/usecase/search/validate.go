package search

import (
	"net/mail"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/conditional"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/domain/search/timeperiod"
)

// DefaultMinFilledParams is the number of filled parameters an advanced search needs.
const DefaultMinFilledParams = 2

// FieldError is an advisory validation message for one field.
type FieldError struct {
	FieldID field.ID `json:"fieldId"`
	Message string   `json:"message"`
}

// Validation messages.
const (
	MsgRequired     = "Required"
	MsgInvalidDate  = "Invalid date, expected YYYY-MM-DD"
	MsgInvalidRange = "Start date must not be after end date"
	MsgInvalidEmail = "Invalid email address"
	MsgInvalidValue = "Invalid value"
)

// Validate checks state against the visible fields and collects one error
// per failing field. Hidden fields are never validated.
func Validate(state event.State, fields []field.Config, now time.Time) []FieldError {
	ctx := conditional.Context{Form: state.Form(), Now: now}
	instance := ctx.Instance()

	var errs []FieldError
	for _, f := range fields {
		if !conditional.IsVisible(f.Conditionals, ctx) {
			continue
		}
		if msg := validateField(f, state[f.ID], instance); msg != "" {
			errs = append(errs, FieldError{FieldID: f.ID, Message: msg})
		}
	}
	return errs
}

func validateField(f field.Config, raw any, instance any) string {
	if field.IsEmptyRaw(raw) {
		if f.Required {
			return MsgRequired
		}
		return ""
	}

	v, err := field.ParseValue(f.Type, raw)
	if err != nil {
		return MsgInvalidValue
	}
	switch val := v.(type) {
	case field.DateRangeValue:
		if msg := validateDateRange(val); msg != "" {
			return msg
		}
	case field.SelectDateRangeValue:
		if !timeperiod.Period(val.Period).IsValid() {
			return MsgInvalidValue
		}
	case field.NameValue:
		if f.Required && val.IsEmpty() {
			return MsgRequired
		}
	case field.ScalarValue:
		if f.Type == field.Email {
			if _, err := mail.ParseAddress(val.String()); err != nil {
				return MsgInvalidEmail
			}
		}
	}

	for _, rule := range f.Validation {
		if !rule.Validator.Matches(instance) {
			return ruleMessage(rule)
		}
	}
	return ""
}

func validateDateRange(d field.DateRangeValue) string {
	start, okStart := parseBound(d.Start)
	end, okEnd := parseBound(d.End)
	if !okStart || !okEnd {
		return MsgInvalidDate
	}
	if d.Start != "" && d.End != "" && start.After(end) {
		return MsgInvalidRange
	}
	return ""
}

// parseBound accepts what the builder accepts: a calendar date or an
// RFC 3339 timestamp. An empty bound is valid.
func parseBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	layout := time.DateOnly
	if len(s) > len(time.DateOnly) {
		layout = time.RFC3339Nano
	}
	t, err := time.Parse(layout, s)
	return t, err == nil
}

func ruleMessage(rule field.ValidationRule) string {
	if rule.Message != "" {
		return rule.Message
	}
	return MsgInvalidValue
}
