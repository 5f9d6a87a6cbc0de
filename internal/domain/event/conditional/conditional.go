// Package conditional evaluates JSON Schema conditionals attached to fields.
//
// A conditional is validated against an instance of the shape
//
//	{"$form": {<field id>: <value>, ...}, "$now": "YYYY-MM-DD"}
//
// so schemas address form values by their fully-qualified field id.
package conditional

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"
)

// Type is the effect a conditional controls.
type Type string

// Conditional type constants.
const (
	Show Type = "SHOW"
	// Enable controls whether a visible field accepts input.
	Enable          Type = "ENABLE"
	DisplayOnReview Type = "DISPLAY_ON_REVIEW"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Show || t == Enable || t == DisplayOnReview
}

// Schema is a compiled JSON Schema. The zero value matches every instance.
type Schema struct {
	raw      json.RawMessage
	resolved *jsonschema.Resolved
}

// NewSchema compiles a JSON Schema document.
func NewSchema(raw []byte) (Schema, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}
	resolved, err := s.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return Schema{}, fmt.Errorf("resolve schema: %w", err)
	}
	return Schema{raw: append(json.RawMessage(nil), raw...), resolved: resolved}, nil
}

// MustSchema compiles a schema or panics. Intended for static tables and tests.
func MustSchema(raw string) Schema {
	s, err := NewSchema([]byte(raw))
	if err != nil {
		panic(err)
	}
	return s
}

// IsZero reports whether the schema is empty.
func (s Schema) IsZero() bool { return s.resolved == nil }

// Matches reports whether the instance validates against the schema.
func (s Schema) Matches(instance any) bool {
	if s.resolved == nil {
		return true
	}
	return s.resolved.Validate(instance) == nil
}

// MarshalJSON emits the original schema document.
func (s Schema) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// UnmarshalJSON compiles the schema document.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Schema{}
		return nil
	}
	compiled, err := NewSchema(data)
	if err != nil {
		return err
	}
	*s = compiled
	return nil
}

// UnmarshalYAML decodes a YAML mapping and compiles it as JSON Schema.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var doc any
	if err := node.Decode(&doc); err != nil {
		return fmt.Errorf("decode schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return s.UnmarshalJSON(raw)
}

// Conditional binds a schema to the effect it controls.
type Conditional struct {
	Type        Type   `json:"type" yaml:"type"`
	Conditional Schema `json:"conditional" yaml:"conditional"`
}

// Context is the evaluation input for a set of conditionals.
type Context struct {
	Form map[string]any
	Now  time.Time
}

// Instance builds the JSON instance validated by conditional schemas.
// Form values are normalized through JSON so numeric and nested types match
// what the schema validator expects. A value that does not survive the round
// trip is left out, as if the field were empty.
func (c Context) Instance() any {
	form := make(map[string]any, len(c.Form))
	for k, v := range c.Form {
		if nv, ok := normalize(v); ok {
			form[k] = nv
		}
	}
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	return map[string]any{
		"$form": form,
		"$now":  now.Format(time.DateOnly),
	}
}

func normalize(v any) (any, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// all reports whether every conditional of type t matches.
func all(conds []Conditional, t Type, instance any) bool {
	for _, c := range conds {
		if c.Type != t {
			continue
		}
		if !c.Conditional.Matches(instance) {
			return false
		}
	}
	return true
}

// IsVisible reports whether every SHOW conditional matches.
// A field without SHOW conditionals is always visible.
func IsVisible(conds []Conditional, ctx Context) bool {
	return all(conds, Show, ctx.Instance())
}

// IsEnabled reports whether the field is visible and every ENABLE conditional matches.
func IsEnabled(conds []Conditional, ctx Context) bool {
	instance := ctx.Instance()
	return all(conds, Show, instance) && all(conds, Enable, instance)
}

// IsDisplayedOnReview reports whether the field is visible and every
// DISPLAY_ON_REVIEW conditional matches.
func IsDisplayedOnReview(conds []Conditional, ctx Context) bool {
	instance := ctx.Instance()
	return all(conds, Show, instance) && all(conds, DisplayOnReview, instance)
}
