package event

import (
	"fmt"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// State maps fully-qualified field ids to raw values: strings, numbers,
// booleans, or one level of structured value such as a name or date range.
// A missing key and a nil value both mean "no value".
type State map[field.ID]any

// Clone returns a shallow copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Form converts the state to the string-keyed form used by conditionals.
func (s State) Form() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[string(k)] = v
	}
	return out
}

// Page is one step of a multi-page form.
type Page struct {
	ID     string         `json:"id" yaml:"id"`
	Title  string         `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []field.Config `json:"fields" yaml:"fields"`
}

// Declaration is the ordered set of declaration pages.
type Declaration struct {
	Pages []Page `json:"pages" yaml:"pages"`
}

// AdvancedSearchSection groups search fields shown together in the advanced search form.
type AdvancedSearchSection struct {
	ID     string              `json:"id" yaml:"id"`
	Title  string              `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []field.SearchField `json:"fields" yaml:"fields"`
}

// ActionConfig configures the annotation pages collected by one action flow.
type ActionConfig struct {
	Type  ActionType `json:"type" yaml:"type"`
	Label string     `json:"label,omitempty" yaml:"label,omitempty"`
	Pages []Page     `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// Fields flattens the annotation fields of the action in page order.
func (a ActionConfig) Fields() []field.Config {
	var out []field.Config
	for _, p := range a.Pages {
		out = append(out, p.Fields...)
	}
	return out
}

// Config is the full configuration of one event type (e.g. birth, death).
type Config struct {
	ID             string                  `json:"id" yaml:"id"`
	Label          string                  `json:"label,omitempty" yaml:"label,omitempty"`
	Declaration    Declaration             `json:"declaration" yaml:"declaration"`
	AdvancedSearch []AdvancedSearchSection `json:"advancedSearch,omitempty" yaml:"advancedSearch,omitempty"`
	Actions        []ActionConfig          `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// DeclarationFields flattens all declaration fields in page order.
func (c Config) DeclarationFields() []field.Config {
	var out []field.Config
	for _, p := range c.Declaration.Pages {
		out = append(out, p.Fields...)
	}
	return out
}

// DeclarationField looks up a declaration field by id.
func (c Config) DeclarationField(id field.ID) (field.Config, bool) {
	for _, p := range c.Declaration.Pages {
		for _, f := range p.Fields {
			if f.ID == id {
				return f, true
			}
		}
	}
	return field.Config{}, false
}

// Action returns the configuration of an action flow.
// A missing configuration is a deployment fault.
func (c Config) Action(t ActionType) (ActionConfig, error) {
	for _, a := range c.Actions {
		if a.Type == t {
			return a, nil
		}
	}
	return ActionConfig{}, fmt.Errorf("%w: event %q has no %s action configuration",
		domain.ErrInvalidConfig, c.ID, t)
}

// Validate checks structural invariants: non-empty ids and unique declaration field ids.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: event id is required", domain.ErrInvalidConfig)
	}
	seen := make(map[field.ID]string)
	for _, p := range c.Declaration.Pages {
		if p.ID == "" {
			return fmt.Errorf("%w: event %q has a page without id", domain.ErrInvalidConfig, c.ID)
		}
		for _, f := range p.Fields {
			if f.ID == "" {
				return fmt.Errorf("%w: event %q page %q has a field without id", domain.ErrInvalidConfig, c.ID, p.ID)
			}
			if prev, ok := seen[f.ID]; ok {
				return fmt.Errorf("%w: event %q field %q declared on pages %q and %q",
					domain.ErrInvalidConfig, c.ID, f.ID, prev, p.ID)
			}
			seen[f.ID] = p.ID
		}
	}
	for _, s := range c.AdvancedSearch {
		for _, sf := range s.Fields {
			if sf.Config.Type != "" && !sf.Config.Type.IsValid() {
				return fmt.Errorf("%w: event %q section %q field %q has invalid match type %q",
					domain.ErrInvalidConfig, c.ID, s.ID, sf.FieldID, sf.Config.Type)
			}
		}
	}
	return nil
}
