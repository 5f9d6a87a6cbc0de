// Package searchfield resolves advanced-search fields to the field configs
// that drive search form rendering, validation and query construction.
package searchfield

import (
	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// Resolved pairs a search field with its effective field config and match policy.
type Resolved struct {
	Search  field.SearchField
	Field   field.Config
	Match   field.MatchType
	Section string
	// Metadata is true when the field addresses event metadata.
	Metadata bool
}

// Section is the resolved form of one advanced-search section.
type Section struct {
	ID     string         `json:"id"`
	Title  string         `json:"title,omitempty"`
	Fields []field.Config `json:"fields"`
}

// Resolver resolves search fields against an injected metadata table.
type Resolver struct {
	table Table
}

// New creates a resolver over the given metadata table.
func New(table Table) *Resolver {
	return &Resolver{table: table}
}

// Table returns the metadata table.
func (r *Resolver) Table() Table { return r.table }

// IsMetadata reports whether the id is a known metadata field.
func (r *Resolver) IsMetadata(id field.ID) bool { return r.table.Contains(id) }

// Resolve produces the effective field config for a single search field.
// An id that is neither metadata nor declared is a configuration fault.
func (r *Resolver) Resolve(ec event.Config, section string, sf field.SearchField) (Resolved, error) {
	if sf.IsFanOut() {
		return Resolved{
			Search:  sf,
			Field:   synthesize(sf),
			Match:   matchOrDefault(sf.Config.Type, defaultMatch(typeOr(sf.Type, field.Text))),
			Section: section,
		}, nil
	}

	if m, ok := r.table.Lookup(sf.FieldID); ok {
		base := m.Generate(sf)
		return Resolved{
			Search:   sf,
			Field:    applyOverrides(base.Clone(), sf),
			Match:    matchOrDefault(sf.Config.Type, m.Match),
			Section:  section,
			Metadata: true,
		}, nil
	}

	base, ok := ec.DeclarationField(sf.FieldID)
	if !ok {
		return Resolved{}, domain.NewFieldNotFound(string(sf.FieldID), ec.ID, "advanced search section "+section)
	}
	cfg := applyOverrides(base.Clone(), sf)
	return Resolved{
		Search:  sf,
		Field:   cfg,
		Match:   matchOrDefault(sf.Config.Type, defaultMatch(cfg.Type)),
		Section: section,
	}, nil
}

// ResolveID resolves a bare field id that no advanced-search section lists.
// Unknown ids are reported with ok == false; callers skip them.
func (r *Resolver) ResolveID(ec event.Config, id field.ID) (Resolved, bool) {
	sf := field.SearchField{FieldID: id}
	if m, ok := r.table.Lookup(id); ok {
		return Resolved{Search: sf, Field: m.Generate(sf), Match: m.Match, Metadata: true}, true
	}
	cfg, ok := ec.DeclarationField(id)
	if !ok {
		return Resolved{}, false
	}
	return Resolved{Search: sf, Field: applyOverrides(cfg.Clone(), sf), Match: defaultMatch(cfg.Type)}, true
}

// ResolveAll resolves every search field of every advanced-search section, in order.
func (r *Resolver) ResolveAll(ec event.Config) ([]Resolved, error) {
	var out []Resolved
	for _, s := range ec.AdvancedSearch {
		for _, sf := range s.Fields {
			res, err := r.Resolve(ec, s.ID, sf)
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
	}
	return out, nil
}

// Sections resolves each advanced-search section to its field configs.
func (r *Resolver) Sections(ec event.Config) ([]Section, error) {
	out := make([]Section, 0, len(ec.AdvancedSearch))
	for _, s := range ec.AdvancedSearch {
		fields := make([]field.Config, 0, len(s.Fields))
		for _, sf := range s.Fields {
			res, err := r.Resolve(ec, s.ID, sf)
			if err != nil {
				return nil, err
			}
			fields = append(fields, res.Field)
		}
		out = append(out, Section{ID: s.ID, Title: s.Title, Fields: fields})
	}
	return out, nil
}

// DefaultSearchFields returns the field configs of the metadata fields a
// section lists. Declaration fields in the section are ignored.
func (r *Resolver) DefaultSearchFields(section event.AdvancedSearchSection) []field.Config {
	var out []field.Config
	for _, sf := range section.Fields {
		m, ok := r.table.Lookup(sf.FieldID)
		if !ok {
			continue
		}
		out = append(out, applyOverrides(m.Generate(sf).Clone(), sf))
	}
	return out
}

// DefaultMatch is the match policy of a declaration field without explicit configuration.
func DefaultMatch(t field.Type) field.MatchType { return defaultMatch(t) }

func defaultMatch(t field.Type) field.MatchType {
	switch t {
	case field.Name:
		return field.Fuzzy
	case field.Date, field.DateRange, field.SelectDateRange:
		return field.Range
	default:
		return field.Exact
	}
}

func matchOrDefault(m, fallback field.MatchType) field.MatchType {
	if m != "" {
		return m
	}
	return fallback
}

func typeOr(t, fallback field.Type) field.Type {
	if t != "" {
		return t
	}
	return fallback
}

// synthesize builds a standalone config for a fan-out search field.
// It carries no validation beyond what the search field specifies.
func synthesize(sf field.SearchField) field.Config {
	cfg := field.Config{
		ID:           sf.FieldID,
		Type:         typeOr(sf.Type, field.Text),
		Label:        sf.Label,
		Validation:   sf.Validations,
		Conditionals: sf.Conditionals,
		Options:      sf.Options,
	}
	if cfg.Type == field.Name {
		cfg.Configuration = &field.Configuration{Name: &field.NameConfiguration{}}
	}
	return cfg.Clone()
}

// applyOverrides turns a declaration config into its search-form variant.
// cfg must already be a clone.
func applyOverrides(cfg field.Config, sf field.SearchField) field.Config {
	cfg.Required = false
	if sf.Label != "" {
		cfg.Label = sf.Label
	}
	if sf.Type != "" {
		cfg.Type = sf.Type
	}

	switch cfg.Type {
	case field.Date:
		if sf.Config.Type == field.Range {
			cfg.Type = field.DateRange
			cfg.Validation = nil
		}
	case field.Address:
		cfg.Configuration = withConfiguration(cfg.Configuration)
		cfg.Configuration.Fields = []string{"country"}
	case field.Name:
		cfg.Configuration = withConfiguration(cfg.Configuration)
		cfg.Configuration.Name = &field.NameConfiguration{
			Firstname:  field.SubField{Required: false},
			Middlename: field.SubField{Required: false},
			Surname:    field.SubField{Required: false},
		}
	case field.Select:
		if len(sf.Options) > 0 {
			cfg.Options = append([]field.Option(nil), sf.Options...)
		}
	}

	if sf.Conditionals != nil {
		cfg.Conditionals = append(cfg.Conditionals[:0:0], sf.Conditionals...)
	}
	if sf.Validations != nil {
		cfg.Validation = append(cfg.Validation[:0:0], sf.Validations...)
	}
	return cfg
}

func withConfiguration(c *field.Configuration) *field.Configuration {
	if c == nil {
		return &field.Configuration{}
	}
	return c
}
