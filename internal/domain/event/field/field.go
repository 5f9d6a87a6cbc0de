package field

import (
	"slices"
	"strings"

	"github.com/opencrvs/crvs-search/internal/domain/event/conditional"
)

// MetadataPrefix marks field ids that address event metadata rather than the declaration.
const MetadataPrefix = "event."

// ID is a fully-qualified, dot-delimited field identifier such as "applicant.name".
type ID string

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// HasMetadataPrefix reports whether the id lives in the event metadata namespace.
func (id ID) HasMetadataPrefix() bool {
	return strings.HasPrefix(string(id), MetadataPrefix)
}

// Type is the kind of input a field collects.
type Type string

// Field type constants.
const (
	Text               Type = "TEXT"
	TextArea           Type = "TEXTAREA"
	Number             Type = "NUMBER"
	Name               Type = "NAME"
	Date               Type = "DATE"
	DateRange          Type = "DATE_RANGE"
	SelectDateRange    Type = "SELECT_DATE_RANGE"
	Select             Type = "SELECT"
	RadioGroup         Type = "RADIO_GROUP"
	Checkbox           Type = "CHECKBOX"
	Address            Type = "ADDRESS"
	Email              Type = "EMAIL"
	Phone              Type = "PHONE"
	IDNumber           Type = "ID"
	Location           Type = "LOCATION"
	Country            Type = "COUNTRY"
	AdministrativeArea Type = "ADMINISTRATIVE_AREA"
	Facility           Type = "FACILITY"
	Office             Type = "OFFICE"
	File               Type = "FILE"
	Paragraph          Type = "PARAGRAPH"
	PageHeader         Type = "PAGE_HEADER"
	Divider            Type = "DIVIDER"
	BulletList         Type = "BULLET_LIST"
)

// HoldsValue reports whether fields of this type carry a value in a declaration.
// Display-only types (headers, paragraphs, dividers) never do.
func (t Type) HoldsValue() bool {
	switch t {
	case Paragraph, PageHeader, Divider, BulletList:
		return false
	default:
		return true
	}
}

// MatchType is the search predicate a search field applies to its value.
type MatchType string

// Match type constants.
const (
	Fuzzy  MatchType = "fuzzy"
	Exact  MatchType = "exact"
	Within MatchType = "within"
	AnyOf  MatchType = "anyOf"
	Range  MatchType = "range"
)

// IsValid checks if the match type is one of the supported values.
func (m MatchType) IsValid() bool {
	return m == Fuzzy || m == Exact || m == Within || m == AnyOf || m == Range
}

// Option is a selectable value of a SELECT-like field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// ValidationRule is an advisory check; the value is valid when it matches Validator.
type ValidationRule struct {
	Message   string             `json:"message" yaml:"message"`
	Validator conditional.Schema `json:"validator" yaml:"validator"`
}

// SubField configures one part of a structured value (e.g. a name part).
type SubField struct {
	Required bool `json:"required" yaml:"required"`
}

// NameConfiguration configures the parts of a NAME field.
type NameConfiguration struct {
	Firstname  SubField `json:"firstname" yaml:"firstname"`
	Middlename SubField `json:"middlename" yaml:"middlename"`
	Surname    SubField `json:"surname" yaml:"surname"`
}

// Configuration holds type-specific settings.
type Configuration struct {
	Name *NameConfiguration `json:"name,omitempty" yaml:"name,omitempty"`
	// Fields restricts the visible sub-fields of an ADDRESS field.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	// SearchableResource lists the location resources a LOCATION field searches.
	SearchableResource []string `json:"searchableResource,omitempty" yaml:"searchableResource,omitempty"`
}

// Config describes one declaration or metadata field. Configs are static per
// event type; search-time variants are produced by Clone and never by mutation.
type Config struct {
	ID            ID                        `json:"id" yaml:"id"`
	Type          Type                      `json:"type" yaml:"type"`
	Label         string                    `json:"label,omitempty" yaml:"label,omitempty"`
	Required      bool                      `json:"required,omitempty" yaml:"required,omitempty"`
	Validation    []ValidationRule          `json:"validation,omitempty" yaml:"validation,omitempty"`
	Conditionals  []conditional.Conditional `json:"conditionals,omitempty" yaml:"conditionals,omitempty"`
	Options       []Option                  `json:"options,omitempty" yaml:"options,omitempty"`
	Configuration *Configuration            `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	out := c
	out.Validation = slices.Clone(c.Validation)
	out.Conditionals = slices.Clone(c.Conditionals)
	out.Options = slices.Clone(c.Options)
	if c.Configuration != nil {
		cfg := *c.Configuration
		if c.Configuration.Name != nil {
			name := *c.Configuration.Name
			cfg.Name = &name
		}
		cfg.Fields = slices.Clone(c.Configuration.Fields)
		cfg.SearchableResource = slices.Clone(c.Configuration.SearchableResource)
		out.Configuration = &cfg
	}
	return out
}

// SearchConfig is the match policy of a search field.
type SearchConfig struct {
	Type MatchType `json:"type" yaml:"type"`
	// SearchFields fans the value out to several storage fields, OR-composed.
	SearchFields []ID `json:"searchFields,omitempty" yaml:"searchFields,omitempty"`
}

// SearchField binds a field id to a match policy plus search-specific overrides.
type SearchField struct {
	FieldID      ID                        `json:"fieldId" yaml:"fieldId"`
	Config       SearchConfig              `json:"config" yaml:"config"`
	Type         Type                      `json:"type,omitempty" yaml:"type,omitempty"`
	Label        string                    `json:"label,omitempty" yaml:"label,omitempty"`
	Options      []Option                  `json:"options,omitempty" yaml:"options,omitempty"`
	Conditionals []conditional.Conditional `json:"conditionals,omitempty" yaml:"conditionals,omitempty"`
	Validations  []ValidationRule          `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// IsFanOut reports whether the search field targets several storage fields.
func (s SearchField) IsFanOut() bool { return len(s.Config.SearchFields) > 0 }
