package searchfield

import (
	"strings"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/domain/search/timeperiod"
)

// Generator builds the base field config of a metadata search field.
type Generator func(sf field.SearchField) field.Config

// MetadataField is one entry of the metadata generator table.
type MetadataField struct {
	Generate Generator
	// Match applies when the search field does not configure a match type.
	Match field.MatchType
}

// Table is an immutable lookup from metadata field id to its generator.
type Table struct {
	entries map[field.ID]MetadataField
}

// NewTable copies the entries into a table.
func NewTable(entries map[field.ID]MetadataField) Table {
	m := make(map[field.ID]MetadataField, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Table{entries: m}
}

// Lookup returns the generator entry for a metadata field id. The plural
// "legalStatuses." spelling resolves to the same entry as "legalStatus.".
func (t Table) Lookup(id field.ID) (MetadataField, bool) {
	e, ok := t.entries[canonical(id)]
	return e, ok
}

// Contains reports whether the id is a known metadata field.
func (t Table) Contains(id field.ID) bool {
	_, ok := t.Lookup(id)
	return ok
}

func canonical(id field.ID) field.ID {
	const plural, singular = "event.legalStatuses.", "event.legalStatus."
	if rest, ok := strings.CutPrefix(string(id), plural); ok {
		return field.ID(singular + rest)
	}
	return id
}

// DefaultTable returns the built-in metadata fields.
func DefaultTable() Table {
	return NewTable(map[field.ID]MetadataField{
		event.FieldStatus: {
			Generate: func(field.SearchField) field.Config {
				return field.Config{
					ID:      event.FieldStatus,
					Type:    field.Select,
					Label:   "Application status",
					Options: statusOptions(),
				}
			},
			Match: field.Exact,
		},
		event.FieldUpdatedAt: {
			Generate: func(field.SearchField) field.Config {
				return field.Config{
					ID:      event.FieldUpdatedAt,
					Type:    field.SelectDateRange,
					Label:   "Time period",
					Options: periodOptions(),
				}
			},
			Match: field.Range,
		},
		event.FieldTrackingID: {
			Generate: func(field.SearchField) field.Config {
				return field.Config{ID: event.FieldTrackingID, Type: field.Text, Label: "Tracking ID"}
			},
			Match: field.Exact,
		},
		event.FieldRegisteredAt: {
			Generate: func(field.SearchField) field.Config {
				return field.Config{ID: event.FieldRegisteredAt, Type: field.DateRange, Label: "Date of registration"}
			},
			Match: field.Range,
		},
		event.FieldRegisteredAtLocation: {
			Generate: func(field.SearchField) field.Config {
				return field.Config{
					ID:            event.FieldRegisteredAtLocation,
					Type:          field.Location,
					Label:         "Place of registration",
					Configuration: &field.Configuration{SearchableResource: []string{"offices"}},
				}
			},
			Match: field.Exact,
		},
		event.FieldRegistrationNumber: {
			Generate: func(field.SearchField) field.Config {
				return field.Config{ID: event.FieldRegistrationNumber, Type: field.Text, Label: "Registration number"}
			},
			Match: field.Exact,
		},
	})
}

func statusOptions() []field.Option {
	opts := []field.Option{{Value: event.StatusAll, Label: "Any status"}}
	for _, s := range event.Statuses() {
		opts = append(opts, field.Option{Value: string(s), Label: titleCase(string(s))})
	}
	return opts
}

func periodOptions() []field.Option {
	labels := map[timeperiod.Period]string{
		timeperiod.Last7Days:   "Last 7 days",
		timeperiod.Last30Days:  "Last 30 days",
		timeperiod.Last90Days:  "Last 90 days",
		timeperiod.Last365Days: "Last year",
	}
	opts := make([]field.Option, 0, len(labels))
	for _, p := range timeperiod.Periods() {
		opts = append(opts, field.Option{Value: string(p), Label: labels[p]})
	}
	return opts
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
