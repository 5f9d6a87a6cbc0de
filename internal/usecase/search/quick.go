package search

import (
	"slices"
	"strings"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/domain/search/query"
)

// quickSearchMatch is the allow-list of field types eligible for quick search.
var quickSearchMatch = map[field.Type]field.MatchType{
	field.Name:     field.Fuzzy,
	field.IDNumber: field.Exact,
	field.Email:    field.Exact,
	field.Phone:    field.Exact,
}

type quickField struct {
	id    field.ID
	match field.MatchType
}

// BuildQuickSearchQuery builds the OR-composed free-text query. Each term
// matches the tracking id, the registration number and every eligible
// declaration field of every event. Fields are deduplicated by id and terms
// by their trimmed text.
func BuildQuickSearchQuery(terms []string, events []event.Config) *query.QueryType {
	fields := quickSearchFields(events)

	var clauses []query.Expression
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		clauses = append(clauses,
			query.Clause{Metadata: map[string]query.Condition{event.KeyTrackingID: query.NewExact(term)}},
			query.Clause{Metadata: map[string]query.Condition{event.KeyRegistrationNumber: query.NewExact(term)}},
		)
		for _, f := range fields {
			var cond query.Condition
			if f.match == field.Fuzzy {
				cond = query.NewFuzzy(term)
			} else {
				cond = query.NewExact(term)
			}
			clauses = append(clauses, query.Clause{Data: map[field.ID]query.Condition{f.id: cond}})
		}
	}
	return query.NewOr(clauses...)
}

func quickSearchFields(events []event.Config) []quickField {
	seen := make(map[field.ID]bool)
	var out []quickField
	for _, ec := range events {
		for _, f := range ec.DeclarationFields() {
			m, ok := quickSearchMatch[f.Type]
			if !ok || seen[f.ID] {
				continue
			}
			seen[f.ID] = true
			out = append(out, quickField{id: f.ID, match: m})
		}
	}
	return out
}

// QuickSearchTerms extracts the distinct non-empty terms of raw quick search
// params in key order.
func QuickSearchTerms(params map[string]string) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	seen := make(map[string]bool, len(keys))
	var out []string
	for _, k := range keys {
		term := strings.TrimSpace(params[k])
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}
