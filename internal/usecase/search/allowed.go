package search

import (
	"time"

	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// CountFilledParams counts the filled search parameters of state. Each
// non-empty name part counts on its own; every other non-empty value counts
// once. Keys without a field config are ignored.
func CountFilledParams(state event.State, fields []field.Config) int {
	count := 0
	seen := make(map[field.ID]bool, len(fields))
	for _, f := range fields {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true

		raw, ok := state[f.ID]
		if !ok || field.IsEmptyRaw(raw) {
			continue
		}
		if f.Type == field.Name {
			if v, err := field.ParseValue(f.Type, raw); err == nil {
				if name, isName := v.(field.NameValue); isName {
					count += name.FilledParts()
				}
			}
			continue
		}
		count++
	}
	return count
}

// IsSearchAllowed reports whether state has at least min filled parameters
// and no validation errors. A min below 1 falls back to DefaultMinFilledParams.
func IsSearchAllowed(state event.State, fields []field.Config, minFilled int, now time.Time) bool {
	if minFilled < 1 {
		minFilled = DefaultMinFilledParams
	}
	if CountFilledParams(state, fields) < minFilled {
		return false
	}
	return len(Validate(state, fields, now)) == 0
}
