package search

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/event/field"
	"github.com/opencrvs/crvs-search/internal/domain/search/query"
	"github.com/opencrvs/crvs-search/internal/domain/search/timeperiod"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

// isoMillis is the UTC timestamp layout of range bounds sent to the index.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the timezone local dates are interpreted in (default UTC).
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithClock overrides the time source used to resolve relative periods.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// Builder translates search form state into index queries.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	resolver *searchfield.Resolver
	loc      *time.Location
	now      func() time.Time
}

// NewBuilder creates a query builder.
func NewBuilder(resolver *searchfield.Resolver, opts ...Option) *Builder {
	b := &Builder{resolver: resolver, loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Now returns the current time according to the builder's clock.
func (b *Builder) Now() time.Time { return b.now() }

type entry struct {
	id   field.ID
	cond query.Condition
	res  searchfield.Resolved
}

// BuildDataCondition returns one condition per non-empty value in state.
func (b *Builder) BuildDataCondition(state event.State, ec event.Config) (map[field.ID]query.Condition, error) {
	entries, err := b.conditions(state, ec, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[field.ID]query.Condition, len(entries))
	for _, e := range entries {
		out[e.id] = e.cond
	}
	return out, nil
}

// BuildSearchQuery builds the AND-composed advanced search query.
// The first clause always carries the metadata conditions and the event type.
// Fan-out fields become OR nodes over their storage fields; all other
// declaration conditions share a single data clause.
func (b *Builder) BuildSearchQuery(state event.State, ec event.Config) (*query.QueryType, error) {
	entries, err := b.conditions(state, ec, nil)
	if err != nil {
		return nil, err
	}
	return b.compose(entries, ec), nil
}

// BuildAdvancedQuery is BuildSearchQuery for form input: values that cannot
// become a condition are left out of the query and reported as field errors.
// Only configuration faults are returned as errors.
func (b *Builder) BuildAdvancedQuery(state event.State, ec event.Config) (*query.QueryType, []FieldError, error) {
	var rejected []FieldError
	entries, err := b.conditions(state, ec, func(res searchfield.Resolved) {
		rejected = append(rejected, FieldError{FieldID: res.Search.FieldID, Message: invalidMessage(res.Field.Type)})
	})
	if err != nil {
		return nil, nil, err
	}
	return b.compose(entries, ec), rejected, nil
}

func invalidMessage(t field.Type) string {
	if t == field.Date || t == field.DateRange {
		return MsgInvalidDate
	}
	return MsgInvalidValue
}

func (b *Builder) compose(entries []entry, ec event.Config) *query.QueryType {

	meta := query.Clause{Metadata: map[string]query.Condition{}, EventType: ec.ID}
	var (
		rest    []query.Expression
		data    map[field.ID]query.Condition
		dataIdx = -1
	)
	for _, e := range entries {
		if e.res.Metadata {
			key, ok := event.MetadataKey(e.id)
			if !ok {
				key = string(e.id)
			}
			meta.Metadata[key] = e.cond
			continue
		}
		if e.res.Search.IsFanOut() {
			ors := make([]query.Expression, 0, len(e.res.Search.Config.SearchFields))
			for _, target := range e.res.Search.Config.SearchFields {
				ors = append(ors, query.Clause{Data: map[field.ID]query.Condition{target: e.cond}})
			}
			rest = append(rest, query.NewOr(ors...))
			continue
		}
		if data == nil {
			data = make(map[field.ID]query.Condition)
			dataIdx = len(rest)
			rest = append(rest, nil)
		}
		data[e.id] = e.cond
	}
	if dataIdx >= 0 {
		rest[dataIdx] = query.Clause{Data: data}
	}

	return query.NewAnd(append([]query.Expression{meta}, rest...)...)
}

// conditions builds conditions in search-field order, followed by state keys
// that no section lists (sorted), restricted to ids the event knows about.
// With a nil reject an unusable value fails the build; otherwise reject is
// told about it and the field is skipped.
func (b *Builder) conditions(state event.State, ec event.Config, reject func(searchfield.Resolved)) ([]entry, error) {
	resolved, err := b.resolver.ResolveAll(ec)
	if err != nil {
		return nil, fmt.Errorf("resolve search fields: %w", err)
	}

	seen := make(map[field.ID]bool, len(resolved))
	out := make([]entry, 0, len(state))
	add := func(res searchfield.Resolved, raw any) error {
		cond, ok, err := b.condition(res, raw)
		if err != nil && reject != nil {
			reject(res)
			return nil
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", res.Search.FieldID, err)
		}
		if ok {
			out = append(out, entry{id: res.Search.FieldID, cond: cond, res: res})
		}
		return nil
	}

	for _, res := range resolved {
		id := res.Search.FieldID
		if seen[id] {
			continue
		}
		seen[id] = true
		raw, ok := state[id]
		if !ok {
			continue
		}
		if err := add(res, raw); err != nil {
			return nil, err
		}
	}

	extra := make([]field.ID, 0)
	for id := range state {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	for _, id := range extra {
		res, ok := b.resolver.ResolveID(ec, id)
		if !ok {
			continue
		}
		if err := add(res, state[id]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// condition applies the per-field policy. ok is false for absent values.
func (b *Builder) condition(res searchfield.Resolved, raw any) (query.Condition, bool, error) {
	if field.IsEmptyRaw(raw) {
		return query.Condition{}, false, nil
	}
	if res.Search.FieldID == event.FieldStatus {
		if s, isStr := raw.(string); isStr && s == event.StatusAll {
			return query.NewAnyOf(statusTerms()), true, nil
		}
	}

	v, err := field.ParseValue(res.Field.Type, raw)
	if err != nil {
		return query.Condition{}, false, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if v == nil || v.IsEmpty() {
		return query.Condition{}, false, nil
	}

	var cond query.Condition
	switch val := v.(type) {
	case field.NameValue:
		cond, err = b.term(res.Match, val.String())
	case field.AddressValue:
		var term string
		if term, err = val.JSON(); err == nil {
			cond, err = b.term(res.Match, term)
		}
	case field.DateRangeValue:
		cond, err = b.dateRange(val)
	case field.SelectDateRangeValue:
		cond, err = b.period(val)
	case field.ScalarValue:
		cond, err = b.scalar(res.Match, val)
	default:
		err = fmt.Errorf("unsupported value kind %d", v.Kind())
	}
	if err != nil {
		return query.Condition{}, false, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return cond, true, nil
}

func (b *Builder) term(m field.MatchType, term string) (query.Condition, error) {
	if m == field.Range {
		return b.dateRange(splitRange(term))
	}
	cond, err := query.NewTermCondition(m, term)
	if err != nil {
		return query.Condition{}, fmt.Errorf("build condition: %w", err)
	}
	return cond, nil
}

func (b *Builder) scalar(m field.MatchType, v field.ScalarValue) (query.Condition, error) {
	switch m {
	case field.AnyOf:
		return query.NewAnyOf(v.Strings()), nil
	case field.Range:
		return b.dateRange(splitRange(v.String()))
	default:
		return b.term(m, v.String())
	}
}

func (b *Builder) period(v field.SelectDateRangeValue) (query.Condition, error) {
	start, end, err := timeperiod.Resolve(timeperiod.Period(v.Period), b.now(), b.loc)
	if err != nil {
		return query.Condition{}, fmt.Errorf("resolve period: %w", err)
	}
	return b.dateRange(field.DateRangeValue{Start: start, End: end})
}

// dateRange converts local calendar dates to UTC day boundaries. A missing
// bound takes the value of the other one.
func (b *Builder) dateRange(d field.DateRangeValue) (query.Condition, error) {
	start, end := d.Start, d.End
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}
	gte, err := b.bound(start, false)
	if err != nil {
		return query.Condition{}, err
	}
	lte, err := b.bound(end, true)
	if err != nil {
		return query.Condition{}, err
	}
	return query.NewRange(gte, lte), nil
}

func (b *Builder) bound(s string, endOfDay bool) (string, error) {
	if len(s) > len(time.DateOnly) {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return "", fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		return t.UTC().Format(isoMillis), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, b.loc)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return t.UTC().Format(isoMillis), nil
}

func splitRange(s string) field.DateRangeValue {
	if start, end, ok := strings.Cut(s, ","); ok {
		return field.DateRangeValue{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	}
	return field.DateRangeValue{Start: s, End: s}
}

func statusTerms() []string {
	statuses := event.Statuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
