// Package query defines the wire shape of search queries sent to the search index.
//
// A query is an and/or tree. Leaves are clauses: objects mapping metadata keys
// to conditions, plus an optional "eventType" and a "data" object holding
// conditions on declaration fields.
package query

import (
	"encoding/json"
	"fmt"

	"github.com/opencrvs/crvs-search/internal/domain/event/field"
)

// ConditionType tags the predicate variants.
type ConditionType string

// Condition type constants.
const (
	Exact  ConditionType = "exact"
	Fuzzy  ConditionType = "fuzzy"
	Within ConditionType = "within"
	Range  ConditionType = "range"
	AnyOf  ConditionType = "anyOf"
)

// Condition is a single predicate on one field.
type Condition struct {
	typ      ConditionType
	term     string
	location string
	gte      string
	lte      string
	terms    []string
}

// NewExact creates an exact match condition.
func NewExact(term string) Condition { return Condition{typ: Exact, term: term} }

// NewFuzzy creates a fuzzy match condition.
func NewFuzzy(term string) Condition { return Condition{typ: Fuzzy, term: term} }

// NewWithin creates a location containment condition.
func NewWithin(location string) Condition { return Condition{typ: Within, location: location} }

// NewRange creates an inclusive range condition.
func NewRange(gte, lte string) Condition { return Condition{typ: Range, gte: gte, lte: lte} }

// NewAnyOf creates a set membership condition. Term order is preserved.
func NewAnyOf(terms []string) Condition {
	return Condition{typ: AnyOf, terms: append([]string(nil), terms...)}
}

// NewTermCondition builds a single-term condition for a configured match type.
// Range and anyOf need structured input and are rejected here.
func NewTermCondition(m field.MatchType, term string) (Condition, error) {
	switch m {
	case field.Exact:
		return NewExact(term), nil
	case field.Fuzzy:
		return NewFuzzy(term), nil
	case field.Within:
		return NewWithin(term), nil
	case field.AnyOf:
		return NewAnyOf([]string{term}), nil
	default:
		return Condition{}, fmt.Errorf("match type %q does not take a single term", m)
	}
}

// Type returns the predicate tag.
func (c Condition) Type() ConditionType { return c.typ }

// Term returns the term of exact and fuzzy conditions.
func (c Condition) Term() string { return c.term }

// Location returns the location id of within conditions.
func (c Condition) Location() string { return c.location }

// GTE returns the lower bound of range conditions.
func (c Condition) GTE() string { return c.gte }

// LTE returns the upper bound of range conditions.
func (c Condition) LTE() string { return c.lte }

// Terms returns the members of anyOf conditions.
func (c Condition) Terms() []string { return append([]string(nil), c.terms...) }

type conditionJSON struct {
	Type     ConditionType `json:"type"`
	Term     *string       `json:"term,omitempty"`
	Location *string       `json:"location,omitempty"`
	GTE      *string       `json:"gte,omitempty"`
	LTE      *string       `json:"lte,omitempty"`
	Terms    []string      `json:"terms,omitempty"`
}

// MarshalJSON emits only the members of the condition's variant.
func (c Condition) MarshalJSON() ([]byte, error) {
	out := conditionJSON{Type: c.typ}
	switch c.typ {
	case Exact, Fuzzy:
		out.Term = &c.term
	case Within:
		out.Location = &c.location
	case Range:
		out.GTE = &c.gte
		out.LTE = &c.lte
	case AnyOf:
		out.Terms = c.terms
		if out.Terms == nil {
			out.Terms = []string{}
		}
	default:
		return nil, fmt.Errorf("unknown condition type %q", c.typ)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a condition produced by MarshalJSON.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var in conditionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode condition: %w", err)
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	switch in.Type {
	case Exact:
		*c = NewExact(deref(in.Term))
	case Fuzzy:
		*c = NewFuzzy(deref(in.Term))
	case Within:
		*c = NewWithin(deref(in.Location))
	case Range:
		*c = NewRange(deref(in.GTE), deref(in.LTE))
	case AnyOf:
		*c = NewAnyOf(in.Terms)
	default:
		return fmt.Errorf("unknown condition type %q", in.Type)
	}
	return nil
}

// Expression is a node of the query tree: a Clause or a *QueryType.
type Expression interface {
	json.Marshaler
	expression()
}

// Clause is a leaf of the query tree.
type Clause struct {
	// Metadata conditions are keyed by index key (e.g. "status", "trackingId").
	Metadata  map[string]Condition
	EventType string
	// Data conditions address declaration fields.
	Data map[field.ID]Condition
}

func (Clause) expression() {}

// IsEmpty reports whether the clause constrains nothing.
func (c Clause) IsEmpty() bool {
	return len(c.Metadata) == 0 && c.EventType == "" && len(c.Data) == 0
}

// MarshalJSON flattens metadata keys into the clause object.
// encoding/json sorts map keys, which keeps the output stable.
func (c Clause) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Metadata)+2)
	for k, v := range c.Metadata {
		out[k] = v
	}
	if c.EventType != "" {
		out["eventType"] = c.EventType
	}
	if len(c.Data) > 0 {
		out["data"] = c.Data
	}
	return json.Marshal(out)
}

// Operator composes clauses.
type Operator string

// Operator constants.
const (
	And Operator = "and"
	Or  Operator = "or"
)

// QueryType is a composition node of the query tree.
type QueryType struct {
	Type    Operator     `json:"type"`
	Clauses []Expression `json:"clauses"`
}

func (*QueryType) expression() {}

// NewAnd creates an AND node.
func NewAnd(clauses ...Expression) *QueryType {
	return &QueryType{Type: And, Clauses: nonNil(clauses)}
}

// NewOr creates an OR node.
func NewOr(clauses ...Expression) *QueryType {
	return &QueryType{Type: Or, Clauses: nonNil(clauses)}
}

func nonNil(clauses []Expression) []Expression {
	if clauses == nil {
		return []Expression{}
	}
	return clauses
}

// MarshalJSON encodes the node; an empty clause list encodes as [].
func (q *QueryType) MarshalJSON() ([]byte, error) {
	type alias QueryType
	out := alias(*q)
	out.Clauses = nonNil(out.Clauses)
	return json.Marshal(out)
}

// ClauseCount counts the leaves of the tree.
func (q *QueryType) ClauseCount() int {
	n := 0
	for _, c := range q.Clauses {
		if sub, ok := c.(*QueryType); ok {
			n += sub.ClauseCount()
			continue
		}
		n++
	}
	return n
}
