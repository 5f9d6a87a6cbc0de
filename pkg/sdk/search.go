package crvs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opencrvs/crvs-search/internal/codec/searchparams"
)

// SearchService builds search queries from event configurations.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Advanced builds the advanced search query of an event from form state.
// The result reports whether the search is allowed and any field errors.
func (s *SearchService) Advanced(ctx context.Context, eventID string, state State) (_ *AdvancedResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_advanced", start, err) }()

	res, err := s.svc.Advanced(ctx, eventID, toDomainState(state))
	if err != nil {
		return nil, fmt.Errorf("advanced search: %w", err)
	}
	return fromDomainAdvanced(res)
}

// AdvancedFromParams is Advanced over serialized search params.
func (s *SearchService) AdvancedFromParams(ctx context.Context, eventID, params string) (*AdvancedResult, error) {
	return s.Advanced(ctx, eventID, DecodeParams(params))
}

// Quick builds the quick search query over all events. Terms are unioned.
func (s *SearchService) Quick(ctx context.Context, terms ...string) (_ json.RawMessage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_quick", start, err) }()

	q, err := s.svc.Quick(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("quick search: %w", err)
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return raw, nil
}

// Sections returns the resolved advanced search form of an event.
func (s *SearchService) Sections(ctx context.Context, eventID string) (_ []Section, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search_sections", start, err) }()

	sections, err := s.svc.Sections(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("sections: %w", err)
	}
	return fromDomainSections(sections), nil
}

// EncodeParams serializes form state into a URL query string.
func EncodeParams(state State) string {
	return searchparams.Serialize(state)
}

// DecodeParams parses a URL query string produced by EncodeParams.
func DecodeParams(params string) State {
	return searchparams.Deserialize(params)
}
