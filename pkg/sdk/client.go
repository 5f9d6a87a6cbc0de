package crvs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opencrvs/crvs-search/internal/db"
	dbRedis "github.com/opencrvs/crvs-search/internal/db/redis"
	"github.com/opencrvs/crvs-search/internal/domain/event"
	"github.com/opencrvs/crvs-search/internal/domain/search/query"
	documentrepo "github.com/opencrvs/crvs-search/internal/repository/document"
	"github.com/opencrvs/crvs-search/internal/repository/eventconfig"
	correctionuc "github.com/opencrvs/crvs-search/internal/usecase/correction"
	documentuc "github.com/opencrvs/crvs-search/internal/usecase/document"
	healthuc "github.com/opencrvs/crvs-search/internal/usecase/health"
	searchuc "github.com/opencrvs/crvs-search/internal/usecase/search"
	"github.com/opencrvs/crvs-search/internal/usecase/searchfield"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, substituted in tests.
type searchUseCase interface {
	Events(ctx context.Context) ([]event.Config, error)
	Sections(ctx context.Context, eventID string) ([]searchfield.Section, error)
	Advanced(ctx context.Context, eventID string, state event.State) (*searchuc.AdvancedResult, error)
	Quick(ctx context.Context, terms []string) (*query.QueryType, error)
}

type correctionUseCase interface {
	Diff(ctx context.Context, eventID string, previous, current, annotation event.State) (*correctionuc.Result, error)
	Preview(ctx context.Context, docID string, form, annotation event.State) (*correctionuc.Result, error)
	Request(ctx context.Context, docID string, form, annotation event.State, createdBy string) (event.Action, error)
}

type documentUseCase interface {
	Put(ctx context.Context, id, eventType string, actions []event.Action) (event.Document, bool, error)
	Get(ctx context.Context, id string) (event.Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	AppendAction(ctx context.Context, docID string, action event.Action) (event.Document, error)
}

// Client is the crvs-search SDK entry point.
type Client struct {
	// store is nil without WithRedis.
	store         db.Store
	searchSvc     searchUseCase
	correctionSvc correctionUseCase
	// docSvc is nil without WithRedis.
	docSvc    documentUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New loads event configurations and, when WithRedis is given, connects to
// the document store. The provided context is used for the initial
// readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:       documentrepo.DefaultKeyPrefix,
		location:        time.UTC,
		minFilledParams: searchuc.DefaultMinFilledParams,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.eventsDir == "" {
		return nil, errors.New("crvs: events directory required (use WithEventsDir)")
	}
	events, err := eventconfig.Load(cfg.eventsDir)
	if err != nil {
		return nil, fmt.Errorf("crvs: load events: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if len(cfg.addrs) > 0 {
		s, err := createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("crvs: database not ready: %w", err)
		}
		store = s
	}

	return wireClient(events, store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("crvs: create redis store: %w", err)
	}
	return s, nil
}

func wireClient(events *eventconfig.Repo, store db.Store, cfg *clientConfig, obs *observer) *Client {
	resolver := searchfield.New(searchfield.DefaultTable())
	builder := searchuc.NewBuilder(resolver, searchuc.WithLocation(cfg.location))
	searchSvc := searchuc.New(events, resolver, builder).WithMinFilledParams(cfg.minFilledParams)
	correctionSvc := correctionuc.New(events, correctionuc.NewEngine(nil))

	c := &Client{
		searchSvc: searchSvc,
		obs:       obs,
	}

	// Nil interfaces, not typed nil pointers, when storage is disabled.
	var pinger healthuc.DBPinger
	if store != nil {
		docRepo := documentrepo.New(store, cfg.keyPrefix)
		c.store = store
		c.docSvc = documentuc.New(docRepo, events)
		correctionSvc = correctionSvc.WithDocuments(docRepo)
		pinger = store
	}
	c.correctionSvc = correctionSvc
	c.healthSvc = healthuc.New(pinger, events)
	return c
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return ErrNoDocumentStore
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Events lists the loaded event configurations.
func (c *Client) Events(ctx context.Context) (_ []EventInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("events", start, err) }()

	events, err := c.searchSvc.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	out := make([]EventInfo, len(events))
	for i, ec := range events {
		out[i] = EventInfo{ID: ec.ID, Label: ec.Label}
	}
	return out, nil
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}

// Corrections returns the correction service.
func (c *Client) Corrections() *CorrectionService {
	return &CorrectionService{svc: c.correctionSvc, obs: c.obs}
}

// Documents returns the document service. Its operations fail with
// ErrNoDocumentStore when the client was created without WithRedis.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}
