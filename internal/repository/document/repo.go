package document

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/opencrvs/crvs-search/internal/db"
	"github.com/opencrvs/crvs-search/internal/domain"
	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// DefaultKeyPrefix namespaces document keys when no prefix is configured.
const DefaultKeyPrefix = "crvs:"

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores event documents as RedisJSON values.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. An empty prefix uses DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Upsert creates or replaces a document. Returns true if created.
// Creation is decided by JSON.SET NX so concurrent creates cannot both win.
func (r *Repo) Upsert(ctx context.Context, doc event.Document) (bool, error) {
	key := r.docKey(doc.ID())
	data, err := toJSON(doc)
	if err != nil {
		return false, err
	}
	created, err := r.store.JSONSetNX(ctx, key, "$", data)
	if err != nil {
		return false, fmt.Errorf("json.set nx %s: %w", key, err)
	}
	if created {
		return true, nil
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return false, nil
}

// Save writes a document, replacing any stored version.
func (r *Repo) Save(ctx context.Context, doc event.Document) error {
	key := r.docKey(doc.ID())
	data, err := toJSON(doc)
	if err != nil {
		return err
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, id string) (event.Document, error) {
	key := r.docKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return event.Document{}, domain.ErrDocumentNotFound
		}
		return event.Document{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseJSONGetResult(raw)
}

// List returns the ids of all stored documents, sorted.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.docKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, r.docKey("")))
	}
	slices.Sort(ids)
	return ids, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.docKey(id)
	existed, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if !existed {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *Repo) docKey(id string) string {
	return r.prefix + "document:" + id
}
