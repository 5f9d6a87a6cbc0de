package document

import (
	"context"

	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// Repository defines the storage contract for event documents.
type Repository interface {
	Upsert(ctx context.Context, doc event.Document) (created bool, err error)
	Save(ctx context.Context, doc event.Document) error
	Get(ctx context.Context, id string) (event.Document, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// ConfigReader checks that documents reference a known event configuration.
type ConfigReader interface {
	Get(ctx context.Context, id string) (event.Config, error)
}
