package correction

import (
	"context"

	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// ConfigReader reads event configurations.
type ConfigReader interface {
	Get(ctx context.Context, id string) (event.Config, error)
}

// DocumentStore loads and persists event documents.
type DocumentStore interface {
	Get(ctx context.Context, id string) (event.Document, error)
	Save(ctx context.Context, doc event.Document) error
}
