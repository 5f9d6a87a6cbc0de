package crvs

import (
	"errors"

	"github.com/opencrvs/crvs-search/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrEventNotFound    = domain.ErrEventNotFound
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrInvalidConfig    = domain.ErrInvalidConfig
	ErrInvalidInput     = domain.ErrInvalidInput
	ErrActionConflict   = domain.ErrActionConflict
	ErrNotImplemented   = domain.ErrNotImplemented
)

// ErrNoDocumentStore is returned by document operations of a client
// created without WithRedis.
var ErrNoDocumentStore = errors.New("crvs: document storage not configured (use WithRedis)")
