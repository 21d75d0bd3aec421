// Package store defines the catalog and history persistence the pipeline
// talks to. Implementations live in store/memory and store/postgres.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/validation"
)

// ErrInvalidRecord is returned when a record misses its type name.
var ErrInvalidRecord = errors.New("store: generation record requires a type name")

// GenerationRecord describes one finished generation.
type GenerationRecord struct {
	ID        string            `json:"id"`
	TypeName  string            `json:"type_name"`
	Config    map[string]any    `json:"config"`
	Report    validation.Report `json:"report"`
	OutputRef string            `json:"output_ref,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store persists generation history and serves the feature catalog.
type Store interface {
	// SaveGenerationRecord stores rec and returns its id. ID and CreatedAt
	// are assigned by the store.
	SaveGenerationRecord(ctx context.Context, rec GenerationRecord) (string, error)
	LoadFeatureCatalog(ctx context.Context) ([]catalog.FeatureEntry, error)
	// History returns the newest records first. limit <= 0 returns all.
	History(ctx context.Context, limit int) ([]GenerationRecord, error)
}

// CatalogStore is implemented by stores that can be seeded and summarised.
type CatalogStore interface {
	Store
	SaveFeatures(ctx context.Context, entries []catalog.FeatureEntry) error
	CatalogSummary(ctx context.Context) ([]catalog.CategoryCount, error)
}

// Clock returns the current time. Stores take one for testability.
type Clock func() time.Time
