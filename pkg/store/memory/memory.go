// Package memory is an in-process store used by the CLI when no database is
// configured, and by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/store"
)

// Store keeps records and features in memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	records  []store.GenerationRecord
	features map[string]catalog.FeatureEntry
	clock    store.Clock
}

var _ store.CatalogStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for CreatedAt.
func WithClock(clock store.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithFeatures seeds the catalog.
func WithFeatures(entries ...catalog.FeatureEntry) Option {
	return func(s *Store) {
		for _, entry := range entries {
			s.features[entry.ID] = entry
		}
	}
}

// New constructs an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		features: make(map[string]catalog.FeatureEntry),
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SaveGenerationRecord implements store.Store.
func (s *Store) SaveGenerationRecord(ctx context.Context, rec store.GenerationRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.TypeName == "" {
		return "", store.ErrInvalidRecord
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.clock().UTC()

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return rec.ID, nil
}

// LoadFeatureCatalog implements store.Store. Entries are sorted by id.
func (s *Store) LoadFeatureCatalog(ctx context.Context) ([]catalog.FeatureEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.FeatureEntry, 0, len(s.features))
	for _, entry := range s.features {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// History implements store.Store.
func (s *Store) History(ctx context.Context, limit int) ([]store.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]store.GenerationRecord, 0, n)
	for idx := len(s.records) - 1; idx >= 0 && len(out) < n; idx-- {
		out = append(out, s.records[idx])
	}
	return out, nil
}

// SaveFeatures upserts catalog entries by id.
func (s *Store) SaveFeatures(ctx context.Context, entries []catalog.FeatureEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		s.features[entry.ID] = entry
	}
	return nil
}

// CatalogSummary counts features per category.
func (s *Store) CatalogSummary(ctx context.Context) ([]catalog.CategoryCount, error) {
	entries, err := s.LoadFeatureCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Summarize(entries), nil
}
