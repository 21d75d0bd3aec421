// Package postgres persists generation history and the feature catalog in
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/goliatone/go-xmlgen/pkg/catalog"
	"github.com/goliatone/go-xmlgen/pkg/store"
)

const (
	DefaultFeaturesTable    = "features"
	DefaultGenerationsTable = "xml_generations"

	// saveAttempts bounds retries when a generated record id already exists.
	saveAttempts = 3
)

// Store implements store.CatalogStore on database/sql with the lib/pq driver.
type Store struct {
	db          *sql.DB
	clock       store.Clock
	newID       func() string
	features    string
	generations string
}

var _ store.CatalogStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created_at.
func WithClock(clock store.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator replaces the UUID source for generation record ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithTables overrides the table names. Empty names keep the defaults.
func WithTables(features, generations string) Option {
	return func(s *Store) {
		if features != "" {
			s.features = features
		}
		if generations != "" {
			s.generations = generations
		}
	}
}

// New wraps an open database handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		clock:       time.Now,
		newID:       uuid.NewString,
		features:    DefaultFeaturesTable,
		generations: DefaultGenerationsTable,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: connect: %w", err)
	}
	return New(db, opts...), nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT TRUE
		)`, pq.QuoteIdentifier(s.features)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			type_name TEXT NOT NULL,
			config JSONB NOT NULL,
			report JSONB NOT NULL,
			is_valid BOOLEAN NOT NULL,
			output_ref TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`, pq.QuoteIdentifier(s.generations)),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres store: ensure schema: %w", err)
		}
	}
	return nil
}

// SaveGenerationRecord implements store.Store.
func (s *Store) SaveGenerationRecord(ctx context.Context, rec store.GenerationRecord) (string, error) {
	if rec.TypeName == "" {
		return "", store.ErrInvalidRecord
	}
	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return "", fmt.Errorf("postgres store: encode config: %w", err)
	}
	reportJSON, err := json.Marshal(rec.Report)
	if err != nil {
		return "", fmt.Errorf("postgres store: encode report: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, type_name, config, report, is_valid, output_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pq.QuoteIdentifier(s.generations))
	createdAt := s.clock().UTC()

	for attempt := 1; ; attempt++ {
		id := s.newID()
		_, err = s.db.ExecContext(ctx, query, id, rec.TypeName, configJSON, reportJSON, rec.Report.IsValid, rec.OutputRef, createdAt)
		if err == nil {
			return id, nil
		}
		if !IsUniqueViolation(err) || attempt == saveAttempts {
			return "", fmt.Errorf("postgres store: save generation: %w", err)
		}
	}
}

// LoadFeatureCatalog implements store.Store.
func (s *Store) LoadFeatureCatalog(ctx context.Context) ([]catalog.FeatureEntry, error) {
	query := fmt.Sprintf(`SELECT id, name, category, enabled FROM %s ORDER BY id`, pq.QuoteIdentifier(s.features))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres store: load catalog: %w", err)
	}
	defer rows.Close()

	var out []catalog.FeatureEntry
	for rows.Next() {
		var entry catalog.FeatureEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Category, &entry.Enabled); err != nil {
			return nil, fmt.Errorf("postgres store: scan feature: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: load catalog: %w", err)
	}
	return out, nil
}

// History implements store.Store.
func (s *Store) History(ctx context.Context, limit int) ([]store.GenerationRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, type_name, config, report, output_ref, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC
	`, pq.QuoteIdentifier(s.generations))
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres store: history: %w", err)
	}
	defer rows.Close()

	var out []store.GenerationRecord
	for rows.Next() {
		var (
			rec        store.GenerationRecord
			configJSON []byte
			reportJSON []byte
		)
		if err := rows.Scan(&rec.ID, &rec.TypeName, &configJSON, &reportJSON, &rec.OutputRef, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres store: scan generation: %w", err)
		}
		if err := json.Unmarshal(configJSON, &rec.Config); err != nil {
			return nil, fmt.Errorf("postgres store: decode config of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal(reportJSON, &rec.Report); err != nil {
			return nil, fmt.Errorf("postgres store: decode report of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: history: %w", err)
	}
	return out, nil
}

// featureColumns splits entries into upsert columns. Entries without an id
// are skipped; a repeated id keeps its last entry, since one upsert statement
// may not touch the same row twice.
func featureColumns(entries []catalog.FeatureEntry) (ids, names, categories []string, enabled []bool) {
	position := make(map[string]int, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if idx, seen := position[entry.ID]; seen {
			names[idx] = entry.Name
			categories[idx] = entry.Category
			enabled[idx] = entry.Enabled
			continue
		}
		position[entry.ID] = len(ids)
		ids = append(ids, entry.ID)
		names = append(names, entry.Name)
		categories = append(categories, entry.Category)
		enabled = append(enabled, entry.Enabled)
	}
	return ids, names, categories, enabled
}

// SaveFeatures upserts entries in one round trip.
func (s *Store) SaveFeatures(ctx context.Context, entries []catalog.FeatureEntry) error {
	ids, names, categories, enabled := featureColumns(entries)
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, category, enabled)
		SELECT * FROM unnest($1::text[], $2::text[], $3::text[], $4::boolean[])
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			enabled = EXCLUDED.enabled
	`, pq.QuoteIdentifier(s.features))
	_, err := s.db.ExecContext(ctx, query, pq.Array(ids), pq.Array(names), pq.Array(categories), pq.Array(enabled))
	if err != nil {
		return fmt.Errorf("postgres store: save features: %w", err)
	}
	return nil
}

// CatalogSummary counts features per category.
func (s *Store) CatalogSummary(ctx context.Context) ([]catalog.CategoryCount, error) {
	query := fmt.Sprintf(`
		SELECT category, COUNT(*), COUNT(*) FILTER (WHERE enabled)
		FROM %s
		GROUP BY category
		ORDER BY category
	`, pq.QuoteIdentifier(s.features))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres store: summary: %w", err)
	}
	defer rows.Close()

	var out []catalog.CategoryCount
	for rows.Next() {
		var count catalog.CategoryCount
		if err := rows.Scan(&count.Category, &count.Total, &count.Enabled); err != nil {
			return nil, fmt.Errorf("postgres store: scan summary: %w", err)
		}
		out = append(out, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: summary: %w", err)
	}
	return out, nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// failure. SaveGenerationRecord retries with a fresh id on one.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
