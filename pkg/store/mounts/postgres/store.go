// Package postgres provides a PostgreSQL-backed mount-record store.
//
// Use this backend when several daemons share mount configuration; for a
// single daemon the embedded BadgerDB backend is simpler to operate.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Store implements mounts.Store backed by a PostgreSQL database.
type Store struct {
	// pool is the PostgreSQL connection pool
	pool *pgxpool.Pool

	// config holds the store configuration
	config *Config
}

// New creates a PostgreSQL-backed mount store.
//
// Defaults are applied and the configuration validated before connecting.
// When AutoMigrate is enabled the embedded schema migrations run first;
// otherwise the schema must already exist (see RunMigrations).
func New(ctx context.Context, cfg *Config) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := createConnectionPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if cfg.AutoMigrate {
		if err := runMigrations(ctx, cfg.ConnectionString()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &Store{pool: pool, config: cfg}, nil
}

// Save persists a record, replacing any existing record with the same ID.
// The original created_at survives an upsert.
func (s *Store) Save(ctx context.Context, rec *mounts.Record) error {
	if rec == nil || rec.ID == "" {
		return mounts.NewInvalidArgumentError("record must have an ID")
	}

	query := `
		INSERT INTO mounts (id, name, url, username, password, writable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			username = EXCLUDED.username,
			password = EXCLUDED.password,
			writable = EXCLUDED.writable
	`
	_, err := s.pool.Exec(ctx, query,
		string(rec.ID), rec.Name, rec.URL, rec.Username, rec.Password, rec.Writable, rec.CreatedAt)
	if err != nil {
		return mapPgError(err, "save mount record", rec.ID)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id mounts.MountID) (*mounts.Record, error) {
	query := `
		SELECT id, name, url, username, password, writable, created_at
		FROM mounts
		WHERE id = $1
	`
	var rec mounts.Record
	err := s.pool.QueryRow(ctx, query, string(id)).Scan(
		&rec.ID, &rec.Name, &rec.URL, &rec.Username, &rec.Password, &rec.Writable, &rec.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "get mount record", id)
	}
	return &rec, nil
}

// Delete removes a record by ID.
func (s *Store) Delete(ctx context.Context, id mounts.MountID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM mounts WHERE id = $1`, string(id))
	if err != nil {
		return mapPgError(err, "delete mount record", id)
	}
	if tag.RowsAffected() == 0 {
		return mounts.NewNotFoundError(id)
	}
	return nil
}

// List returns all records ordered by ID.
func (s *Store) List(ctx context.Context) ([]*mounts.Record, error) {
	query := `
		SELECT id, name, url, username, password, writable, created_at
		FROM mounts
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err, "list mount records", "")
	}
	defer rows.Close()

	var records []*mounts.Record
	for rows.Next() {
		var rec mounts.Record
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.URL, &rec.Username, &rec.Password, &rec.Writable, &rec.CreatedAt); err != nil {
			return nil, mapPgError(err, "list mount records", "")
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "list mount records", "")
	}
	return records, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Store implements mounts.Store.
var _ mounts.Store = (*Store)(nil)
