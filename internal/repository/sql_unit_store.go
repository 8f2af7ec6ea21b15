package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
)

// SQLUnitStore keeps units as rows of storage_units. The same statements
// run on PostgreSQL and SQLite; placeholders are rebound per driver.
type SQLUnitStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLUnitStore creates a new instance of SQLUnitStore.
func NewSQLUnitStore(db *sqlx.DB) *SQLUnitStore {
	return &SQLUnitStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the storage table when missing.
func (s *SQLUnitStore) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS storage_units (
	unit_key TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure storage_units: %w", err)
	}
	return nil
}

// Read returns the unit body.
func (s *SQLUnitStore) Read(ctx context.Context, key string) ([]byte, error) {
	query := s.db.Rebind(`SELECT body FROM storage_units WHERE unit_key = ?`)
	var body string
	if err := s.db.GetContext(ctx, &body, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnitNotFound
		}
		return nil, fmt.Errorf("read unit %s: %w", key, err)
	}
	return []byte(body), nil
}

// Write upserts the whole unit body.
func (s *SQLUnitStore) Write(ctx context.Context, key string, data []byte) error {
	query := s.db.Rebind(`INSERT INTO storage_units (unit_key, body, updated_at) VALUES (?, ?, ?)
ON CONFLICT (unit_key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, string(data), s.now()); err != nil {
		return fmt.Errorf("write unit %s: %w", key, err)
	}
	return nil
}
