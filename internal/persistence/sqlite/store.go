// Package sqlite keeps the state blob in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/persistence"

	_ "modernc.org/sqlite"
)

// Store is a persistence.Gateway backed by one row of the app_state table.
type Store struct {
	db  *sql.DB
	key string
	now func() time.Time
}

// Open creates the database file if needed, applies migrations and returns
// a Store bound to persistence.StorageKey.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("Open: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("Open: open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: %w", err)
	}

	return &Store{db: db, key: persistence.StorageKey, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadState implements persistence.Gateway.
func (s *Store) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE key = ?`, s.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LoadState: query: %w", err)
	}

	state, err := persistence.Decode([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("LoadState: %w", err)
	}
	return state, nil
}

// SaveState implements persistence.Gateway.
func (s *Store) SaveState(ctx context.Context, state domain.PersistedState) error {
	data, err := persistence.Encode(state)
	if err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_state (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		s.key, string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("SaveState: upsert: %w", err)
	}
	return nil
}

// UpdatedAt returns when the state was last saved, or the zero time.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM app_state WHERE key = ?`, s.key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("UpdatedAt: query: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("UpdatedAt: parse %q: %w", ts, err)
	}
	return t, nil
}

var _ persistence.Gateway = (*Store)(nil)
