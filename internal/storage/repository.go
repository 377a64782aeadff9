// Package storage persists the record list. The whole list is the unit of
// persistence: one keyed snapshot row holding the JSON-serialized records,
// overwritten on every save (last write wins, no merge).
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rimborsi/internal/core"

	_ "modernc.org/sqlite"
)

// RecordStore is the persistence port for the record list.
type RecordStore interface {
	// Load returns the saved record list. No prior data or corrupt data
	// yields an empty list; corruption is logged, never surfaced.
	Load(ctx context.Context) []core.Record
	// Persist overwrites the saved list. Best effort: callers log the
	// error and continue.
	Persist(ctx context.Context, records []core.Record) error
}

const snapshotKey = "records"

type SQLiteStore struct {
	db *sql.DB
}

var _ RecordStore = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) []core.Record {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, snapshotKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Snapshot read failed, starting empty", "error", err)
		return nil
	}

	var records []core.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		slog.WarnContext(ctx, "Snapshot unparseable, starting empty", "error", err, "bytes", len(payload))
		return nil
	}
	return records
}

func (s *SQLiteStore) Persist(ctx context.Context, records []core.Record) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		snapshotKey, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
