package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"

	_ "modernc.org/sqlite"
)

const (
	slotCurrent = "current"
	slotBackup  = "backup"
)

// SQLiteBackend keeps both snapshot slots as rows in a single table, so
// the rotate-then-write of Save happens inside one transaction.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
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

	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteBackend) Load(ctx context.Context) (core.Snapshot, error) {
	return s.loadSlot(ctx, slotCurrent)
}

func (s *SQLiteBackend) LoadBackup(ctx context.Context) (core.Snapshot, error) {
	return s.loadSlot(ctx, slotBackup)
}

func (s *SQLiteBackend) loadSlot(ctx context.Context, slot string) (core.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("query %s slot: %w", slot, err)
	}
	snap, err := core.ParseSnapshot([]byte(data))
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("parse %s slot: %w", slot, err)
	}
	return snap, nil
}

func (s *SQLiteBackend) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	// Promote the current slot to backup before overwriting it.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (slot, data, saved_at)
		SELECT ?, data, saved_at FROM snapshots WHERE slot = ?
		ON CONFLICT (slot) DO UPDATE SET
			data = excluded.data,
			saved_at = excluded.saved_at`,
		slotBackup, slotCurrent)
	if err != nil {
		return fmt.Errorf("rotate backup: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (slot, data, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			data = excluded.data,
			saved_at = excluded.saved_at`,
		slotCurrent, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write current slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
