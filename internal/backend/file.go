package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

const (
	currentFileName = "ledger.json"
	backupFileName  = "ledger.backup.json"
)

// FileBackend stores snapshots as JSON files in a directory, one file per
// slot. Writes go through a temp file and rename so a crash mid-write
// never leaves a half-written current slot.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed and returns a backend
// rooted at it.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Load(ctx context.Context) (core.Snapshot, error) {
	return f.loadFile(currentFileName)
}

func (f *FileBackend) LoadBackup(ctx context.Context) (core.Snapshot, error) {
	return f.loadFile(backupFileName)
}

func (f *FileBackend) loadFile(name string) (core.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if os.IsNotExist(err) {
		return core.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read %s: %w", name, err)
	}
	snap, err := core.ParseSnapshot(data)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return snap, nil
}

func (f *FileBackend) Save(ctx context.Context, snap core.Snapshot) error {
	current := filepath.Join(f.dir, currentFileName)
	backup := filepath.Join(f.dir, backupFileName)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Stage the new snapshot completely before touching either slot, so
	// an encode or write failure leaves the current file in place. The
	// rotation then happens between two renames; a crash in that window
	// still leaves the previous state readable in the backup slot.
	tmpName, err := stageTempFile(f.dir, data)
	if err != nil {
		return err
	}

	// Rotate the existing current slot into the backup slot. A missing
	// current file just means there is nothing to rotate yet.
	if _, err := os.Stat(current); err == nil {
		if err := os.Rename(current, backup); err != nil {
			os.Remove(tmpName)
			return fmt.Errorf("rotate backup: %w", err)
		}
	}

	if err := os.Rename(tmpName, current); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (f *FileBackend) Reset(ctx context.Context) error {
	for _, name := range []string{currentFileName, backupFileName} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

// stageTempFile writes data to a fully flushed temp file in dir and
// returns its path, ready to be renamed into a slot.
func stageTempFile(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmpName, nil
}
