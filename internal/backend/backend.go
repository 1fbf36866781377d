// Package backend defines the persistence boundary of the ledger. The
// store only ever asks a backend to load or save complete snapshots; how
// and where they live (a JSON file, SQLite) is a backend concern.
package backend

import (
	"context"
	"errors"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

// ErrNotFound reports that a slot holds no snapshot yet. It is an expected
// outcome on first run, not a failure.
var ErrNotFound = errors.New("snapshot not found")

// Backend persists ledger snapshots in two slots: current and a single
// backup generation. Save rotates the current snapshot into the backup
// slot before overwriting, so a corrupting write can always be undone by
// reading the backup. Exactly one prior generation is kept; two
// consecutive corrupting writes lose recovery data.
type Backend interface {
	// Load returns the current snapshot, or ErrNotFound.
	Load(ctx context.Context) (core.Snapshot, error)

	// LoadBackup returns the backup snapshot, or ErrNotFound.
	LoadBackup(ctx context.Context) (core.Snapshot, error)

	// Save rotates the current snapshot into the backup slot and then
	// replaces the current slot.
	Save(ctx context.Context, snap core.Snapshot) error

	// Reset clears both slots.
	Reset(ctx context.Context) error

	Close() error
}
