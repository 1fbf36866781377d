package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

func testSnapshot(t *testing.T, id string, cents int64) core.Snapshot {
	t.Helper()
	snap := core.NewSnapshot(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	snap.Entries["2025-03"] = []core.Entry{{
		ID:          id,
		Kind:        core.Inflow,
		Amount:      core.Money{Cents: cents},
		Description: "Doação mensal",
		Date:        core.NewDate(2025, 3, 10),
		CreatedAt:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}}
	return snap
}

func firstEntryID(t *testing.T, snap core.Snapshot) string {
	t.Helper()
	entries := snap.Entries["2025-03"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry in 2025-03, got %d", len(entries))
	}
	return entries[0].ID
}

func runBackendTests(t *testing.T, open func(t *testing.T) Backend) {
	ctx := context.Background()

	t.Run("load empty returns not found", func(t *testing.T) {
		b := open(t)
		if _, err := b.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Load = %v, want ErrNotFound", err)
		}
		if _, err := b.LoadBackup(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("LoadBackup = %v, want ErrNotFound", err)
		}
	})

	t.Run("save then load round trip", func(t *testing.T) {
		b := open(t)
		if err := b.Save(ctx, testSnapshot(t, "e1", 12345)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := b.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if id := firstEntryID(t, got); id != "e1" {
			t.Errorf("loaded entry id = %q, want %q", id, "e1")
		}
		if got.Entries["2025-03"][0].Amount.Cents != 12345 {
			t.Errorf("loaded amount = %d cents, want 12345", got.Entries["2025-03"][0].Amount.Cents)
		}
	})

	t.Run("second save rotates first into backup", func(t *testing.T) {
		b := open(t)
		if err := b.Save(ctx, testSnapshot(t, "first", 100)); err != nil {
			t.Fatalf("Save first: %v", err)
		}
		if err := b.Save(ctx, testSnapshot(t, "second", 200)); err != nil {
			t.Fatalf("Save second: %v", err)
		}

		current, err := b.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if id := firstEntryID(t, current); id != "second" {
			t.Errorf("current entry id = %q, want %q", id, "second")
		}

		backup, err := b.LoadBackup(ctx)
		if err != nil {
			t.Fatalf("LoadBackup: %v", err)
		}
		if id := firstEntryID(t, backup); id != "first" {
			t.Errorf("backup entry id = %q, want %q", id, "first")
		}
	})

	t.Run("only one backup generation is kept", func(t *testing.T) {
		b := open(t)
		for i, id := range []string{"a", "b", "c"} {
			if err := b.Save(ctx, testSnapshot(t, id, int64(i+1))); err != nil {
				t.Fatalf("Save %q: %v", id, err)
			}
		}
		backup, err := b.LoadBackup(ctx)
		if err != nil {
			t.Fatalf("LoadBackup: %v", err)
		}
		if id := firstEntryID(t, backup); id != "b" {
			t.Errorf("backup entry id = %q, want %q", id, "b")
		}
	})

	t.Run("reset clears both slots", func(t *testing.T) {
		b := open(t)
		if err := b.Save(ctx, testSnapshot(t, "x", 1)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := b.Save(ctx, testSnapshot(t, "y", 2)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := b.Reset(ctx); err != nil {
			t.Fatalf("Reset: %v", err)
		}
		if _, err := b.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load after reset = %v, want ErrNotFound", err)
		}
		if _, err := b.LoadBackup(ctx); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadBackup after reset = %v, want ErrNotFound", err)
		}
	})
}

func TestFileBackend(t *testing.T) {
	runBackendTests(t, func(t *testing.T) Backend {
		b, err := NewFileBackend(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileBackend: %v", err)
		}
		t.Cleanup(func() { b.Close() })
		return b
	})

	ctx := context.Background()

	t.Run("backup slot readable when current file is gone", func(t *testing.T) {
		dir := t.TempDir()
		b, err := NewFileBackend(dir)
		if err != nil {
			t.Fatalf("NewFileBackend: %v", err)
		}
		if err := b.Save(ctx, testSnapshot(t, "old", 1)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := b.Save(ctx, testSnapshot(t, "new", 2)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := os.Remove(filepath.Join(dir, currentFileName)); err != nil {
			t.Fatalf("remove current file: %v", err)
		}

		if _, err := b.Load(ctx); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Load = %v, want ErrNotFound", err)
		}
		backup, err := b.LoadBackup(ctx)
		if err != nil {
			t.Fatalf("LoadBackup: %v", err)
		}
		if id := firstEntryID(t, backup); id != "old" {
			t.Errorf("backup entry id = %q, want %q", id, "old")
		}
	})

	t.Run("save leaves only the two slot files", func(t *testing.T) {
		dir := t.TempDir()
		b, err := NewFileBackend(dir)
		if err != nil {
			t.Fatalf("NewFileBackend: %v", err)
		}
		if err := b.Save(ctx, testSnapshot(t, "a", 1)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := b.Save(ctx, testSnapshot(t, "b", 2)); err != nil {
			t.Fatalf("Save: %v", err)
		}

		names, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		for _, f := range names {
			if f.Name() != currentFileName && f.Name() != backupFileName {
				t.Errorf("stray file left behind: %s", f.Name())
			}
		}
		if len(names) != 2 {
			t.Errorf("data directory holds %d files, want 2", len(names))
		}
	})
}

func TestSQLiteBackend(t *testing.T) {
	runBackendTests(t, func(t *testing.T) Backend {
		b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "ledger.db"))
		if err != nil {
			t.Fatalf("NewSQLiteBackend: %v", err)
		}
		t.Cleanup(func() { b.Close() })
		return b
	})
}
