// Package ledger holds the in-memory ledger state and mediates every
// mutation through a persistence backend. The application assumes a
// single active session; the mutex below only guards against accidental
// concurrent HTTP requests, there is no cross-process coordination.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/aggregate"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/backend"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
)

// Export envelope identification, kept stable so exported files remain
// importable across versions.
const (
	ExportVersion = "1.0"
	ExportSource  = "APAE Salto Veloso - Sistema Financeiro"
)

// Store is the single authority over ledger state. All reads come from
// the cached snapshot; all writes persist through the backend before
// returning.
type Store struct {
	mu      sync.Mutex
	backend backend.Backend
	logger  *log.Logger

	snap   core.Snapshot
	loaded bool

	now func() time.Time
}

func NewStore(b backend.Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		backend: b,
		logger:  logger.WithComponent(log.ComponentLedger),
		now:     time.Now,
	}
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ensureLoaded populates the cached snapshot on first use. A failed load
// degrades to the backup slot, and a failed backup load degrades to an
// empty ledger; reads never fail hard.
func (s *Store) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	snap, err := s.backend.Load(ctx)
	if err == nil {
		s.snap = snap
		return
	}
	if err != backend.ErrNotFound {
		s.logger.WarnContext(ctx, "current snapshot unreadable, trying backup",
			log.FieldError, err.Error())
	}
	snap, berr := s.backend.LoadBackup(ctx)
	if berr == nil {
		if err == backend.ErrNotFound {
			s.logger.WarnContext(ctx, "current snapshot missing, recovered from backup")
		}
		s.snap = snap
		return
	}
	if berr != backend.ErrNotFound {
		s.logger.WarnContext(ctx, "backup snapshot unreadable, starting empty",
			log.FieldError, berr.Error())
	}
	s.snap = core.NewSnapshot(s.now())
}

// commit persists the candidate snapshot and only then makes it the
// cached state, so a failed save leaves the served ledger exactly as it
// was. Callers must hold the mutex.
func (s *Store) commit(ctx context.Context, op string, next core.Snapshot) error {
	next.LastUpdated = s.now()
	if err := s.backend.Save(ctx, next); err != nil {
		return &core.PersistenceError{Op: op, Err: err}
	}
	s.snap = next
	return nil
}

// AddEntry validates and stores a single entry in its month bucket.
func (s *Store) AddEntry(ctx context.Context, e core.Entry) error {
	return s.AddEntries(ctx, []core.Entry{e})
}

// AddEntries stores a batch of entries in one persist, used for
// recurring entries. The whole batch is rejected if any entry is
// invalid.
func (s *Store) AddEntries(ctx context.Context, entries []core.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	next := s.snap.Clone()
	for _, e := range entries {
		key := e.Date.MonthKey()
		next.Entries[key] = append(next.Entries[key], e)
	}
	if err := s.commit(ctx, "add entries", next); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "entries added",
		log.FieldOperation, log.OpCreate,
		log.FieldEntryCount, len(entries),
		log.FieldMonthKey, entries[0].Date.MonthKey())
	return nil
}

// GetMonthEntries returns the bucket for year/month in insertion order.
func (s *Store) GetMonthEntries(ctx context.Context, year, month int) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	bucket := s.snap.Entries[monthKey(year, month)]
	out := make([]core.Entry, len(bucket))
	copy(out, bucket)
	return out
}

// GetYearEntries concatenates the year's twelve buckets sorted by date
// ascending.
func (s *Store) GetYearEntries(ctx context.Context, year int) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	var all []core.Entry
	for month := 1; month <= 12; month++ {
		all = append(all, s.snap.Entries[monthKey(year, month)]...)
	}
	return aggregate.SortByDate(all)
}

// GetAllEntries returns every entry across all buckets sorted by date
// ascending.
func (s *Store) GetAllEntries(ctx context.Context) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	var all []core.Entry
	for _, key := range s.snap.MonthKeys() {
		all = append(all, s.snap.Entries[key]...)
	}
	return aggregate.SortByDate(all)
}

// Patch carries the mutable fields of an entry; nil fields are left
// unchanged.
type Patch struct {
	Kind        *core.Kind
	Amount      *core.Money
	Description *string
	Category    *core.Category
	Date        *core.Date
}

func (p Patch) apply(e core.Entry) core.Entry {
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// UpdateEntry applies a patch to the entry with the given id. When the
// patch moves the date across a month boundary the entry is re-bucketed
// so the bucket key always matches the entry date. Returns false when no
// entry has that id; nothing is persisted in that case.
func (s *Store) UpdateEntry(ctx context.Context, id string, patch Patch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	key, idx, found := s.locate(id)
	if !found {
		return false, nil
	}

	updated := patch.apply(s.snap.Entries[key][idx])
	if err := updated.Validate(); err != nil {
		return true, err
	}

	next := s.snap.Clone()
	newKey := updated.Date.MonthKey()
	if newKey == key {
		next.Entries[key][idx] = updated
	} else {
		removeAt(next, key, idx)
		next.Entries[newKey] = append(next.Entries[newKey], updated)
	}

	if err := s.commit(ctx, "update entry", next); err != nil {
		return true, err
	}
	s.logger.InfoContext(ctx, "entry updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldEntryID, id,
		log.FieldMonthKey, newKey)
	return true, nil
}

// DeleteEntry removes the entry with the given id. Returns false when no
// entry has that id; a no-op delete does not persist, so lastUpdated is
// untouched.
func (s *Store) DeleteEntry(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	key, idx, found := s.locate(id)
	if !found {
		return false, nil
	}
	next := s.snap.Clone()
	removeAt(next, key, idx)

	if err := s.commit(ctx, "delete entry", next); err != nil {
		return true, err
	}
	s.logger.InfoContext(ctx, "entry deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldEntryID, id)
	return true, nil
}

// locate scans every bucket for the entry id. Linear scan is fine at
// this scale; buckets are visited in sorted key order so results are
// deterministic even with duplicate ids. Callers must hold the mutex.
func (s *Store) locate(id string) (key string, idx int, found bool) {
	for _, k := range s.snap.MonthKeys() {
		for i, e := range s.snap.Entries[k] {
			if e.ID == id {
				return k, i, true
			}
		}
	}
	return "", 0, false
}

// removeAt deletes the entry at idx from the bucket, dropping the bucket
// entirely when it becomes empty.
func removeAt(snap core.Snapshot, key string, idx int) {
	bucket := snap.Entries[key]
	bucket = append(bucket[:idx], bucket[idx+1:]...)
	if len(bucket) == 0 {
		delete(snap.Entries, key)
	} else {
		snap.Entries[key] = bucket
	}
}

type exportEnvelope struct {
	Entries     map[string][]core.Entry `json:"entries"`
	LastUpdated time.Time               `json:"lastUpdated"`
	ExportedAt  time.Time               `json:"exportedAt"`
	Version     string                  `json:"version"`
	Source      string                  `json:"source"`
}

// ExportSnapshot serializes the full ledger with export metadata,
// indented for hand inspection.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	env := exportEnvelope{
		Entries:     s.snap.Entries,
		LastUpdated: s.snap.LastUpdated,
		ExportedAt:  s.now(),
		Version:     ExportVersion,
		Source:      ExportSource,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	s.logger.InfoContext(ctx, "snapshot exported",
		log.FieldOperation, log.OpExport,
		log.FieldEntryCount, s.snap.EntryCount())
	return data, nil
}

// ImportSnapshot replaces the entire ledger with the parsed payload.
// Validation is all-or-nothing: any malformed element rejects the whole
// import and the current ledger is left untouched, as is a persist
// failure. The previous state survives in the backup slot because Save
// rotates before overwriting.
func (s *Store) ImportSnapshot(ctx context.Context, raw []byte) error {
	parsed, err := core.ParseSnapshot(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	if err := s.commit(ctx, "import snapshot", parsed); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "snapshot imported",
		log.FieldOperation, log.OpImport,
		log.FieldEntryCount, s.snap.EntryCount())
	return nil
}

// ValidateIntegrity walks every bucket and entry, collecting every
// diagnostic it finds instead of stopping at the first. An empty result
// means the ledger is healthy.
func (s *Store) ValidateIntegrity(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	var problems []string
	seen := make(map[string]string)
	for _, key := range s.snap.MonthKeys() {
		if _, err := time.Parse("2006-01", key); err != nil {
			problems = append(problems, fmt.Sprintf("bucket %q: key is not a valid YYYY-MM month", key))
		}
		for i, e := range s.snap.Entries[key] {
			where := fmt.Sprintf("bucket %s, entry %d", key, i)
			if e.ID != "" {
				where = fmt.Sprintf("%s (id %s)", where, e.ID)
			}
			if err := e.Validate(); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", where, err))
			}
			if !e.Date.IsZero() && e.Date.MonthKey() != key {
				problems = append(problems, fmt.Sprintf("%s: date %s does not belong to bucket %s", where, e.Date, key))
			}
			if e.ID != "" {
				if prev, dup := seen[e.ID]; dup {
					problems = append(problems, fmt.Sprintf("%s: duplicate id, first seen in %s", where, prev))
				} else {
					seen[e.ID] = key
				}
			}
		}
	}
	return problems
}

// Stats summarizes the ledger for the system status endpoint.
type Stats struct {
	Months      int       `json:"months"`
	Entries     int       `json:"entries"`
	Inflows     int       `json:"inflows"`
	Outflows    int       `json:"outflows"`
	OldestEntry string    `json:"oldestEntry,omitempty"`
	NewestEntry string    `json:"newestEntry,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (s *Store) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoaded(ctx)

	st := Stats{
		Months:      len(s.snap.Entries),
		LastUpdated: s.snap.LastUpdated,
	}
	var oldest, newest core.Date
	for _, bucket := range s.snap.Entries {
		for _, e := range bucket {
			st.Entries++
			if e.Kind == core.Inflow {
				st.Inflows++
			} else {
				st.Outflows++
			}
			if oldest.IsZero() || e.Date.Before(oldest.Time) {
				oldest = e.Date
			}
			if newest.IsZero() || e.Date.After(newest.Time) {
				newest = e.Date
			}
		}
	}
	if !oldest.IsZero() {
		st.OldestEntry = oldest.String()
		st.NewestEntry = newest.String()
	}
	return st
}

// Reset wipes the ledger and both persisted slots.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Reset(ctx); err != nil {
		return &core.PersistenceError{Op: "reset", Err: err}
	}
	s.snap = core.NewSnapshot(s.now())
	s.loaded = true
	s.logger.InfoContext(ctx, "ledger reset", log.FieldOperation, log.OpReset)
	return nil
}
