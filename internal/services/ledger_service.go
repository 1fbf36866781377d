// Package services wires the ledger store, aggregation and report
// rendering behind the operations the HTTP layer exposes.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/aggregate"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/events"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/ledger"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
)

// Recurring entries are capped to the same range the entry form allows.
const (
	minRepeat = 1
	maxRepeat = 100
)

// EventPublisher is satisfied by events.Client. Publishing is best
// effort; a lost notification never fails the operation that caused it.
type EventPublisher interface {
	Publish(ctx context.Context, msg *events.LedgerEventMessage) error
}

type LedgerService struct {
	store     *ledger.Store
	publisher EventPublisher // nil when no broker is configured
	onChange  func()         // invalidates cached reports, nil in tests
	logger    *log.Logger
	now       func() time.Time
}

func NewLedgerService(store *ledger.Store, publisher EventPublisher, onChange func(), logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		onChange:  onChange,
		logger:    logger.WithComponent(log.ComponentLedger),
		now:       time.Now,
	}
}

// EntryInput carries the fields a caller provides for a new entry; the
// service assigns the identifier and creation time.
type EntryInput struct {
	Kind        core.Kind
	Amount      core.Money
	Description string
	Category    core.Category
	Date        core.Date
}

func (s *LedgerService) newEntry(in EntryInput) core.Entry {
	return core.Entry{
		ID:          uuid.NewString(),
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		CreatedAt:   s.now(),
	}
}

// CreateEntry stores one entry and returns it with its assigned id.
func (s *LedgerService) CreateEntry(ctx context.Context, in EntryInput) (core.Entry, error) {
	entries, err := s.CreateEntries(ctx, in, 1)
	if err != nil {
		return core.Entry{}, err
	}
	return entries[0], nil
}

// CreateEntries stores repeat copies of the input, each with its own
// id, in a single persist. Repeat is clamped to 1..100.
func (s *LedgerService) CreateEntries(ctx context.Context, in EntryInput, repeat int) ([]core.Entry, error) {
	if repeat < minRepeat {
		repeat = minRepeat
	}
	if repeat > maxRepeat {
		repeat = maxRepeat
	}

	batch := make([]core.Entry, repeat)
	for i := range batch {
		batch[i] = s.newEntry(in)
	}
	if err := s.store.AddEntries(ctx, batch); err != nil {
		return nil, err
	}
	s.changed()
	if repeat == 1 {
		s.publish(ctx, events.NewEntryEvent(events.ActionCreated, batch[0].ID, batch[0].Date.MonthKey()))
	} else {
		s.publish(ctx, events.NewBulkEvent(events.ActionCreated, repeat))
	}
	return batch, nil
}

func (s *LedgerService) UpdateEntry(ctx context.Context, id string, patch ledger.Patch) (bool, error) {
	found, err := s.store.UpdateEntry(ctx, id, patch)
	if err != nil || !found {
		return found, err
	}
	s.changed()
	s.publish(ctx, events.NewEntryEvent(events.ActionUpdated, id, ""))
	return true, nil
}

func (s *LedgerService) DeleteEntry(ctx context.Context, id string) (bool, error) {
	found, err := s.store.DeleteEntry(ctx, id)
	if err != nil || !found {
		return found, err
	}
	s.changed()
	s.publish(ctx, events.NewEntryEvent(events.ActionDeleted, id, ""))
	return true, nil
}

func (s *LedgerService) MonthEntries(ctx context.Context, year, month int) []core.Entry {
	return s.store.GetMonthEntries(ctx, year, month)
}

func (s *LedgerService) YearEntries(ctx context.Context, year int) []core.Entry {
	return s.store.GetYearEntries(ctx, year)
}

func (s *LedgerService) AllEntries(ctx context.Context) []core.Entry {
	return s.store.GetAllEntries(ctx)
}

// MonthSummary aggregates one month bucket.
func (s *LedgerService) MonthSummary(ctx context.Context, year, month int) aggregate.Summary {
	return aggregate.Summarize(s.store.GetMonthEntries(ctx, year, month))
}

func (s *LedgerService) YearSummary(ctx context.Context, year int) aggregate.Summary {
	return aggregate.Summarize(s.store.GetYearEntries(ctx, year))
}

func (s *LedgerService) OverallSummary(ctx context.Context) aggregate.Summary {
	return aggregate.Summarize(s.store.GetAllEntries(ctx))
}

func (s *LedgerService) Export(ctx context.Context) ([]byte, error) {
	return s.store.ExportSnapshot(ctx)
}

func (s *LedgerService) Import(ctx context.Context, raw []byte) (int, error) {
	if err := s.store.ImportSnapshot(ctx, raw); err != nil {
		return 0, err
	}
	count := s.store.Stats(ctx).Entries
	s.changed()
	s.publish(ctx, events.NewBulkEvent(events.ActionImported, count))
	return count, nil
}

func (s *LedgerService) Integrity(ctx context.Context) []string {
	return s.store.ValidateIntegrity(ctx)
}

func (s *LedgerService) Stats(ctx context.Context) ledger.Stats {
	return s.store.Stats(ctx)
}

func (s *LedgerService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}
	s.changed()
	s.publish(ctx, events.NewBulkEvent(events.ActionReset, 0))
	return nil
}

func (s *LedgerService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *LedgerService) publish(ctx context.Context, msg *events.LedgerEventMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			log.FieldOperation, log.OpPublish,
			"action", msg.Action,
			log.FieldError, err.Error())
	}
}
