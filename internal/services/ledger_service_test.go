package services

import (
	"context"
	"errors"
	"testing"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/backend"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/events"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/ledger"
)

type recordingPublisher struct {
	messages []*events.LedgerEventMessage
	fail     bool
}

func (p *recordingPublisher) Publish(ctx context.Context, msg *events.LedgerEventMessage) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.messages = append(p.messages, msg)
	return nil
}

func newTestLedgerService(t *testing.T) (*LedgerService, *recordingPublisher, *int) {
	t.Helper()
	b, err := backend.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	pub := &recordingPublisher{}
	changes := 0
	svc := NewLedgerService(ledger.NewStore(b, nil), pub, func() { changes++ }, nil)
	return svc, pub, &changes
}

func input(kind core.Kind, cents int64) EntryInput {
	in := EntryInput{
		Kind:   kind,
		Amount: core.Money{Cents: cents},
		Date:   core.NewDate(2025, 3, 10),
	}
	if kind == core.Outflow {
		in.Category = core.CategoryOther
	}
	return in
}

func TestCreateEntryAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	svc, pub, changes := newTestLedgerService(t)

	e, err := svc.CreateEntry(ctx, input(core.Inflow, 12345))
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if e.ID == "" {
		t.Error("entry has no id")
	}
	if e.CreatedAt.IsZero() {
		t.Error("entry has no creation time")
	}

	if len(pub.messages) != 1 || pub.messages[0].Action != events.ActionCreated {
		t.Errorf("published = %+v, want one created event", pub.messages)
	}
	if pub.messages[0].EntryID != e.ID || pub.messages[0].MonthKey != "2025-03" {
		t.Errorf("event = %+v", pub.messages[0])
	}
	if *changes != 1 {
		t.Errorf("onChange calls = %d, want 1", *changes)
	}
}

func TestCreateEntriesRepeat(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		repeat int
		want   int
	}{
		{"normal", 12, 12},
		{"below minimum", 0, 1},
		{"negative", -3, 1},
		{"above maximum", 150, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestLedgerService(t)
			batch, err := svc.CreateEntries(ctx, input(core.Outflow, 500), tt.repeat)
			if err != nil {
				t.Fatalf("CreateEntries: %v", err)
			}
			if len(batch) != tt.want {
				t.Fatalf("len(batch) = %d, want %d", len(batch), tt.want)
			}

			seen := make(map[string]bool)
			for _, e := range batch {
				if seen[e.ID] {
					t.Fatalf("duplicate id in batch: %s", e.ID)
				}
				seen[e.ID] = true
			}
			if got := svc.MonthEntries(ctx, 2025, 3); len(got) != tt.want {
				t.Errorf("stored %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestDeleteNotFoundPublishesNothing(t *testing.T) {
	ctx := context.Background()
	svc, pub, changes := newTestLedgerService(t)

	found, err := svc.DeleteEntry(ctx, "missing")
	if err != nil || found {
		t.Fatalf("DeleteEntry = (%v, %v), want (false, nil)", found, err)
	}
	if len(pub.messages) != 0 {
		t.Errorf("no-op delete published %d events", len(pub.messages))
	}
	if *changes != 0 {
		t.Errorf("no-op delete invalidated caches %d times", *changes)
	}
}

func TestImportPublishesCount(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestLedgerService(t)

	if _, err := svc.CreateEntries(ctx, input(core.Inflow, 100), 3); err != nil {
		t.Fatalf("CreateEntries: %v", err)
	}
	data, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	count, err := svc.Import(ctx, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if count != 3 {
		t.Errorf("imported count = %d, want 3", count)
	}

	last := pub.messages[len(pub.messages)-1]
	if last.Action != events.ActionImported || last.Count != 3 {
		t.Errorf("last event = %+v, want imported with count 3", last)
	}
}

func TestImportInvalidPublishesNothing(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestLedgerService(t)

	_, err := svc.Import(ctx, []byte(`{"noEntries": true}`))
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Import error = %v, want *core.ValidationError", err)
	}
	if len(pub.messages) != 0 {
		t.Errorf("failed import published %d events", len(pub.messages))
	}
}

func TestPublisherFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newTestLedgerService(t)
	pub.fail = true

	if _, err := svc.CreateEntry(ctx, input(core.Inflow, 100)); err != nil {
		t.Fatalf("CreateEntry failed on publisher error: %v", err)
	}
	if got := svc.MonthEntries(ctx, 2025, 3); len(got) != 1 {
		t.Errorf("entry not stored despite publisher failure")
	}
}

func TestSummaries(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestLedgerService(t)

	if _, err := svc.CreateEntry(ctx, input(core.Inflow, 10000)); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := svc.CreateEntry(ctx, input(core.Outflow, 4000)); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	sum := svc.MonthSummary(ctx, 2025, 3)
	if sum.Balance.Cents != 6000 || sum.Count != 2 {
		t.Errorf("MonthSummary = %+v", sum)
	}
	if got := svc.OverallSummary(ctx); got.Balance.Cents != 6000 {
		t.Errorf("OverallSummary balance = %d", got.Balance.Cents)
	}
	if got := svc.YearSummary(ctx, 2024); got.Count != 0 {
		t.Errorf("YearSummary(2024) = %+v, want empty", got)
	}
}
