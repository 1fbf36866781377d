package events

import (
	"strings"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := NewEntryEvent(ActionCreated, "abc-123", "2025-03")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.Action != ActionCreated || got.EntryID != "abc-123" || got.MonthKey != "2025-03" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not preserved")
	}
}

func TestBulkEventOmitsEntryFields(t *testing.T) {
	msg := NewBulkEvent(ActionImported, 42)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	s := string(data)
	if want := `"action":"imported"`; !strings.Contains(s, want) {
		t.Errorf("missing %s in %s", want, s)
	}
	if want := `"count":42`; !strings.Contains(s, want) {
		t.Errorf("missing %s in %s", want, s)
	}
	if strings.Contains(s, "entryId") || strings.Contains(s, "monthKey") {
		t.Errorf("bulk event should omit entry fields: %s", s)
	}
}
