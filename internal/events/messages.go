package events

import (
	"encoding/json"
	"time"
)

// Actions carried by ledger event messages.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionImported = "imported"
	ActionReset    = "reset"
)

// LedgerEventMessage notifies downstream consumers that the ledger
// changed. It carries identifiers only; consumers fetch current state
// from the API if they need it.
type LedgerEventMessage struct {
	Action    string    `json:"action"`
	EntryID   string    `json:"entryId,omitempty"`
	MonthKey  string    `json:"monthKey,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEvent builds a message about a single entry.
func NewEntryEvent(action, entryID, monthKey string) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:    action,
		EntryID:   entryID,
		MonthKey:  monthKey,
		Timestamp: time.Now(),
	}
}

// NewBulkEvent builds a message about a whole-ledger change such as an
// import or a reset.
func NewBulkEvent(action string, count int) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:    action,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func FromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
