package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Snapshot is a complete serialized copy of the ledger at a point in time.
// Entries maps YYYY-MM month keys to the bucket's entries in insertion
// order.
type Snapshot struct {
	Entries     map[string][]Entry `json:"entries"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

// NewSnapshot returns an empty snapshot stamped with the given time.
func NewSnapshot(now time.Time) Snapshot {
	return Snapshot{Entries: make(map[string][]Entry), LastUpdated: now}
}

// EntryCount returns the number of entries across all buckets.
func (s Snapshot) EntryCount() int {
	n := 0
	for _, bucket := range s.Entries {
		n += len(bucket)
	}
	return n
}

// MonthKeys returns the bucket keys in ascending order.
func (s Snapshot) MonthKeys() []string {
	keys := make([]string, 0, len(s.Entries))
	for k := range s.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy so callers can hand snapshots out without
// exposing the ledger's internal buckets.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Entries:     make(map[string][]Entry, len(s.Entries)),
		LastUpdated: s.LastUpdated,
	}
	for k, bucket := range s.Entries {
		cp := make([]Entry, len(bucket))
		copy(cp, bucket)
		out.Entries[k] = cp
	}
	return out
}

// rawEntry mirrors the wire shape of one entry with the amount kept as a
// raw token so a non-numeric value is reported as a diagnostic instead of
// aborting the whole decode with an opaque error.
type rawEntry struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"createdAt"`
}

// ParseSnapshot decodes and validates an imported snapshot payload. It is
// all-or-nothing: any structural problem yields a *ValidationError and no
// snapshot. Requirements: an "entries" mapping must be present, every
// bucket must be a sequence, and every element needs a non-empty id, a
// recognized kind and a numeric amount. Dates and timestamps are carried
// over as-is; integrity validation re-checks amounts afterwards.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw struct {
		Entries     map[string]json.RawMessage `json:"entries"`
		LastUpdated string                     `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, NewValidationError(fmt.Sprintf("payload is not valid JSON: %v", err))
	}
	if raw.Entries == nil {
		return Snapshot{}, NewValidationError("missing 'entries' mapping")
	}

	keys := make([]string, 0, len(raw.Entries))
	for k := range raw.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	snap := Snapshot{Entries: make(map[string][]Entry, len(raw.Entries))}
	var problems []string

	for _, monthKey := range keys {
		var bucket []rawEntry
		if err := json.Unmarshal(raw.Entries[monthKey], &bucket); err != nil {
			problems = append(problems, fmt.Sprintf("bucket %s is not a sequence of entries", monthKey))
			continue
		}
		entries := make([]Entry, 0, len(bucket))
		for i, re := range bucket {
			where := fmt.Sprintf("bucket %s entry %d", monthKey, i)
			if re.ID == "" {
				problems = append(problems, where+": missing id")
			}
			kind := Kind(re.Kind)
			if err := kind.Validate(); err != nil {
				problems = append(problems, fmt.Sprintf("%s: unrecognized kind %q", where, re.Kind))
			}
			var amount Money
			if len(re.Amount) == 0 {
				problems = append(problems, where+": missing amount")
			} else if err := amount.UnmarshalJSON(re.Amount); err != nil {
				problems = append(problems, fmt.Sprintf("%s: amount %s is not numeric", where, re.Amount))
			}
			date, _ := ParseDate(re.Date)
			createdAt, _ := time.Parse(time.RFC3339, re.CreatedAt)
			entries = append(entries, Entry{
				ID:          re.ID,
				Kind:        kind,
				Amount:      amount,
				Description: re.Description,
				Category:    Category(re.Category),
				Date:        date,
				CreatedAt:   createdAt,
			})
		}
		snap.Entries[monthKey] = entries
	}

	if len(problems) > 0 {
		return Snapshot{}, &ValidationError{Problems: problems}
	}
	if t, err := time.Parse(time.RFC3339, raw.LastUpdated); err == nil {
		snap.LastUpdated = t
	}
	return snap, nil
}
