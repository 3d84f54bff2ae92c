// Package audit defines the change-history model: who changed which entity,
// when, and what the entity looked like afterwards. Storage (including
// compression of large payloads) lives in the postgres infrastructure layer.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockbook/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionPost   Action = "post"
)

// Entry is a single audit record. Changes holds the JSON snapshot of the
// entity after the operation; History readers can diff adjacent snapshots.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	UserID     string          `db:"user_id" json:"userId,omitempty"`
	Username   string          `db:"username" json:"username,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Recorder persists and retrieves audit entries.
type Recorder interface {
	// Record stores an entry. ID and CreatedAt are filled when zero.
	Record(ctx context.Context, entry *Entry) error

	// History returns entries for one entity, newest first.
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Diff calculates the per-field difference between two entity states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}

// DiffEntries rewrites a newest-first history so each entry's Changes holds
// the diff against the preceding snapshot. The oldest entry keeps its full
// snapshot. Entries with empty or malformed snapshots are left as is.
func DiffEntries(entries []Entry) []Entry {
	states := make([]map[string]any, len(entries))
	for i, e := range entries {
		if len(e.Changes) == 0 {
			continue
		}
		var state map[string]any
		if err := json.Unmarshal(e.Changes, &state); err == nil {
			states[i] = state
		}
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	for i := 0; i < len(out)-1; i++ {
		if states[i] == nil || states[i+1] == nil {
			continue
		}
		diff := Diff(states[i+1], states[i])
		raw, err := json.Marshal(diff)
		if err != nil {
			continue
		}
		out[i].Changes = raw
	}
	return out
}

func equal(a, b any) bool {
	// Values come from JSON decoding, so string forms compare reliably.
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
