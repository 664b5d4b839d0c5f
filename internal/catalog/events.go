// Activity log: an append-only table of note-lifecycle events, queryable
// through the same connection as the rest of the catalog rather than a
// side file.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is an append-only activity-log row.
type Event struct {
	ID        int64
	Actor     string
	Kind      string
	NoteID    string
	CreatedAt time.Time
	Summary   string
	Payload   any
}

// AppendEvent records one activity event.
func (c *Catalog) AppendEvent(ctx context.Context, e Event) error {
	var payload []byte
	if e.Payload != nil {
		var err error
		payload, err = json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("marshaling event payload: %w", err)
		}
	}
	var noteID any
	if e.NoteID != "" {
		noteID = e.NoteID
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO events (actor, event_kind, note_id, created_at, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Actor, e.Kind, noteID, e.CreatedAt, e.Summary, nullIfEmptyBytes(payload))
	if err != nil {
		return fmt.Errorf("appending event: %w", err)
	}
	return nil
}

func nullIfEmptyBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// ListEvents returns events newest-first, paginated.
func (c *Catalog) ListEvents(ctx context.Context, limit, offset int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, actor, event_kind, COALESCE(note_id, ''), created_at, summary, COALESCE(payload, '')
		FROM events ORDER BY id DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var payload string
		if err := rows.Scan(&e.ID, &e.Actor, &e.Kind, &e.NoteID, &e.CreatedAt, &e.Summary, &payload); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		if payload != "" {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err == nil {
				e.Payload = v
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
