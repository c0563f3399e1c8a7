package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/revelation/internal/event"
)

// Events implements Log. Results are ordered by seq, the append order.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *SQLite) Events(ctx context.Context, space string) ([]event.Event, error) {
	query := `
		SELECT id, ts, actor, type, space, payload, ephemeral
		FROM events
		ORDER BY seq ASC
	`
	args := []any{}
	if space != "" {
		query = `
		SELECT id, ts, actor, type, space, payload, ephemeral
		FROM events
		WHERE space = ?
		ORDER BY seq ASC
	`
		args = append(args, space)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Spaces returns the distinct spaces in order of first appearance.
func (s *SQLite) Spaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT space FROM events GROUP BY space ORDER BY MIN(seq) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query spaces: %w", err)
	}
	defer rows.Close()

	spaces := []string{}
	for rows.Next() {
		var space string
		if err := rows.Scan(&space); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, space)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spaces: %w", err)
	}
	return spaces, nil
}

// Digest returns the stored digest of one event.
func (s *SQLite) Digest(ctx context.Context, id string) (string, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM events WHERE id = ?`, id).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("event %q not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("query digest: %w", err)
	}
	return digest, nil
}

func scanEvent(rows *sql.Rows) (event.Event, error) {
	var (
		evt       event.Event
		ts        sql.NullFloat64
		typ       string
		payload   sql.NullString
		ephemeral bool
	)
	if err := rows.Scan(&evt.ID, &ts, &evt.Actor, &typ, &evt.Space, &payload, &ephemeral); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	evt.TS = unmarshalTS(ts)
	evt.Type = event.Type(typ)
	evt.Payload = unmarshalPayload(payload)
	evt.Ephemeral = ephemeral
	return evt, nil
}
