package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/event"
)

// Append implements Log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate ids are
// silently ignored and reported as false.
func (s *SQLite) Append(ctx context.Context, evt event.Event) (bool, error) {
	if evt.ID == "" {
		return false, fmt.Errorf("append: %w", ErrMissingID)
	}

	payload, err := marshalPayload(evt.Payload)
	if err != nil {
		return false, fmt.Errorf("append %q: %w", evt.ID, err)
	}
	digest, err := canonical.EventDigest(evt)
	if err != nil {
		return false, fmt.Errorf("append %q: %w", evt.ID, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, ts, actor, type, space, payload, ephemeral, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		evt.ID,
		marshalTS(evt.TS),
		evt.Actor,
		string(evt.Type),
		evt.Space,
		payload,
		evt.Ephemeral,
		digest,
	)
	if err != nil {
		return false, fmt.Errorf("append %q: %w", evt.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append %q: %w", evt.ID, err)
	}
	if n == 0 {
		s.logger.Debug("duplicate event ignored", zap.String("id", evt.ID))
		return false, nil
	}
	return true, nil
}

// AppendBatch appends events in one transaction and returns how many
// were new. Either every event is written or none is.
func (s *SQLite) AppendBatch(ctx context.Context, events []event.Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("append batch: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(id, ts, actor, type, space, payload, ephemeral, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("append batch: prepare: %w", err)
	}
	defer stmt.Close()

	added := 0
	for i, evt := range events {
		if evt.ID == "" {
			return 0, fmt.Errorf("append batch: event %d: %w", i, ErrMissingID)
		}
		payload, err := marshalPayload(evt.Payload)
		if err != nil {
			return 0, fmt.Errorf("append batch: event %q: %w", evt.ID, err)
		}
		digest, err := canonical.EventDigest(evt)
		if err != nil {
			return 0, fmt.Errorf("append batch: event %q: %w", evt.ID, err)
		}
		res, err := stmt.ExecContext(ctx,
			evt.ID, marshalTS(evt.TS), evt.Actor, string(evt.Type), evt.Space,
			payload, evt.Ephemeral, digest,
		)
		if err != nil {
			return 0, fmt.Errorf("append batch: event %q: %w", evt.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("append batch: commit: %w", err)
	}
	s.logger.Debug("batch appended",
		zap.Int("events", len(events)),
		zap.Int("added", added),
	)
	return added, nil
}
