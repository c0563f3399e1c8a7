package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/revelation/internal/event"
)

// marshalPayload stores a raw payload as compact JSON TEXT. Strings and
// number literals are kept as written; only the digest column is
// canonical. An absent payload is stored as NULL.
func marshalPayload(payload json.RawMessage) (sql.NullString, error) {
	if len(payload) == 0 {
		return sql.NullString{}, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return sql.NullString{}, fmt.Errorf("marshal payload: %w", err)
	}
	return sql.NullString{String: buf.String(), Valid: true}, nil
}

// unmarshalPayload restores a stored payload. NULL becomes absent.
func unmarshalPayload(data sql.NullString) json.RawMessage {
	if !data.Valid {
		return nil
	}
	return json.RawMessage(data.String)
}

func marshalTS(ts *float64) sql.NullFloat64 {
	if ts == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *ts, Valid: true}
}

func unmarshalTS(ts sql.NullFloat64) *float64 {
	if !ts.Valid {
		return nil
	}
	return event.TimeStamp(ts.Float64)
}
