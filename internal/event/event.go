package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Type identifies the semantic kind of an event.
// The vocabulary is open: unknown types pass through the pipeline untouched.
type Type string

// Recognized event types.
const (
	// TypeNodeAdd creates a node (first occurrence per id wins).
	TypeNodeAdd Type = "node.add"
	// TypeNodeMove repositions an existing node.
	TypeNodeMove Type = "node.move"
	// TypeNodeSelect marks a node as selected (and may pin it).
	TypeNodeSelect Type = "node.select"
	// TypeEdgeAdd connects two nodes or two literal points.
	TypeEdgeAdd Type = "edge.add"
	// TypeEdgeRemove soft-deletes an edge.
	TypeEdgeRemove Type = "edge.remove"
	// TypeCursorMove records ephemeral pointer activity.
	TypeCursorMove Type = "cursor.move"
	// TypeSceneTransform records a whole-scene transform gesture.
	TypeSceneTransform Type = "scene.transform"
)

// KnownTypes lists the recognized vocabulary in declaration order.
var KnownTypes = []Type{
	TypeNodeAdd,
	TypeNodeMove,
	TypeNodeSelect,
	TypeEdgeAdd,
	TypeEdgeRemove,
	TypeCursorMove,
	TypeSceneTransform,
}

// IsKnown reports whether t belongs to the recognized vocabulary.
func (t Type) IsKnown() bool {
	for _, k := range KnownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Event is one immutable entry of the append-only interaction log.
//
// TS is nil when the event carries no numeric timestamp; the timeline
// builder falls back to index-based offsets for such events.
// Payload is kept as raw JSON and decoded on demand by Decode.
type Event struct {
	ID        string          `json:"id"`
	TS        *float64        `json:"ts,omitempty"`
	Actor     string          `json:"actor"`
	Type      Type            `json:"type"`
	Space     string          `json:"space"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Ephemeral bool            `json:"ephemeral,omitempty"`
}

// HasTS reports whether the event carries a numeric timestamp.
func (e Event) HasTS() bool {
	return e.TS != nil
}

// wireEvent mirrors Event but keeps ts raw so non-numeric timestamps
// can be treated as absent instead of failing the whole record.
type wireEvent struct {
	ID        string          `json:"id"`
	TS        json.RawMessage `json:"ts,omitempty"`
	Actor     string          `json:"actor"`
	Type      Type            `json:"type"`
	Space     string          `json:"space"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Ephemeral bool            `json:"ephemeral,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler for Event.
// A ts that is not a JSON number (string, null, object) decodes as absent.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	*e = Event{
		ID:        w.ID,
		Actor:     w.Actor,
		Type:      w.Type,
		Space:     w.Space,
		Payload:   w.Payload,
		Ephemeral: w.Ephemeral,
	}

	trimmed := bytes.TrimSpace(w.TS)
	if len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')) {
		var ts float64
		if err := json.Unmarshal(trimmed, &ts); err == nil {
			e.TS = &ts
		}
	}
	return nil
}

// TimeStamp returns a pointer suitable for Event.TS.
func TimeStamp(ts float64) *float64 {
	return &ts
}

// EncodePayload marshals v into a raw payload.
// Used when building synthetic events (derived contracts, tests).
func EncodePayload(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return data, nil
}

// MustPayload is like EncodePayload but panics on error.
// Use only with values known to be JSON-encodable (maps of strings and numbers).
func MustPayload(v any) json.RawMessage {
	data, err := EncodePayload(v)
	if err != nil {
		panic(err)
	}
	return data
}
