// Package testutil builds deterministic event logs for tests.
package testutil

import (
	"github.com/roach88/revelation/internal/event"
)

// Default envelope fields for built events.
const (
	DefaultActor = "tester"
	DefaultSpace = "canvas"
)

// Log builds an ordered event log with sequential ids ("evt-1", "evt-2", ...).
//
// Events are untimed unless a clock is attached with Clock or a fixed
// timestamp is set with At.
//
// Example:
//
//	events := testutil.NewLog().
//		NodeAdd("a", 10, 20).
//		NodeAdd("b", 30, 20).
//		EdgeAdd("ab", "a", "b").
//		Events()
type Log struct {
	ids    *event.SequentialGenerator
	clock  *DeterministicClock
	ts     *float64
	actor  string
	space  string
	events []event.Event
}

// NewLog creates an empty builder.
func NewLog() *Log {
	return &Log{
		ids:   event.NewSequentialGenerator("evt"),
		actor: DefaultActor,
		space: DefaultSpace,
	}
}

// Clock stamps every following event with the clock's next timestamp.
func (l *Log) Clock(c *DeterministicClock) *Log {
	l.clock = c
	l.ts = nil
	return l
}

// At stamps every following event with ts until changed.
func (l *Log) At(ts float64) *Log {
	l.ts = event.TimeStamp(ts)
	l.clock = nil
	return l
}

// Untimed stops stamping timestamps.
func (l *Log) Untimed() *Log {
	l.ts = nil
	l.clock = nil
	return l
}

// Actor sets the actor of following events.
func (l *Log) Actor(actor string) *Log {
	l.actor = actor
	return l
}

// Add appends an event of any type. A nil payload leaves the payload absent.
func (l *Log) Add(typ event.Type, payload map[string]any) *Log {
	evt := event.Event{
		ID:    l.ids.Generate(),
		Actor: l.actor,
		Type:  typ,
		Space: l.space,
	}
	switch {
	case l.clock != nil:
		evt.TS = event.TimeStamp(l.clock.Next())
	case l.ts != nil:
		evt.TS = event.TimeStamp(*l.ts)
	}
	if payload != nil {
		evt.Payload = event.MustPayload(payload)
	}
	l.events = append(l.events, evt)
	return l
}

// NodeAdd appends a node.add at (x, y).
func (l *Log) NodeAdd(id string, x, y float64) *Log {
	return l.Add(event.TypeNodeAdd, map[string]any{"id": id, "x": x, "y": y})
}

// FixedNodeAdd appends a node.add for a pinned particle.
func (l *Log) FixedNodeAdd(id string, x, y float64) *Log {
	return l.Add(event.TypeNodeAdd, map[string]any{"id": id, "x": x, "y": y, "fixed": true})
}

// NodeMove appends a node.move to (x, y).
func (l *Log) NodeMove(id string, x, y float64) *Log {
	return l.Add(event.TypeNodeMove, map[string]any{"id": id, "x": x, "y": y})
}

// NodeSelect appends a node.select.
func (l *Log) NodeSelect(id string) *Log {
	return l.Add(event.TypeNodeSelect, map[string]any{"id": id})
}

// EdgeAdd appends an edge.add between two node ids.
func (l *Log) EdgeAdd(id, from, to string) *Log {
	return l.Add(event.TypeEdgeAdd, map[string]any{"id": id, "from": from, "to": to})
}

// EdgeAddWith appends an edge.add with extra payload fields merged in.
func (l *Log) EdgeAddWith(id, from, to string, extra map[string]any) *Log {
	payload := map[string]any{"id": id, "from": from, "to": to}
	for k, v := range extra {
		payload[k] = v
	}
	return l.Add(event.TypeEdgeAdd, payload)
}

// EdgeRemove appends an edge.remove.
func (l *Log) EdgeRemove(id string) *Log {
	return l.Add(event.TypeEdgeRemove, map[string]any{"id": id})
}

// CursorMove appends an ephemeral cursor.move.
func (l *Log) CursorMove(x, y float64) *Log {
	l.Add(event.TypeCursorMove, map[string]any{"x": x, "y": y})
	l.events[len(l.events)-1].Ephemeral = true
	return l
}

// SceneTransform appends a scene.transform.
func (l *Log) SceneTransform() *Log {
	return l.Add(event.TypeSceneTransform, map[string]any{"scale": 1})
}

// Events returns a copy of the built log.
func (l *Log) Events() []event.Event {
	return append([]event.Event(nil), l.events...)
}

// Len returns the number of events built so far.
func (l *Log) Len() int {
	return len(l.events)
}
