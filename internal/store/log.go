package store

import (
	"context"
	"errors"

	"github.com/roach88/revelation/internal/event"
)

// ErrMissingID is returned when appending an event without an id.
var ErrMissingID = errors.New("event has no id")

// Log is an append-only, ordered event log.
type Log interface {
	// Append adds evt at the end of the log. It reports false, without
	// error, when an event with the same id is already present.
	Append(ctx context.Context, evt event.Event) (bool, error)

	// Events returns the log in append order. An empty space returns
	// every event; otherwise only events of that space.
	Events(ctx context.Context, space string) ([]event.Event, error)
}

// AppendAll appends events in order and returns how many were new.
func AppendAll(ctx context.Context, log Log, events []event.Event) (int, error) {
	added := 0
	for _, evt := range events {
		ok, err := log.Append(ctx, evt)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}
