package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/revelation/internal/event"
)

// Memory is an in-process Log.
//
// Thread-safety: Memory is safe for concurrent use via internal mutex.
type Memory struct {
	mu     sync.RWMutex
	events []event.Event
	ids    map[string]struct{}
}

// NewMemory creates an empty log.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// Append implements Log.
func (m *Memory) Append(_ context.Context, evt event.Event) (bool, error) {
	if evt.ID == "" {
		return false, fmt.Errorf("append: %w", ErrMissingID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[evt.ID]; ok {
		return false, nil
	}
	m.ids[evt.ID] = struct{}{}
	m.events = append(m.events, evt)
	return true, nil
}

// Events implements Log. The returned slice is a copy.
func (m *Memory) Events(_ context.Context, space string) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]event.Event, 0, len(m.events))
	for _, evt := range m.events {
		if space == "" || evt.Space == space {
			out = append(out, evt)
		}
	}
	return out, nil
}

// Len returns the number of events.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
