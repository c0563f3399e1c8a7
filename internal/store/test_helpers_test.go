package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleEvents builds a small mixed log across two spaces.
func sampleEvents() []event.Event {
	events := testutil.NewLog().
		At(1700000000000).
		NodeAdd("a", 1, 2).
		NodeAdd("b", 3, 4).
		EdgeAdd("ab", "a", "b").
		Untimed().
		CursorMove(5, 6).
		Events()
	events[1].Space = "wiki"
	return events
}
