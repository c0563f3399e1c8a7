package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/ingest"
	"github.com/roach88/revelation/internal/testutil"
)

// canvasEvents is a small, fully valid log.
func canvasEvents() []event.Event {
	return testutil.NewLog().
		Clock(testutil.NewDeterministicClock(1000, 100)).
		NodeAdd("a", 0, 0).
		NodeAdd("b", 30, 40).
		NodeSelect("b").
		EdgeAdd("ab", "a", "b").
		Events()
}

func writeEventsFile(t *testing.T, name string, events []event.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ingest.WriteFile(path, events))
	return path
}

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
