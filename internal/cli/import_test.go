package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revelation/internal/canonical"
	"github.com/roach88/revelation/internal/ingest"
)

func importJSON(t *testing.T, args ...string) ImportResult {
	t.Helper()
	out, _, err := execute(t, append([]string{"--format", "json", "import"}, args...)...)
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   ImportResult
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestImport_AppendsAndDedups(t *testing.T) {
	events := canvasEvents()
	path := writeEventsFile(t, "log.jsonl", events)
	dbPath := filepath.Join(t.TempDir(), "log.db")

	first := importJSON(t, "--events", path, "--db", dbPath)
	assert.Equal(t, 4, first.Read)
	assert.Equal(t, 4, first.Appended)
	assert.Equal(t, 0, first.Duplicates)
	assert.Equal(t, 4, first.Summary.Events)

	digest, err := canonical.LogDigest(events)
	require.NoError(t, err)
	assert.Equal(t, digest, first.Summary.LogDigest)

	second := importJSON(t, "--events", path, "--db", dbPath)
	assert.Equal(t, 0, second.Appended)
	assert.Equal(t, 4, second.Duplicates)
	assert.Equal(t, first.Summary.LogDigest, second.Summary.LogDigest)
}

func TestImport_FillsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"ts":1,"actor":"a","type":"node.add","space":"canvas","payload":{"id":"n1"}}`+"\n"), 0o644))
	dbPath := filepath.Join(t.TempDir(), "log.db")

	result := importJSON(t, "--events", path, "--db", dbPath)
	assert.Equal(t, 1, result.Filled)
	assert.Equal(t, 1, result.Appended)

	out, _, err := execute(t, "export", "--db", dbPath)
	require.NoError(t, err)
	events, _, err := ingest.ReadJSONL(strings.NewReader(out), ingest.Options{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Len(t, events[0].ID, 36)
}

func TestImport_Text(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())
	dbPath := filepath.Join(t.TempDir(), "log.db")

	out, _, err := execute(t, "import", "--events", path, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Appended 4 of 4 event(s) to "+dbPath)
}

func TestImport_RequiresEvents(t *testing.T) {
	_, _, err := execute(t, "import", "--db", filepath.Join(t.TempDir(), "log.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestExport_RoundTripFormats(t *testing.T) {
	events := canvasEvents()
	dbPath := filepath.Join(t.TempDir(), "log.db")
	importJSON(t, "--events", writeEventsFile(t, "log.jsonl", events), "--db", dbPath)

	for _, name := range []string{"out.jsonl", "out.json", "out.mpk"} {
		t.Run(name, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), name)
			out, _, err := execute(t, "export", "--db", dbPath, "--out", outPath)
			require.NoError(t, err)
			assert.Contains(t, out, "✓ Exported 4 event(s)")

			got, _, err := ingest.ReadFile(outPath, ingest.Options{Strict: true})
			require.NoError(t, err)
			want, err := canonical.LogDigest(events)
			require.NoError(t, err)
			gotDigest, err := canonical.LogDigest(got)
			require.NoError(t, err)
			assert.Equal(t, want, gotDigest)
		})
	}
}

func TestExport_MissingDatabase(t *testing.T) {
	_, _, err := execute(t, "export", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
