package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revelation/internal/store"
	"github.com/roach88/revelation/internal/testutil"
)

func TestValidate_ValidFile(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())

	out, _, err := execute(t, "validate", "--events", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 4 record(s) valid")
}

func TestValidate_ReportsRawFieldTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"id":"e1","ts":"yesterday","actor":"a","type":"node.add","space":"canvas","payload":{}}`+"\n"+
			`{"id":"e2","ts":2,"actor":"","type":"node.add","space":"canvas","payload":{}}`+"\n"), 0o644))

	out, _, err := execute(t, "validate", "--events", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ 2 record(s) checked, 2 issue(s)")
	assert.Contains(t, out, "record 0: ts:")
	assert.Contains(t, out, "record 1: actor:")
}

func TestValidate_JSONIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"e1","actor":"a","type":"t","space":"s","payload":{}}]`), 0o644))

	out, _, err := execute(t, "--format", "json", "validate", "--events", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string
		Error  struct {
			Code    string
			Details ValidationResult
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeInvalidEvents, resp.Error.Code)
	assert.False(t, resp.Error.Details.Valid)
	require.Len(t, resp.Error.Details.Issues, 1)
	assert.Equal(t, "ts", resp.Error.Details.Issues[0].Field)
}

func TestValidate_Database(t *testing.T) {
	events := testutil.NewLog().At(5).NodeAdd("a", 1, 1).Untimed().CursorMove(1, 1).Events()

	dbPath := filepath.Join(t.TempDir(), "log.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.AppendBatch(context.Background(), events)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "validate", "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, out, "record 1: ts:")
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", "--events", filepath.Join(t.TempDir(), "none.jsonl"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
