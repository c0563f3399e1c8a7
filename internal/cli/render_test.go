package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revelation/internal/physics"
	"github.com/roach88/revelation/internal/projection"
	"github.com/roach88/revelation/internal/store"
	"github.com/roach88/revelation/internal/svg"
)

func TestRender_SVGToStdout(t *testing.T) {
	events := canvasEvents()
	path := writeEventsFile(t, "log.jsonl", events)

	out, _, err := execute(t, "render", "svg", "--events", path)
	require.NoError(t, err)
	assert.Equal(t, svg.Render(events, svg.Options{}), out)
}

func TestRender_SameOutputFromEveryEncoding(t *testing.T) {
	events := canvasEvents()
	want := svg.Render(events, svg.Options{})

	for _, name := range []string{"log.jsonl", "log.json", "log.mpk"} {
		t.Run(name, func(t *testing.T) {
			out, _, err := execute(t, "render", "svg", "--events", writeEventsFile(t, name, events))
			require.NoError(t, err)
			assert.Equal(t, want, out)
		})
	}
}

func TestRender_OutFileSummary(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())
	outPath := filepath.Join(t.TempDir(), "scene.gltf")

	out, _, err := execute(t, "--format", "json", "render", "gltf", "--events", path, "--out", outPath)
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   RenderResult
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "gltf", resp.Data.Contract)
	assert.Equal(t, projection.MediaGLTF, resp.Data.MediaType)
	assert.Equal(t, 4, resp.Data.Events)
	assert.Equal(t, []string{outPath}, resp.Data.Files)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, resp.Data.Size, len(data))
	assert.Contains(t, string(data), `"asset"`)
}

func TestRender_OBJWritesObjAndMtl(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())
	dir := t.TempDir()

	out, _, err := execute(t, "render", "obj", "--events", path, "--out", filepath.Join(dir, "scene.obj"))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote: "+filepath.Join(dir, "scene.mtl"))

	obj, err := os.ReadFile(filepath.Join(dir, "scene.obj"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(obj), "mtllib scene.mtl\no line_ab\n"))
	assert.True(t, strings.HasSuffix(string(obj), "\n"))

	mtl, err := os.ReadFile(filepath.Join(dir, "scene.mtl"))
	require.NoError(t, err)
	assert.Contains(t, string(mtl), "newmtl node_selected")
}

func TestRender_FromDatabaseWithSpace(t *testing.T) {
	ctx := context.Background()
	events := canvasEvents()
	events[1].Space = "elsewhere"

	dbPath := filepath.Join(t.TempDir(), "log.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.AppendBatch(ctx, events)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "render", "svg", "--db", dbPath, "--space", "canvas")
	require.NoError(t, err)
	assert.Contains(t, out, `data-node-id="a"`)
	assert.NotContains(t, out, `data-node-id="b"`)
}

func TestRender_SpaceFilterOnFile(t *testing.T) {
	events := canvasEvents()
	events[0].Space = "elsewhere"
	path := writeEventsFile(t, "log.jsonl", events)

	out, _, err := execute(t, "render", "svg", "--events", path, "--space", "canvas")
	require.NoError(t, err)
	assert.NotContains(t, out, `data-node-id="a"`)
	assert.Contains(t, out, `data-node-id="b"`)
}

func TestRender_SkipsMalformedUnlessStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"id":"e1","ts":1,"actor":"a","type":"node.add","space":"canvas","payload":{"id":"n1","x":1,"y":1}}`+"\n"+
			"not json\n"), 0o644))

	out, _, err := execute(t, "render", "svg", "--events", path, "--out", filepath.Join(t.TempDir(), "o.svg"))
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped 1 malformed record(s)")

	_, _, err = execute(t, "render", "svg", "--events", path, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRender_UnknownContract(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())

	out, _, err := execute(t, "--format", "json", "render", "hologram", "--events", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeUnknownContract, resp.Error.Code)
}

func TestRender_SourceErrors(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no source", []string{"render", "svg"}, "one of --events or --db is required"},
		{"both sources", []string{"render", "svg", "--events", path, "--db", "x.db"}, "mutually exclusive"},
		{"missing file", []string{"render", "svg", "--events", filepath.Join(t.TempDir(), "none.jsonl")}, "events file not found"},
		{"missing db", []string{"render", "svg", "--db", filepath.Join(t.TempDir(), "none.db")}, "database not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompose_PhysicsSVG(t *testing.T) {
	events := canvasEvents()
	path := writeEventsFile(t, "log.jsonl", events)

	out, _, err := execute(t, "compose", "physics-svg", "--events", path)
	require.NoError(t, err)

	want := svg.Render(projection.ParticleEvents(physics.Simulate(events, physics.Options{}), "evt-physics-"), svg.Options{})
	assert.Equal(t, want, out)
}

func TestCompose_RejectsBaseContract(t *testing.T) {
	path := writeEventsFile(t, "log.jsonl", canvasEvents())

	out, _, err := execute(t, "compose", "svg", "--events", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "svg is not a derived contract")
}
