package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/revelation/internal/projection"
	"github.com/roach88/revelation/internal/svg"
)

func loadFixture(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_FixturesPass(t *testing.T) {
	for _, name := range []string{"single-node", "graph-lifecycle", "physics-projection"} {
		t.Run(name, func(t *testing.T) {
			s := loadFixture(t, name)
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			require.Len(t, result.Artifacts, len(s.Contracts))
			for i, name := range s.Contracts {
				assert.Equal(t, name, result.Artifacts[i].Contract)
				assert.NotEmpty(t, result.Artifacts[i].Digest)
				assert.Equal(t, len(result.Artifacts[i].Data), result.Artifacts[i].Size)
			}
		})
	}
}

func TestRun_ArtifactsMatchRegistry(t *testing.T) {
	s := loadFixture(t, "single-node")
	result, err := Run(s)
	require.NoError(t, err)

	events, err := s.BuildEvents()
	require.NoError(t, err)

	art, ok := result.Artifact("svg")
	require.True(t, ok)
	assert.Equal(t, svg.Render(events, svg.Options{}), string(art.Data))
	assert.Equal(t, projection.MediaSVG, art.MediaType)
	assert.Equal(t, 1, result.Events)
	assert.NotEmpty(t, result.LogDigest)
}

func TestRun_AssertionFailuresAreReported(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: failing
description: every assertion here is wrong
contracts: [svg]
events:
  - type: node.add
    payload: { id: n1, x: 1, y: 2 }
assertions:
  - type: artifact_contains
    contract: svg
    text: "<circle"
  - type: artifact_excludes
    contract: svg
    text: "<rect"
  - type: artifact_count
    contract: svg
    text: "<rect"
    count: 3
  - type: artifact_digest
    contract: svg
    digest: nope
  - type: event_count
    count: 2
  - type: deterministic
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "artifact_contains")
	assert.Contains(t, result.Errors[1], "found 1 time(s)")
	assert.Contains(t, result.Errors[2], "appeared 1 time(s)")
	assert.Contains(t, result.Errors[3], "artifact_digest")
	assert.Contains(t, result.Errors[4], "2 event(s)")
}

func TestRun_UnknownContract(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: unknown
description: names a contract nobody registered
contracts: [hologram]
events: [{type: node.add}]
assertions: [{type: deterministic}]
`))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.True(t, IsUnknownContract(err))
}

func TestRun_DuplicateIDsCollapse(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: dupes
description: the store keeps the first event per id
contracts: [svg]
events:
  - { id: same, type: node.add, payload: { id: a, x: 1, y: 1 } }
  - { id: same, type: node.add, payload: { id: b, x: 2, y: 2 } }
assertions:
  - type: event_count
    count: 1
  - type: artifact_excludes
    contract: svg
    text: 'data-node-id="b"'
`))
	require.NoError(t, err)

	obs, logs := observer.New(zapcore.InfoLevel)
	result, err := Run(s, WithLogger(zap.New(obs)))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, logs.FilterMessage("duplicate event ids ignored").Len())
}

func TestRun_WithConfig(t *testing.T) {
	s := loadFixture(t, "single-node")
	cfg := projection.Config{SVG: svg.Options{Width: 320, Height: 200}}

	result, err := Run(s, WithConfig(cfg))
	require.NoError(t, err)
	art, ok := result.Artifact("svg")
	require.True(t, ok)
	assert.Contains(t, string(art.Data), `viewBox="0 0 320 200"`)
}

func TestRun_ScenarioConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "render.yaml"),
		[]byte("projection:\n  svg:\n    background: \"#000000\"\n"), 0o644))
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario+"config: render.yaml\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	// The scenario's own config wins over WithConfig.
	result, err := Run(s, WithConfig(projection.Config{SVG: svg.Options{Background: "#ffffff"}}))
	require.NoError(t, err)
	art, _ := result.Artifact("svg")
	assert.Contains(t, string(art.Data), `style="background:#000000"`)
}
