package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.Events = 2
	r.AddArtifact(ArtifactResult{Contract: "svg", Digest: "d1", Data: []byte("<rect/><rect/>"), Size: 14})
	return r
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:      AssertArtifactContains,
		Expected:  "x",
		Actual:    "y",
		Artifacts: []ArtifactResult{{Contract: "svg", Digest: "d1", Size: 3}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: artifact_contains")
	assert.Contains(t, msg, "Expected: x")
	assert.Contains(t, msg, "Actual: y")
	assert.Contains(t, msg, "[1] svg d1 (3 bytes)")
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertArtifactContains, Contract: "svg", Text: "<rect"},
		{Type: AssertArtifactExcludes, Contract: "svg", Text: "<line"},
		{Type: AssertArtifactCount, Contract: "svg", Text: "<rect", Count: 2},
		{Type: AssertArtifactDigest, Contract: "svg", Digest: "d1"},
		{Type: AssertEventCount, Count: 2},
	}, nil)
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_MissingArtifact(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertArtifactContains, Contract: "obj", Text: "f"},
	}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "contract did not run")
}

func TestEvaluateAssertions_DeterministicNeedsRegistry(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{{Type: AssertDeterministic}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires a registry")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{{Type: "vibes"}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "vibes"`)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)

	_, ok := r.Artifact("svg")
	assert.False(t, ok)
}
