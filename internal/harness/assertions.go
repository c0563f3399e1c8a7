package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/projection"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type      string           // Assertion type for categorization
	Expected  string           // Human-readable expected outcome
	Actual    string           // Human-readable actual outcome
	Artifacts []ArtifactResult // Artifacts produced so far, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Artifacts) > 0 {
		fmt.Fprintf(&buf, "\nArtifacts:\n")
		for i, a := range e.Artifacts {
			fmt.Fprintf(&buf, "  [%d] %s %s (%d bytes)\n", i+1, a.Contract, a.Digest, a.Size)
		}
	}

	return buf.String()
}

// AssertionContext provides what the log-level assertions need beyond
// the result.
type AssertionContext struct {
	Registry  *projection.Registry
	Events    []event.Event
	Contracts []string
}

func artifactFor(result *Result, assertion Assertion) (ArtifactResult, error) {
	a, ok := result.Artifact(assertion.Contract)
	if !ok {
		return ArtifactResult{}, &AssertionError{
			Type:      assertion.Type,
			Expected:  fmt.Sprintf("artifact for contract %s", assertion.Contract),
			Actual:    "contract did not run",
			Artifacts: result.Artifacts,
		}
	}
	return a, nil
}

// assertArtifactContains checks that the artifact bytes contain the text.
func assertArtifactContains(result *Result, assertion Assertion) error {
	a, err := artifactFor(result, assertion)
	if err != nil {
		return err
	}
	if bytes.Contains(a.Data, []byte(assertion.Text)) {
		return nil
	}
	return &AssertionError{
		Type:      AssertArtifactContains,
		Expected:  fmt.Sprintf("%s artifact contains %q", a.Contract, assertion.Text),
		Actual:    "not found",
		Artifacts: result.Artifacts,
	}
}

// assertArtifactExcludes checks that the artifact bytes lack the text.
func assertArtifactExcludes(result *Result, assertion Assertion) error {
	a, err := artifactFor(result, assertion)
	if err != nil {
		return err
	}
	n := bytes.Count(a.Data, []byte(assertion.Text))
	if n == 0 {
		return nil
	}
	return &AssertionError{
		Type:      AssertArtifactExcludes,
		Expected:  fmt.Sprintf("%s artifact does not contain %q", a.Contract, assertion.Text),
		Actual:    fmt.Sprintf("found %d time(s)", n),
		Artifacts: result.Artifacts,
	}
}

// assertArtifactCount checks the exact number of occurrences of the text.
func assertArtifactCount(result *Result, assertion Assertion) error {
	a, err := artifactFor(result, assertion)
	if err != nil {
		return err
	}
	n := bytes.Count(a.Data, []byte(assertion.Text))
	if n == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:      AssertArtifactCount,
		Expected:  fmt.Sprintf("%q to appear %d time(s) in %s artifact", assertion.Text, assertion.Count, a.Contract),
		Actual:    fmt.Sprintf("appeared %d time(s)", n),
		Artifacts: result.Artifacts,
	}
}

// assertArtifactDigest compares the artifact digest.
func assertArtifactDigest(result *Result, assertion Assertion) error {
	a, err := artifactFor(result, assertion)
	if err != nil {
		return err
	}
	if a.Digest == assertion.Digest {
		return nil
	}
	return &AssertionError{
		Type:      AssertArtifactDigest,
		Expected:  fmt.Sprintf("%s digest %s", a.Contract, assertion.Digest),
		Actual:    a.Digest,
		Artifacts: result.Artifacts,
	}
}

// assertEventCount checks the size of the replayed log.
func assertEventCount(result *Result, assertion Assertion) error {
	if result.Events == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d event(s)", assertion.Count),
		Actual:   fmt.Sprintf("%d event(s)", result.Events),
	}
}

// assertDeterministic reruns contracts and compares digests.
func assertDeterministic(actx *AssertionContext, assertion Assertion) error {
	names := actx.Contracts
	if assertion.Contract != "" {
		names = []string{assertion.Contract}
	}

	report, err := actx.Registry.Verify(actx.Events, names...)
	if err != nil {
		return err
	}
	if report.OK() {
		return nil
	}

	var differing []string
	for _, v := range report.Results {
		if !v.Match {
			differing = append(differing, fmt.Sprintf("%s (%s != %s)", v.Contract, v.First, v.Second))
		}
	}
	return &AssertionError{
		Type:     AssertDeterministic,
		Expected: "identical digests across runs",
		Actual:   strings.Join(differing, ", "),
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides the registry and log for deterministic assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertArtifactContains:
			err = assertArtifactContains(result, assertion)
		case AssertArtifactExcludes:
			err = assertArtifactExcludes(result, assertion)
		case AssertArtifactCount:
			err = assertArtifactCount(result, assertion)
		case AssertArtifactDigest:
			err = assertArtifactDigest(result, assertion)
		case AssertEventCount:
			err = assertEventCount(result, assertion)
		case AssertDeterministic:
			if actx == nil || actx.Registry == nil {
				err = fmt.Errorf("assertion[%d]: deterministic requires a registry", i)
			} else {
				err = assertDeterministic(actx, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
