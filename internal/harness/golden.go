package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenName is the golden file key for one contract's artifact in a
// scenario: testdata/golden/{scenario}.{contract}.golden.
func GoldenName(scenario, contract string) string {
	return fmt.Sprintf("%s.%s", scenario, contract)
}

// RunWithGolden executes a scenario and compares every artifact against
// its golden file.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Assertion failures and
// golden mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares each artifact in result against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against golden files without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, a := range result.Artifacts {
		g.Assert(t, GoldenName(scenarioName, a.Contract), a.Data)
	}
}
