package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
	Golden string // golden file directory
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run projection scenarios",
		Long: `Run YAML projection scenarios and check their assertions.

With --golden, every artifact is also compared byte for byte against
<golden-dir>/<scenario>.<contract>.golden. --update rewrites those files
from the current output instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  revelation test ./scenarios
  revelation test ./scenarios --filter "physics-*"
  revelation test ./scenarios --golden ./golden --update
  revelation test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "directory of golden artifact files")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if opts.Update && opts.Golden == "" {
		return NewExitError(ExitCommandError, "--update requires --golden")
	}

	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	files, err := harness.FindScenarios(scenariosDir, opts.Filter)
	if err != nil {
		var notFound *harness.DirectoryNotFoundError
		if errors.As(err, &notFound) {
			return NewExitError(ExitCommandError, notFound.Error())
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, &harness.SuiteResult{Scenarios: []harness.ScenarioOutcome{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := harness.RunSuite(files,
		harness.WithLogger(sess.logger),
		harness.WithConfig(sess.cfg.Projection),
	)

	if opts.Golden != "" {
		if err := applyGolden(opts, result); err != nil {
			return WrapExitError(ExitCommandError, "failed to update golden files", err)
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result, opts.Verbose)
}

// applyGolden compares or rewrites golden files for every scenario that
// produced artifacts, adjusting the suite counts for new mismatches.
func applyGolden(opts *TestOptions, result *harness.SuiteResult) error {
	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return err
		}
	}

	for i := range result.Scenarios {
		outcome := &result.Scenarios[i]
		if outcome.Result == nil {
			continue
		}
		for _, a := range outcome.Result.Artifacts {
			path := filepath.Join(opts.Golden, harness.GoldenName(outcome.Name, a.Contract)+".golden")

			if opts.Update {
				if err := os.WriteFile(path, a.Data, 0o644); err != nil {
					return err
				}
				continue
			}

			want, err := os.ReadFile(path)
			switch {
			case os.IsNotExist(err):
				markFailed(result, outcome, fmt.Sprintf("golden file missing: %s (run with --update)", path))
			case err != nil:
				markFailed(result, outcome, fmt.Sprintf("golden file unreadable: %v", err))
			case !bytes.Equal(want, a.Data):
				markFailed(result, outcome, fmt.Sprintf("%s artifact differs from %s", a.Contract, path))
			}
		}
	}
	return nil
}

func markFailed(result *harness.SuiteResult, outcome *harness.ScenarioOutcome, msg string) {
	if outcome.Pass {
		outcome.Pass = false
		result.Passed--
		result.Failed++
	}
	outcome.Errors = append(outcome.Errors, msg)
}

// outputTestJSON outputs test results as JSON.
func outputTestJSON(cmd *cobra.Command, result *harness.SuiteResult) error {
	var failure *CLIError
	if result.Failed > 0 {
		failure = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return formatter.Report(result, failure)
}

// outputTestText outputs test results as text.
func outputTestText(cmd *cobra.Command, result *harness.SuiteResult, verbose bool) error {
	w := cmd.OutOrStdout()

	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			if verbose {
				for _, a := range s.Artifacts {
					fmt.Fprintf(w, "  %s %s (%d bytes)\n", a.Contract, a.Digest, a.Size)
				}
			}
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Results: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
