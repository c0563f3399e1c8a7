package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/projection"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Source    EventSource
	Contracts []string
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay the log twice and verify artifacts are deterministic",
		Long: `Run each contract twice over the same log and compare artifact digests.

Every registered contract is checked unless --contract narrows the set.

Exit codes:
  0 - All artifacts reproduced byte for byte
  1 - Determinism verification failed (digests differ)
  2 - Command error (unknown contract, missing events, etc.)

Examples:
  revelation verify --events canvas.jsonl
  revelation verify --db revelation.db --contract svg --contract physics
  revelation verify --events canvas.jsonl --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	opts.Source.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.Contracts, "contract", "c", nil, "contract to verify (repeatable; default all)")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	registry := projection.NewRegistry(sess.cfg.Projection, projection.WithLogger(sess.logger))
	for _, name := range opts.Contracts {
		if _, ok := registry.Get(name); !ok {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownContract,
				fmt.Sprintf("unknown contract %q", name),
				map[string]any{"available": registry.Names()})
		}
	}

	loaded, err := opts.Source.load(context.Background(), sess)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Loaded %d event(s) from %s", len(loaded.Events), loaded.Origin)

	report, err := registry.Verify(loaded.Events, opts.Contracts...)
	if err != nil {
		if errors.Is(err, projection.ErrUnknownContract) {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownContract, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "verification failed to run", err)
	}

	if opts.Format == "json" {
		return outputVerifyJSON(cmd, report)
	}
	return outputVerifyText(cmd, report, opts.Verbose)
}

// outputVerifyJSON outputs the verification report as JSON.
func outputVerifyJSON(cmd *cobra.Command, report projection.Report) error {
	var failure *CLIError
	if !report.OK() {
		failure = &CLIError{
			Code:    ErrCodeNondeterminism,
			Message: "determinism verification failed",
		}
	}
	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return formatter.Report(report, failure)
}

// outputVerifyText outputs the verification report as text.
func outputVerifyText(cmd *cobra.Command, report projection.Report, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Verify Summary: %d event(s), %d contract(s)\n", report.Events, len(report.Results))
	fmt.Fprintf(w, "Log digest: %s\n", report.LogDigest)
	fmt.Fprintln(w)

	for _, v := range report.Results {
		status := "✓"
		if !v.Match {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s\n", status, v.Contract)
		if verbose || !v.Match {
			fmt.Fprintf(w, "  First:  %s\n", v.First)
			fmt.Fprintf(w, "  Second: %s\n", v.Second)
		}
	}
	fmt.Fprintln(w)

	if report.OK() {
		fmt.Fprintln(w, "✓ All artifacts verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
