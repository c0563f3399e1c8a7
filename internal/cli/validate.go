package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/ingest"
	"github.com/roach88/revelation/internal/validate"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Records int              `json:"records"`
	Issues  []validate.Issue `json:"issues,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Source EventSource
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check events against the event schema",
		Long: `Check every record against the event schema without projecting it.

File records are checked as written, so a string timestamp or an empty
actor is reported even though projection would tolerate it. Records read
from --db are checked after storage.

Exit codes:
  0 - Every record is valid
  1 - One or more records failed validation
  2 - Command error (missing file, unreadable input, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	opts.Source.register(cmd)

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	validator, err := validate.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile event schema", err)
	}

	var result ValidationResult
	if opts.Source.Events != "" && opts.Source.DB == "" {
		result, err = validateFile(opts.Source.Events, sess.cfg.Ingest.MaxFrameBytes, validator)
		if err != nil {
			return err
		}
	} else {
		loaded, err := opts.Source.load(context.Background(), sess)
		if err != nil {
			return err
		}
		result.Records = len(loaded.Events)
		result.Issues = validator.Events(loaded.Events)
	}
	result.Valid = len(result.Issues) == 0
	formatter.VerboseLog("Checked %d record(s)", result.Records)

	if !result.Valid {
		if opts.Format == "json" {
			return formatter.Fail(ExitFailure, ErrCodeInvalidEvents,
				fmt.Sprintf("%d validation issue(s)", len(result.Issues)), result)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "✗ %d record(s) checked, %d issue(s)\n", result.Records, len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  %s\n", issue)
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d record(s) valid\n", result.Records)
	return nil
}

// validateFile checks raw file records. --space does not apply here
// because a record's space is one of the fields being checked.
func validateFile(path string, maxRecordBytes int, validator *validate.Validator) (ValidationResult, error) {
	if path != "-" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return ValidationResult{}, NewExitError(ExitCommandError, fmt.Sprintf("events file not found: %s", path))
		}
	}

	var result ValidationResult
	n, err := ingest.ReadRecordsFile(path, maxRecordBytes, func(index int, raw []byte) error {
		result.Issues = append(result.Issues, validator.Record(index, raw)...)
		return nil
	})
	if err != nil {
		return ValidationResult{}, WrapExitError(ExitCommandError, "failed to read events", err)
	}
	result.Records = n
	return result, nil
}
