package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/ingest"
	"github.com/roach88/revelation/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Space    string
	Out      string
}

// ExportResult reports an export.
type ExportResult struct {
	Out     string        `json:"out"`
	Format  string        `json:"format"`
	Summary store.Summary `json:"summary"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a SQLite event log to an event file",
		Long: `Write the stored log, in append order, to an event file. The format
follows the --out extension; without --out JSON Lines go to stdout.

Examples:
  revelation export --db revelation.db > canvas.jsonl
  revelation export --db revelation.db --space canvas --out canvas.mpk`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Space, "space", "", "only export events from this space")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)
	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = sess.cfg.Store.Path
	}
	source := EventSource{DB: dbPath, Space: opts.Space}
	loaded, err := source.load(ctx, sess)
	if err != nil {
		return err
	}

	if opts.Out == "" || opts.Out == "-" {
		return ingest.WriteJSONL(cmd.OutOrStdout(), loaded.Events)
	}

	if err := ingest.WriteFile(opts.Out, loaded.Events); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	st, err := store.Open(dbPath, store.WithLogger(sess.logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()
	summary, err := st.Summarize(ctx, opts.Space)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize log", err)
	}

	result := ExportResult{Out: opts.Out, Format: ingest.FormatForPath(opts.Out), Summary: summary}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d event(s) to %s (%s)\n", summary.Events, result.Out, result.Format)
	fmt.Fprintf(cmd.OutOrStdout(), "  Digest: %s\n", summary.LogDigest)
	return nil
}
