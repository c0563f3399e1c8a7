package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Events   string
	Database string
	Strict   bool
}

// ImportResult reports what an import appended.
type ImportResult struct {
	Database   string        `json:"database"`
	Read       int           `json:"read"`
	Skipped    int           `json:"skipped"`
	Filled     int           `json:"filled"`
	Appended   int           `json:"appended"`
	Duplicates int           `json:"duplicates"`
	Summary    store.Summary `json:"summary"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Append an event file to a SQLite event log",
		Long: `Append events from a file to the SQLite event log.

Records without an id are given a UUIDv7. Events whose id is already in
the log are ignored, so importing the same file twice is a no-op.
The database defaults to the store path from config.

Examples:
  revelation import --events canvas.jsonl --db revelation.db
  revelation import --events capture.mpk`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Events, "events", "e", "", "event file (.jsonl, .json, .mpk; - for stdin) (required)")
	_ = cmd.MarkFlagRequired("events")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on the first malformed record instead of skipping it")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
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

	source := EventSource{Events: opts.Events, Strict: opts.Strict}
	loaded, err := source.load(ctx, sess)
	if err != nil {
		return err
	}
	// Fill after decoding so the skip policy sees records as written.
	filled := event.FillIDs(loaded.Events, event.UUIDv7Generator{})

	st, err := store.Open(dbPath, store.WithLogger(sess.logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	appended, err := st.AppendBatch(ctx, loaded.Events)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to append events", err)
	}
	summary, err := st.Summarize(ctx, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to summarize log", err)
	}

	result := ImportResult{
		Database:   dbPath,
		Read:       loaded.Stats.Read,
		Skipped:    loaded.Stats.Skipped,
		Filled:     filled,
		Appended:   appended,
		Duplicates: len(loaded.Events) - appended,
		Summary:    summary,
	}
	formatter.VerboseLog("Imported from %s", opts.Events)

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Appended %d of %d event(s) to %s\n", result.Appended, result.Read, result.Database)
	if result.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped %d malformed record(s)\n", result.Skipped)
	}
	if result.Duplicates > 0 {
		fmt.Fprintf(w, "  Ignored %d duplicate id(s)\n", result.Duplicates)
	}
	if result.Filled > 0 {
		fmt.Fprintf(w, "  Generated %d id(s)\n", result.Filled)
	}
	fmt.Fprintf(w, "  Log: %d event(s), digest %s\n", summary.Events, summary.LogDigest)
	return nil
}
