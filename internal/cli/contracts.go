package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/projection"
)

// ContractsResult lists the registered contracts.
type ContractsResult struct {
	Contracts []projection.Entry `json:"contracts"`
}

// NewContractsCommand creates the contracts command.
func NewContractsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List available contracts",
		Long: `List every contract the registry can run, in registration order.

Derived contracts show the base contract whose artifact they consume.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContracts(rootOpts, cmd)
		},
	}
}

func runContracts(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	registry := projection.NewRegistry(sess.cfg.Projection, projection.WithLogger(sess.logger))
	result := ContractsResult{Contracts: registry.Entries()}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(result)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBASE\tMEDIA TYPE\tDESCRIPTION")
	for _, e := range result.Contracts {
		base := e.Base
		if base == "" {
			base = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, base, e.MediaType, e.Description)
	}
	return w.Flush()
}
