package cli

import (
	"github.com/spf13/cobra"
)

// NewComposeCommand creates the compose command.
func NewComposeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compose <derived-contract>",
		Short: "Run a derived contract over its base contract's artifact",
		Long: `Run a derived contract. The base contract replays the log first and
its final state and artifact feed the derived contract.

Only derived contracts are accepted; see "revelation contracts" for the
BASE column. Output handling matches render.

Examples:
  revelation compose physics-svg --events canvas.jsonl > particles.svg
  revelation compose svg-gltf --events canvas.jsonl --out canvas.gltf
  revelation compose physics-audio --events canvas.jsonl --out plucks.wav`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], true, cmd)
		},
	}

	opts.Source.register(cmd)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}
