// Command revelation replays canvas event logs into deterministic artifacts.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/revelation/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
