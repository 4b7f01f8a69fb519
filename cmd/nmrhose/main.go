// Command nmrhose is the CLI client entry point for the nmrhose platform.
package main

import (
	"os"

	"github.com/nmrhose/nmrhose/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// cli.Execute prints any error itself before returning it.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
