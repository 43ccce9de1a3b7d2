package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/citeweave/citeweave/cmd/root"
	"github.com/citeweave/citeweave/internal/clierr"
)

// Build-time variables set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	rootCmd := root.NewRootCommand()
	rootCmd.Version = buildVersion()

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cliErr *clierr.CLIError
		if errors.As(err, &cliErr) {
			os.Exit(cliErr.ExitCode())
		}
		os.Exit(2)
	}
}

func buildVersion() string {
	if version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s\ncommit: %s\nbuilt at: %s\nbuilt by: %s", version, commit, date, builtBy)
}
