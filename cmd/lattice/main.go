package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lattice",
		Short: "Server-driven reactive UI runtime for Go",
		Long: `Lattice renders component trees on the server and streams
node patches to thin clients over WebSocket.

Components declare reactive state; the runtime tracks reads,
re-renders only what changed, and diffs the result into the
minimal set of node operations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
