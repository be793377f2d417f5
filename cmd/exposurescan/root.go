// Package main provides the entry point for the exposurescan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for exposurescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exposurescan",
		Short: "Exposure aggregation and threat scoring engine",
		Long: `exposurescan fuses the output of a personal-data exposure scan into a
per-user exposure snapshot and scores it against a threat catalog.

Each ingested scan replaces the user's previous snapshot. Identifiers are
masked before they are stored, and every run is kept in the run history.

The catalog must be seeded once with 'exposurescan catalog seed' before the
first ingest (ingest seeds the embedded default catalog when it is empty).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON instead of text")

	// Add subcommands
	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewCatalogCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
