package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/exposurescan/internal/config"
	"github.com/nao1215/exposurescan/internal/database"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/spf13/cobra"
)

// errRunNotFound is returned when --run names a run that is not stored.
var errRunNotFound = errors.New("scan run not found")

// NewReportCmd creates the report command.
// This command reads reports back from the run history.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [user-id]",
		Short: "Show stored fusion reports",
		Long: `Report displays fusion results stored in the database.

Without flags it shows the latest report of the given user. The stored
report is the one produced by the run; it is not recomputed.

Examples:
  # Show the latest report of alice
  exposurescan report alice

  # List the run history of alice
  exposurescan report --list alice

  # List the runs of every user
  exposurescan report --list

  # Show a specific run by its run ID
  exposurescan report --run 2f1d8c8e-7a2b-4c1e-9b1a-0c5d2e3f4a5b

  # Show the current source distribution of alice
  exposurescan report --distribution alice

  # List all users in the database
  exposurescan report --users`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored runs (of the given user, or of every user)")
	cmd.Flags().BoolP("users", "U", false,
		"List all users with stored runs")
	cmd.Flags().StringP("run", "r", "",
		"Show the report of a specific run ID (use --list to see run IDs)")
	cmd.Flags().BoolP("distribution", "d", false,
		"Show the source distribution of the user's current snapshot")

	addConfigFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	listRuns, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	listUsers, err := cmd.Flags().GetBool("users")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}
	distribution, err := cmd.Flags().GetBool("distribution")
	if err != nil {
		return err
	}

	var userID string
	if len(args) > 0 {
		userID = args[0]
	}

	// Validate arguments before opening the database
	if userID == "" && !listRuns && !listUsers && runID == "" {
		return errors.New("user id is required (use --users to see stored users)")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose, getLogJSONFlag(cmd))

	db, err := openDB(cfg, false)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return fmt.Errorf("%w (use 'exposurescan ingest' to fuse a scan first)", err)
		}
		return err
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case listUsers:
		return printUsers(ctx, db, out)
	case distribution:
		return printDistribution(ctx, db, cfg, userID, out, logger)
	}

	output, closeOutput, err := openOutput(cfg, out)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // best effort close of the report file

	writer := newReportWriter(cfg, output, false)

	switch {
	case listRuns:
		runs, err := db.ListScanRuns(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		_, err = writer.WriteRuns(runs)
		return err

	case runID != "":
		report, err := db.GetScanRunByID(ctx, runID)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("%w: %s", errRunNotFound, runID)
		}
		_, err = writer.Write(report)
		return err
	}

	report, err := db.GetLatestScanRun(ctx, userID)
	if err != nil {
		return err
	}
	if report == nil {
		fmt.Fprintf(out, "No fusion runs found for %s\n", userID)
		fmt.Fprintln(out, "\nUse 'exposurescan ingest' to fuse a scan for this user.")
		return nil
	}
	_, err = writer.Write(report)
	return err
}

// printUsers lists every user with at least one stored run.
func printUsers(ctx context.Context, db *database.ExposureDB, out io.Writer) error {
	users, err := db.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(out, "No users found in the database.")
		fmt.Fprintln(out, "\nUse 'exposurescan ingest' to fuse a scan.")
		return nil
	}

	fmt.Fprintf(out, "Users (%d):\n\n", len(users))
	for _, u := range users {
		fmt.Fprintf(out, "  • %s\n", u)
	}
	fmt.Fprintln(out, "\nUse 'exposurescan report --list <user>' to see the run history of a user.")

	return nil
}

// printDistribution prints the source distribution of the user's current
// snapshot, computed from the stored exposures.
func printDistribution(ctx context.Context, db *database.ExposureDB, cfg *config.Config, userID string, out io.Writer, logger *slog.Logger) error {
	if userID == "" {
		return errors.New("user id is required for --distribution")
	}

	dist, err := newEngine(db, cfg, logger).SourceDistribution(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to compute source distribution: %w", err)
	}

	fmt.Fprintf(out, "Source distribution for %s:\n\n", userID)
	fmt.Fprintf(out, "  %-14s  %5s  %7s  %8s\n", "Source", "Found", "Catalog", "Coverage")
	for _, s := range dist.Sources {
		fmt.Fprintf(out, "  %-14s  %5d  %7d  %7.2f%%\n", s.Source, s.UserCount, s.SystemCount, s.Percentage)
	}
	if total := foundCount(dist); total == 0 {
		fmt.Fprintln(out, "\nNo exposures stored for this user.")
	}

	return nil
}

// foundCount sums the triggered ingredients over all sources.
func foundCount(dist model.SourceDistribution) int {
	total := 0
	for _, s := range dist.Sources {
		total += s.UserCount
	}
	return total
}
