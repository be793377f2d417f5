package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/exposurescan/internal/catalog"
	"github.com/nao1215/exposurescan/internal/config"
	"github.com/nao1215/exposurescan/internal/database"
	applog "github.com/nao1215/exposurescan/internal/log"
	"github.com/nao1215/exposurescan/internal/report"
	"github.com/spf13/cobra"
)

// addConfigFlags registers the flags of commands that read the
// configuration file and open the database.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .exposurescan in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
}

// addOutputFlags registers the report format flags.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// getPersistentBool retrieves a bool flag from the command or its root.
func getPersistentBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getPersistentBool(cmd, "verbose")
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	return getPersistentBool(cmd, "log-json")
}

// flagChanged reports whether the user set the named flag.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order. Flags only override the file when the
// user set them.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if f := cmd.Flags().Lookup("config"); f != nil {
		cfg.ConfigFilePath = f.Value.String()
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg, filepath.Dir(configPath)); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}

	var err error
	if flagChanged(cmd, "db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "max-text-bytes") {
		if cfg.MaxTextBytes, err = cmd.Flags().GetInt("max-text-bytes"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "snippet-length") {
		if cfg.SnippetLength, err = cmd.Flags().GetInt("snippet-length"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "catalog") {
		if cfg.CatalogFile, err = cmd.Flags().GetString("catalog"); err != nil {
			return nil, err
		}
	}
	if flagChanged(cmd, "output") {
		if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
			return nil, err
		}
	}

	// The two format flags replace the file's format as a pair.
	if flagChanged(cmd, "json") || flagChanged(cmd, "markdown") {
		if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// setupLogger creates a secure structured logger based on the verbosity
// setting. Log output goes to stderr so reports on stdout stay clean.
func setupLogger(verbose, jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return applog.NewSecureJSONLogger(os.Stderr, verbose)
	}
	return applog.NewSecureLogger(os.Stderr, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openDB opens the database in the configured directory.
func openDB(cfg *config.Config, create bool) (*database.ExposureDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create

	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadSeed returns the catalog seed from path, or the embedded default
// catalog when path is empty.
func loadSeed(path string) (*catalog.Seed, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// openOutput returns the report destination: the configured report file,
// or stdout. The returned close function is always non-nil.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports carry masked identifiers, so keep them owner-readable only.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter returns the report writer for the configured format.
// Compact JSON writes one report per line, which keeps several reports in
// one stream parseable.
func newReportWriter(cfg *config.Config, output io.Writer, compact bool) report.Writer {
	switch {
	case cfg.JSONReport && compact:
		return report.NewFullJSONWriter(output, getVersion())
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
