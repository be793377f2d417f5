package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/exposurescan/internal/config"
	"github.com/nao1215/exposurescan/internal/database"
	"github.com/nao1215/exposurescan/internal/extract"
	"github.com/nao1215/exposurescan/internal/payload"
	"github.com/nao1215/exposurescan/internal/pipeline"
	"github.com/spf13/cobra"
)

// stdinPath is the file argument that reads the payload from stdin.
const stdinPath = "-"

// errIngestFailed is returned when at least one payload could not be fused.
var errIngestFailed = errors.New("ingest failed")

// payloadFile names one payload file and the user it belongs to.
type payloadFile struct {
	UserID string
	Path   string
}

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file | user=file]...",
		Short: "Fuse scan payloads into exposure snapshots",
		Long: `Ingest reads JSON scan payloads and fuses each one into the user's exposure
snapshot. The previous snapshot of the user is replaced, the threat categories
are rescored, and the run is stored in the run history.

A payload holds up to four branches: an email breach lookup, a password check,
a web search and an AI research result. Missing or malformed branches are
skipped; the run still completes with the remaining ones.

Examples:
  # Fuse one payload for alice
  exposurescan ingest --user alice scan.json

  # Read the payload from stdin
  cat scan.json | exposurescan ingest --user alice -

  # Fuse payloads of several users concurrently
  exposurescan ingest alice=alice.json bob=bob.json --batch 8

  # Output Markdown reports to a file
  exposurescan ingest -u alice -m -o report.md scan.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngestCmd,
	}

	cmd.Flags().StringP("user", "u", "",
		"User ID for all payload files (otherwise use user=file arguments)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent fusion runs")
	cmd.Flags().DurationP("timeout", "t", 0,
		"Upper bound of one fusion run (0 means none)")
	cmd.Flags().Int("max-text-bytes", config.DefaultMaxTextBytes,
		"Bytes of one free text field inspected by the extractor")
	cmd.Flags().Int("snippet-length", config.DefaultSnippetLength,
		"Evidence snippet length in characters")
	cmd.Flags().String("catalog", "",
		"Catalog seed file used when the database has no catalog yet")

	addConfigFlags(cmd)
	addOutputFlags(cmd)

	return cmd
}

// runIngestCmd executes the ingest command.
func runIngestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	user, err := cmd.Flags().GetString("user")
	if err != nil {
		return err
	}

	files, err := parseIngestArgs(args, user)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose, getLogJSONFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runIngest(ctx, cfg, files, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
}

// parseIngestArgs turns the positional arguments into payload files.
// With a user flag every argument is a file; otherwise every argument must
// be user=file.
func parseIngestArgs(args []string, user string) ([]payloadFile, error) {
	user = strings.TrimSpace(user)
	files := make([]payloadFile, 0, len(args))
	stdinUsed := false

	for _, arg := range args {
		pf := payloadFile{UserID: user, Path: arg}
		if user == "" {
			u, path, ok := strings.Cut(arg, "=")
			u = strings.TrimSpace(u)
			if !ok || u == "" || path == "" {
				return nil, fmt.Errorf("argument %q must be USER=FILE when --user is not set", arg)
			}
			pf = payloadFile{UserID: u, Path: path}
		}

		if pf.Path == stdinPath {
			if stdinUsed {
				return nil, errors.New("stdin (-) can only be read once")
			}
			stdinUsed = true
		}
		files = append(files, pf)
	}

	return files, nil
}

// loadJobs reads and decodes every payload before any run starts, so a
// typo in the last file does not leave a half-ingested batch.
func loadJobs(files []payloadFile, stdin io.Reader) ([]pipeline.Job, error) {
	jobs := make([]pipeline.Job, 0, len(files))

	for _, pf := range files {
		var p *payload.ScanPayload
		var err error

		if pf.Path == stdinPath {
			p, err = payload.DecodeReader(stdin)
		} else {
			var data []byte
			data, err = os.ReadFile(pf.Path) //nolint:gosec // User-provided payload path is intentional
			if err != nil {
				return nil, fmt.Errorf("failed to read payload %s: %w", pf.Path, err)
			}
			p, err = payload.Decode(data)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode payload %s: %w", pf.Path, err)
		}

		jobs = append(jobs, pipeline.Job{
			UserID:  pf.UserID,
			Payload: p,
			Label:   pf.Path,
		})
	}

	return jobs, nil
}

// ensureCatalog seeds the catalog when the database has none yet.
func ensureCatalog(ctx context.Context, db *database.ExposureDB, cfg *config.Config, logger *slog.Logger) error {
	current, err := db.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if current.Size() > 0 {
		return nil
	}

	seed, err := loadSeed(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog seed: %w", err)
	}

	result, err := db.SeedCatalog(ctx, seed.Categories, seed.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	logger.Info("seeded empty catalog",
		"file", cfg.CatalogFile,
		"categories", result.Categories,
		"ingredients", result.Ingredients,
	)
	return nil
}

// newEngine builds the fusion engine for the configuration.
func newEngine(db *database.ExposureDB, cfg *config.Config, logger *slog.Logger) *pipeline.Engine {
	extractor := extract.New(
		extract.WithMaxTextBytes(cfg.MaxTextBytes),
		extract.WithSnippetLength(cfg.SnippetLength),
		extract.WithLogger(logger),
	)

	return pipeline.NewEngine(db,
		pipeline.WithEngineLogger(logger),
		pipeline.WithExtractor(extractor),
		pipeline.WithTimeout(cfg.Timeout),
	)
}

// runIngest fuses every payload and writes one report per successful run.
func runIngest(ctx context.Context, cfg *config.Config, files []payloadFile, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if len(files) == 0 {
		return errors.New("no payloads provided (specify one or more payload files as arguments)")
	}

	jobs, err := loadJobs(files, stdin)
	if err != nil {
		return err
	}

	db, err := openDB(cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	if err := ensureCatalog(ctx, db, cfg, logger); err != nil {
		return err
	}

	output, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // best effort close of the report file

	writer := newReportWriter(cfg, output, len(jobs) > 1)
	engine := newEngine(db, cfg, logger)

	bp := pipeline.NewBatchProcessor(engine,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()

	// Reports are written from the callback, one at a time.
	var mu sync.Mutex
	var failed []string
	err = bp.ProcessBatchWithCallback(ctx, jobs, func(result pipeline.Result, index int) {
		mu.Lock()
		defer mu.Unlock()

		if result.Err != nil {
			logger.Error("fusion run failed", "payload", result.Job.Label, "error", result.Err)
			failed = append(failed, result.Job.Label)
			return
		}

		if _, err := writer.Write(result.Report); err != nil {
			logger.Error("report failed", "payload", result.Job.Label, "error", err)
			failed = append(failed, result.Job.Label)
			return
		}

		logger.Info("fusion run completed",
			"index", index+1,
			"total", len(jobs),
			"run_id", result.Report.RunID,
			"exposures", len(result.Report.Exposures),
		)
	})

	logger.Info("ingest completed",
		"payloads", len(jobs),
		"failed", len(failed),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)

	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d payloads (%s)", errIngestFailed, len(failed), len(jobs), strings.Join(failed, ", "))
	}
	return nil
}
