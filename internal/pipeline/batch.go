package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
	"golang.org/x/sync/errgroup"
)

// Processor fuses one scan payload. *Engine implements it.
type Processor interface {
	ProcessScan(ctx context.Context, p *payload.ScanPayload, userID string) (*model.ScanReport, error)
}

// Job is one scan payload to fuse for one user.
type Job struct {
	UserID  string
	Payload *payload.ScanPayload

	// Label identifies the job in logs, e.g. the payload file name.
	Label string
}

// Result is the outcome of one Job.
type Result struct {
	Job    Job
	Report *model.ScanReport
	Err    error
}

// BatchProcessor handles concurrent processing of multiple scan payloads.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Engine because:
// 1. It keeps the Engine focused on single-run execution
// 2. It provides cleaner separation of concerns
type BatchProcessor struct {
	processor   Processor
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(processor Processor, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		processor:   processor,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch fuses all jobs concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Returns one result per job, in job order, even for jobs that failed.
// The error return is only set when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	err := bp.ProcessBatchWithCallback(ctx, jobs, func(r Result, index int) {
		results[index] = r
	})
	return results, err
}

// ProcessBatchWithCallback fuses all jobs and calls callback for each
// completed job. The callback is called from the goroutine that completed
// the job, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []Job,
	callback func(result Result, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_jobs", len(jobs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				callback(Result{Job: job, Err: ctx.Err()}, i)
				return ctx.Err()
			default:
			}

			report, err := bp.processor.ProcessScan(ctx, job.Payload, job.UserID)
			if err != nil {
				bp.logger.Warn("fusion run failed",
					"job", job.Label,
					"index", i+1,
					"total", len(jobs),
					"error", err,
				)
			}

			// Don't return the error to errgroup - other jobs continue.
			callback(Result{Job: job, Report: report, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)

	return err
}
