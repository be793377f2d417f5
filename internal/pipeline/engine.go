package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/exposurescan/internal/extract"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
	"github.com/nao1215/exposurescan/internal/scoring"
)

// Engine runs fusion runs against a Store.
// It is safe for concurrent use; runs for the same user are serialized.
type Engine struct {
	store      Store
	extractor  *extract.Extractor
	collectors []Collector
	locks      *UserLocks
	logger     *slog.Logger
	timeout    time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets a custom logger for the engine and its steps.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithExtractor sets the identifier extractor used by the default
// collectors.
func WithExtractor(ext *extract.Extractor) EngineOption {
	return func(e *Engine) {
		e.extractor = ext
	}
}

// WithCollectors replaces the branch collectors.
func WithCollectors(collectors ...Collector) EngineOption {
	return func(e *Engine) {
		e.collectors = collectors
	}
}

// WithTimeout bounds each run. Zero means no timeout.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates an Engine backed by store.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store: store,
		locks: NewUserLocks(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.extractor == nil {
		e.extractor = extract.New(extract.WithLogger(e.logger))
	}
	if e.collectors == nil {
		e.collectors = DefaultCollectors(e.extractor)
	}

	return e
}

// Pipeline builds the fusion pipeline for one run.
func (e *Engine) Pipeline() *Pipeline {
	p := New(WithLogger(e.logger))
	p.AddSteps(
		NewCatalogLoadStep(e.store),
		NewCollectStep(e.collectors, e.logger),
		NewDedupStep(),
		NewResolveStep(e.logger),
		NewPersistStep(e.store),
		NewScoreStep(),
		NewHistoryStep(e.store),
	)
	return p
}

// ProcessScan fuses a decoded scan payload into the user's exposure
// snapshot and returns the scored report.
//
// Branch failures degrade the run; storage failures abort it and leave the
// previous snapshot untouched.
func (e *Engine) ProcessScan(ctx context.Context, p *payload.ScanPayload, userID string) (*model.ScanReport, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if p == nil {
		return nil, ErrNilPayload
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	run := NewScanRun(userID, p)
	if err := e.Pipeline().Execute(ctx, run); err != nil {
		return nil, err
	}

	e.logger.Info("scan fused",
		"run_id", run.RunID,
		"exposures", len(run.Report.Exposures),
		"assessments", len(run.Report.Assessments),
		"score", run.Report.Aggregate.Score,
		"skipped_branches", len(run.Report.Diagnostics.BranchesSkipped),
	)

	return run.Report, nil
}

// ProcessRaw decodes a JSON scan payload and fuses it.
func (e *Engine) ProcessRaw(ctx context.Context, data []byte, userID string) (*model.ScanReport, error) {
	p, err := payload.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scan payload: %w", err)
	}
	return e.ProcessScan(ctx, p, userID)
}

// SourceDistribution reports the catalog coverage per detection source of
// the user's stored exposures.
func (e *Engine) SourceDistribution(ctx context.Context, userID string) (model.SourceDistribution, error) {
	catalog, err := e.store.LoadCatalog(ctx)
	if err != nil {
		return model.SourceDistribution{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	keys, err := e.store.MatchedIngredientKeys(ctx, userID)
	if err != nil {
		return model.SourceDistribution{}, fmt.Errorf("failed to load exposures: %w", err)
	}

	return scoring.SourceDistribution(catalog, keys), nil
}
