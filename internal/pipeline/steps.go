package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/exposurescan/internal/database"
	"github.com/nao1215/exposurescan/internal/mask"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
	"github.com/nao1215/exposurescan/internal/scoring"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

// CatalogLoadStep loads the threat catalog into the run.
type CatalogLoadStep struct {
	store Store
}

// NewCatalogLoadStep creates a catalog loading step.
func NewCatalogLoadStep(store Store) *CatalogLoadStep {
	return &CatalogLoadStep{store: store}
}

// Name returns the step name.
func (s *CatalogLoadStep) Name() string {
	return "catalog_load"
}

// Do executes the catalog load step.
func (s *CatalogLoadStep) Do(ctx context.Context, run *ScanRun) error {
	catalog, err := s.store.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if catalog.Size() == 0 {
		return ErrCatalogEmpty
	}
	run.Catalog = catalog
	return nil
}

// CollectStep runs the branch collectors concurrently.
//
// Design decision: A failing branch never fails the run. Its error (or
// panic) is logged, the branch is listed as skipped and the other branches
// still contribute. Results are concatenated in collector order so the run
// stays deterministic for identical input.
type CollectStep struct {
	collectors []Collector
	logger     *slog.Logger
}

// NewCollectStep creates a branch collection step.
func NewCollectStep(collectors []Collector, logger *slog.Logger) *CollectStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectStep{collectors: collectors, logger: logger}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect_branches"
}

// Do executes the collection step.
func (s *CollectStep) Do(ctx context.Context, run *ScanRun) error {
	p := run.Payload

	for _, b := range payload.Branches() {
		if err, ok := p.Problems[b]; ok {
			s.logger.Warn("branch payload malformed, skipping",
				"branch", b.String(),
				"run_id", run.RunID,
				"error", err,
			)
			run.Diagnostics.BranchesSkipped = append(run.Diagnostics.BranchesSkipped, b.String())
		}
	}

	results := make([][]model.Candidate, len(s.collectors))
	errs := make([]error, len(s.collectors))

	var g errgroup.Group
	for i, c := range s.collectors {
		if !p.Present(c.Branch()) {
			continue
		}
		g.Go(func() error {
			results[i], errs[i] = s.collect(ctx, c, p)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // branch errors are kept in errs

	for i, c := range s.collectors {
		if !p.Present(c.Branch()) {
			continue
		}
		if errs[i] != nil {
			s.logger.Error("branch failed",
				"branch", c.Branch().String(),
				"run_id", run.RunID,
				"error", errs[i],
			)
			run.Diagnostics.BranchesSkipped = append(run.Diagnostics.BranchesSkipped, c.Branch().String())
			continue
		}
		run.Diagnostics.BranchesProcessed = append(run.Diagnostics.BranchesProcessed, c.Branch().String())
		run.Candidates = append(run.Candidates, results[i]...)
	}

	run.Diagnostics.CandidatesSeen = len(run.Candidates)
	return ctx.Err()
}

// collect runs one collector, turning a panic into an error.
func (s *CollectStep) collect(ctx context.Context, c Collector, p *payload.ScanPayload) (found []model.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("%w: %v", ErrBranchPanic, r)
		}
	}()
	return c.Collect(ctx, p)
}

// DedupStep collapses candidates sharing ingredient key, value and source.
// The first occurrence wins.
type DedupStep struct{}

// NewDedupStep creates a dedup step.
func NewDedupStep() *DedupStep {
	return &DedupStep{}
}

// Name returns the step name.
func (s *DedupStep) Name() string {
	return "dedup"
}

// Do executes the dedup step.
func (s *DedupStep) Do(_ context.Context, run *ScanRun) error {
	seen := make(map[string]bool, len(run.Candidates))
	kept := run.Candidates[:0]

	for _, c := range run.Candidates {
		key := DedupKey(c)
		if seen[key] {
			run.Diagnostics.DuplicatesDropped++
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}

	run.Candidates = kept
	return nil
}

// DedupKey returns the identity of a candidate as a SHA3-256 hex digest of
// its ingredient key, value (or null) and source. Raw values are hashed so
// the key can be logged.
func DedupKey(c model.Candidate) string {
	h := sha3.New256()
	h.Write([]byte(c.IngredientKey))
	h.Write([]byte{0})
	if c.Value == "" {
		h.Write([]byte{'n'})
	} else {
		h.Write([]byte{'v'})
		h.Write([]byte(c.Value))
	}
	h.Write([]byte{0})
	h.Write([]byte(c.Source))
	return hex.EncodeToString(h.Sum(nil))
}

// ResolveStep turns candidates into exposures: the ingredient is looked up
// in the catalog, the confidence is resolved and the value is masked.
// Candidates with unknown ingredient keys are dropped with a warning.
type ResolveStep struct {
	logger *slog.Logger
}

// NewResolveStep creates a resolve step.
func NewResolveStep(logger *slog.Logger) *ResolveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveStep{logger: logger}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step.
func (s *ResolveStep) Do(_ context.Context, run *ScanRun) error {
	exposures := make([]model.Exposure, 0, len(run.Candidates))

	for _, c := range run.Candidates {
		ing, ok := run.Catalog.Ingredient(c.IngredientKey)
		if !ok {
			s.logger.Warn("unknown ingredient, dropping candidate",
				"ingredient", c.IngredientKey,
				"branch", c.Branch,
				"run_id", run.RunID,
			)
			run.Diagnostics.UnknownDropped++
			continue
		}

		exposures = append(exposures, model.Exposure{
			UserID:          run.UserID,
			IngredientID:    ing.ID,
			IngredientKey:   ing.Key,
			Source:          c.Source,
			EvidenceURL:     c.EvidenceURL,
			EvidenceSnippet: c.EvidenceSnippet,
			Confidence:      c.ResolvedConfidence(),
			DetectedAt:      run.StartedAt,
			ValueMasked:     mask.MaskPointer(ing.Key, c.Value),
		})
	}

	run.Exposures = exposures
	// Raw values are not needed past this point.
	run.Candidates = nil
	return nil
}

// PersistStep scores the categories and replaces the user's snapshot in
// one transaction. Only categories with a positive score are stored.
type PersistStep struct {
	store Store
}

// NewPersistStep creates a snapshot persistence step.
func NewPersistStep(store Store) *PersistStep {
	return &PersistStep{store: store}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist_snapshot"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, run *ScanRun) error {
	assessments := scoring.Positive(
		scoring.CategoryScores(run.Catalog, run.UserID, run.MatchedIngredientKeys()),
	)

	snap := &database.Snapshot{
		UserID:      run.UserID,
		Exposures:   run.Exposures,
		Assessments: assessments,
	}
	if err := s.store.ReplaceSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	run.Exposures = snap.Exposures
	run.Assessments = snap.Assessments
	return nil
}

// ScoreStep computes the source distribution and the aggregate score and
// assembles the report.
type ScoreStep struct {
	now func() time.Time
}

// NewScoreStep creates a scoring step.
func NewScoreStep() *ScoreStep {
	return &ScoreStep{now: time.Now}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the scoring step.
func (s *ScoreStep) Do(_ context.Context, run *ScanRun) error {
	matched := run.MatchedIngredientKeys()

	assessments := make([]model.ThreatAssessment, len(run.Assessments))
	copy(assessments, run.Assessments)
	model.SortAssessments(assessments)

	run.Report = &model.ScanReport{
		RunID:              run.RunID,
		UserID:             run.UserID,
		GeneratedAt:        s.now().UTC(),
		Exposures:          run.Exposures,
		SourceDistribution: scoring.SourceDistribution(run.Catalog, matched),
		Aggregate:          scoring.Aggregate(run.Catalog, matched),
		Assessments:        assessments,
		Diagnostics:        run.Diagnostics,
	}
	return nil
}

// HistoryStep appends the report to the run history.
type HistoryStep struct {
	store Store
}

// NewHistoryStep creates a history step.
func NewHistoryStep(store Store) *HistoryStep {
	return &HistoryStep{store: store}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "history"
}

// Do executes the history step.
func (s *HistoryStep) Do(ctx context.Context, run *ScanRun) error {
	if run.Report == nil {
		return nil
	}
	if _, err := s.store.SaveScanRun(ctx, run.Report); err != nil {
		return fmt.Errorf("failed to save scan run: %w", err)
	}
	return nil
}
