package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/exposurescan/internal/payload"
)

// ScanRun is the state of one fusion run as it moves through the pipeline.
// Each step reads what earlier steps produced and adds its own part.
type ScanRun struct {
	// RunID uniquely identifies the run.
	RunID string

	// UserID is the subject of the scan.
	UserID string

	// Payload is the decoded scan result.
	Payload *payload.ScanPayload

	// StartedAt is used as the detection time of every exposure.
	StartedAt time.Time

	// Catalog is set by the catalog_load step.
	Catalog *model.Catalog

	// Candidates are the raw observations; dedup shrinks the slice in place.
	Candidates []model.Candidate

	// Exposures are the resolved, masked exposures.
	Exposures []model.Exposure

	// Assessments are the persisted category scores.
	Assessments []model.ThreatAssessment

	// Report is built by the score step.
	Report *model.ScanReport

	// Diagnostics collects counters along the way.
	Diagnostics model.Diagnostics

	// PerformedSteps lists the steps that ran.
	PerformedSteps []string

	// Err is the error that stopped the run, if any.
	Err error
}

// NewScanRun creates the state for one run with a fresh run ID.
func NewScanRun(userID string, p *payload.ScanPayload) *ScanRun {
	return &ScanRun{
		RunID:          uuid.NewString(),
		UserID:         userID,
		Payload:        p,
		StartedAt:      time.Now().UTC(),
		Candidates:     make([]model.Candidate, 0),
		Exposures:      make([]model.Exposure, 0),
		Assessments:    make([]model.ThreatAssessment, 0),
		PerformedSteps: make([]string, 0),
	}
}

// MatchedIngredientKeys returns the distinct ingredient keys of the run's
// exposures, sorted.
func (r *ScanRun) MatchedIngredientKeys() []string {
	return model.MatchedIngredientKeys(r.Exposures)
}
