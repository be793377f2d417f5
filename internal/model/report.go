package model

import (
	"time"
)

// ScanReport is the consolidated result of one fusion run for one user.
//
// Design decision: We return a single struct containing exposures, source
// distribution, aggregate and assessments rather than separate values so the
// report can be serialized as-is for output and for the run history table.
type ScanReport struct {
	// RunID uniquely identifies the fusion run.
	RunID string `json:"run_id"`

	// UserID is the subject of the scan.
	UserID string `json:"user_id"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at"`

	// Exposures are the exposures created by this run.
	Exposures []Exposure `json:"exposures"`

	// SourceDistribution reports catalog coverage per detection source.
	SourceDistribution SourceDistribution `json:"source_distribution"`

	// Aggregate is the overall vulnerability score with its breakdown.
	Aggregate AggregateScore `json:"aggregate"`

	// Assessments are the persisted category scores, highest first.
	Assessments []ThreatAssessment `json:"assessments"`

	// Diagnostics counts what the run dropped along the way.
	Diagnostics Diagnostics `json:"diagnostics"`
}

// SourceShare is the coverage of one detection source.
type SourceShare struct {
	Source DetectionSource `json:"source"`

	// SystemCount is the number of catalog ingredients declaring the source.
	SystemCount int `json:"system_count"`

	// UserCount is the number of distinct triggered ingredients that also
	// declare the source.
	UserCount int `json:"user_count"`

	// Percentage is UserCount/SystemCount as a percentage with two decimals.
	Percentage float64 `json:"percentage"`
}

// SourceDistribution is the per-source breakdown sorted by source label.
type SourceDistribution struct {
	Sources []SourceShare `json:"sources"`

	// Summary is "SOURCE=user/total (pct%), ..." for display.
	Summary string `json:"summary"`
}

// AggregateScore is the single vulnerability score with its inputs.
type AggregateScore struct {
	// Score is min(100, round2(found/total*100 + Baseline)).
	Score float64 `json:"score"`

	// IngredientsFound is the number of distinct matched ingredient keys.
	IngredientsFound int `json:"ingredients_found"`

	// TotalIngredients is the catalog size.
	TotalIngredients int `json:"total_ingredients"`

	// Coverage is found/total*100 before the baseline is added.
	Coverage float64 `json:"coverage"`

	// Baseline is the constant floor added to the coverage.
	Baseline float64 `json:"baseline"`

	// Risk is the banded interpretation of Score.
	Risk RiskLevel `json:"risk"`
}

// Diagnostics are counters collected during a fusion run.
// They are informational and not part of the scoring contract.
type Diagnostics struct {
	// CandidatesSeen is the number of candidates produced by all branches.
	CandidatesSeen int `json:"candidates_seen"`

	// DuplicatesDropped is the number of candidates collapsed by dedup.
	DuplicatesDropped int `json:"duplicates_dropped"`

	// UnknownDropped is the number of candidates whose ingredient key was
	// not in the catalog.
	UnknownDropped int `json:"unknown_dropped"`

	// BranchesProcessed lists branches that contributed (possibly nothing).
	BranchesProcessed []string `json:"branches_processed,omitempty"`

	// BranchesSkipped lists branches whose processing failed.
	BranchesSkipped []string `json:"branches_skipped,omitempty"`
}

// ScanRunSummary is the metadata of one stored fusion run.
type ScanRunSummary struct {
	ID             int64     `json:"id"`
	RunID          string    `json:"run_id"`
	UserID         string    `json:"user_id"`
	Timestamp      time.Time `json:"timestamp"`
	AggregateScore float64   `json:"aggregate_score"`
	ExposureCount  int       `json:"exposure_count"`
}
