package model

import (
	"sort"
	"time"
)

// Candidate is an exposure observed by a scan branch before it is resolved
// against the catalog, masked and persisted.
//
// Candidates carry the raw value. They only live for the duration of one
// fusion run and must never be written to storage or logs as-is.
type Candidate struct {
	// IngredientKey is the catalog key the observation maps to.
	IngredientKey string

	// Value is the raw observed value. Empty means "no value".
	Value string

	// Source is the channel that surfaced the observation.
	Source DetectionSource

	// EvidenceURL points at where the value was observed, if known.
	EvidenceURL string

	// EvidenceSnippet is a short, already redacted excerpt of the evidence.
	EvidenceSnippet string

	// Confidence is the explicit confidence assigned by the producing step.
	// Nil means the source's default confidence applies.
	Confidence *float64

	// Branch names the scan branch that produced the candidate.
	Branch string
}

// Confidence returns a pointer to c for use in Candidate literals.
func Confidence(c float64) *float64 {
	return &c
}

// ResolvedConfidence returns the explicit confidence bounded to [0, 1], or
// the source default when none was supplied.
func (c *Candidate) ResolvedConfidence() float64 {
	if c.Confidence != nil {
		return ClampConfidence(*c.Confidence)
	}
	return c.Source.DefaultConfidence()
}

// Exposure records that a user was observed to have an ingredient exposed
// via a source with a given confidence.
type Exposure struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"user_id"`
	IngredientID    int64           `json:"ingredient_id"`
	IngredientKey   string          `json:"ingredient_key"`
	Source          DetectionSource `json:"source"`
	EvidenceURL     string          `json:"evidence_url,omitempty"`
	EvidenceSnippet string          `json:"evidence_snippet,omitempty"`
	Confidence      float64         `json:"confidence"`
	DetectedAt      time.Time       `json:"detected_at"`

	// ValueMasked is the display-safe rendition of the observed value.
	// Nil when the observation carried no value.
	ValueMasked *string `json:"value_masked,omitempty"`
}

// MatchedIngredientKeys returns the distinct ingredient keys across
// exposures, sorted.
func MatchedIngredientKeys(exposures []Exposure) []string {
	seen := make(map[string]bool, len(exposures))
	keys := make([]string, 0, len(exposures))
	for _, e := range exposures {
		if seen[e.IngredientKey] {
			continue
		}
		seen[e.IngredientKey] = true
		keys = append(keys, e.IngredientKey)
	}
	sort.Strings(keys)
	return keys
}
