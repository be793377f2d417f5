package model

import (
	"math"
	"sort"
	"strings"
)

// DetectionSource is the channel through which an exposure was surfaced.
type DetectionSource string

// Detection source constants.
const (
	// SourceBreach is a breach database lookup (email breach, password check).
	SourceBreach DetectionSource = "BREACH"
	// SourceWebSearch is a search-engine web presence scan.
	SourceWebSearch DetectionSource = "WEB_SEARCH"
	// SourceDarkWeb is a dark web monitoring hit.
	SourceDarkWeb DetectionSource = "DARK_WEB"
	// SourceSocialSearch is a social network search.
	SourceSocialSearch DetectionSource = "SOCIAL_SEARCH"
	// SourceAIPrompt is AI-driven open source intelligence research.
	SourceAIPrompt DetectionSource = "AI_PROMPT"
)

// fallbackConfidence is used for sources without a dedicated default.
const fallbackConfidence = 0.5

// AllSources returns every detection source sorted by label.
func AllSources() []DetectionSource {
	sources := []DetectionSource{
		SourceBreach,
		SourceWebSearch,
		SourceDarkWeb,
		SourceSocialSearch,
		SourceAIPrompt,
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i] < sources[j]
	})
	return sources
}

// String returns the label of the source.
func (s DetectionSource) String() string {
	return string(s)
}

// IsValid returns true if this is a known detection source.
func (s DetectionSource) IsValid() bool {
	switch s {
	case SourceBreach, SourceWebSearch, SourceDarkWeb, SourceSocialSearch, SourceAIPrompt:
		return true
	default:
		return false
	}
}

// DefaultConfidence returns the confidence assigned to an exposure from this
// source when the producing step did not supply one.
func (s DetectionSource) DefaultConfidence() float64 {
	switch s {
	case SourceBreach:
		return 0.95
	case SourceWebSearch:
		return 0.6
	case SourceSocialSearch:
		return 0.65
	case SourceAIPrompt:
		return 0.5
	default:
		return fallbackConfidence
	}
}

// ParseDetectionSource converts a label to a DetectionSource.
// Matching is case-insensitive; "-" and " " are treated as "_".
// Unknown labels return the normalized label and false.
func ParseDetectionSource(s string) (DetectionSource, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	src := DetectionSource(normalized)
	return src, src.IsValid()
}

// ClampConfidence bounds a confidence value to [0, 1].
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
