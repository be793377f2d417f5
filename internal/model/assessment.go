package model

import "sort"

// ThreatAssessment is the score of one threat category for one user.
// It is derived from the user's exposure set and fully recomputed each run.
type ThreatAssessment struct {
	ID       int64  `json:"id"`
	UserID   string `json:"user_id"`
	ThreatID int64  `json:"threat_id"`

	// ThreatKey and ThreatName are denormalized from the category for reporting.
	ThreatKey  string `json:"threat_key"`
	ThreatName string `json:"threat_name"`

	// Score is the percentage (0-100) of the category's ingredients matched.
	Score int `json:"score"`

	// MatchedIngredients are the matched ingredient keys in sorted order.
	MatchedIngredients []string `json:"matched_ingredients"`
}

// SortAssessments orders assessments by descending score, then by key.
func SortAssessments(assessments []ThreatAssessment) {
	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].Score != assessments[j].Score {
			return assessments[i].Score > assessments[j].Score
		}
		return assessments[i].ThreatKey < assessments[j].ThreatKey
	})
}
