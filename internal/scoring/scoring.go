package scoring

import (
	"math"
	"sort"

	"github.com/nao1215/exposurescan/internal/model"
)

// AggregateBaseline is added to the catalog coverage so the aggregate score
// never drops below it.
const AggregateBaseline = 30.0

// MaxScore is the upper bound of every score.
const MaxScore = 100

// CategoryScores scores every catalog category against matchedKeys.
// The result holds one assessment per category, including zero scores,
// sorted by score descending then key. Callers decide what to persist.
func CategoryScores(catalog *model.Catalog, userID string, matchedKeys []string) []model.ThreatAssessment {
	matched := toSet(matchedKeys)
	categories := catalog.Categories()
	assessments := make([]model.ThreatAssessment, 0, len(categories))

	for _, cat := range categories {
		ingredients := catalog.CategoryIngredients(cat.Key)

		hits := make([]string, 0)
		for _, key := range ingredients {
			if matched[key] {
				hits = append(hits, key)
			}
		}

		assessments = append(assessments, model.ThreatAssessment{
			UserID:             userID,
			ThreatID:           cat.ID,
			ThreatKey:          cat.Key,
			ThreatName:         cat.Name,
			Score:              CategoryScore(len(hits), len(ingredients)),
			MatchedIngredients: hits,
		})
	}

	model.SortAssessments(assessments)
	return assessments
}

// CategoryScore returns round(matched / max(1, total) * 100).
func CategoryScore(matched, total int) int {
	if total < 1 {
		total = 1
	}
	score := int(math.Round(float64(matched) / float64(total) * 100))
	return clampInt(score, 0, MaxScore)
}

// Positive returns the assessments with a score above zero.
func Positive(assessments []model.ThreatAssessment) []model.ThreatAssessment {
	kept := make([]model.ThreatAssessment, 0, len(assessments))
	for _, a := range assessments {
		if a.Score > 0 {
			kept = append(kept, a)
		}
	}
	return kept
}

// Aggregate computes min(100, round2(found/total*100 + 30)) where found is
// the number of distinct matched keys present in the catalog and total is
// the catalog size with a floor of 1.
func Aggregate(catalog *model.Catalog, matchedKeys []string) model.AggregateScore {
	found := 0
	for key := range toSet(matchedKeys) {
		if _, ok := catalog.Ingredient(key); ok {
			found++
		}
	}

	total := catalog.Size()
	denominator := total
	if denominator < 1 {
		denominator = 1
	}

	coverage := round2(float64(found) / float64(denominator) * 100)
	score := math.Min(MaxScore, round2(float64(found)/float64(denominator)*100+AggregateBaseline))

	return model.AggregateScore{
		Score:            score,
		IngredientsFound: found,
		TotalIngredients: total,
		Coverage:         coverage,
		Baseline:         AggregateBaseline,
		Risk:             model.RiskForScore(score),
	}
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
