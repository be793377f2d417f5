package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/exposurescan/internal/model"
)

// SourceDistribution reports, per detection source, how many catalog
// ingredients declare the source and how many of those the user triggered.
// Sources are listed in label order, including sources with no ingredients.
func SourceDistribution(catalog *model.Catalog, matchedKeys []string) model.SourceDistribution {
	matched := sortedKeys(toSet(matchedKeys))
	sources := model.AllSources()
	shares := make([]model.SourceShare, 0, len(sources))
	parts := make([]string, 0, len(sources))

	for _, src := range sources {
		system := len(catalog.SourceIngredients(src))

		user := 0
		for _, key := range matched {
			ing, ok := catalog.Ingredient(key)
			if ok && ing.HasSource(src) {
				user++
			}
		}

		share := model.SourceShare{
			Source:      src,
			SystemCount: system,
			UserCount:   user,
			Percentage:  Percentage(user, system),
		}
		shares = append(shares, share)
		parts = append(parts, fmt.Sprintf("%s=%d/%d (%s%%)",
			src, user, system, strconv.FormatFloat(share.Percentage, 'f', -1, 64)))
	}

	return model.SourceDistribution{
		Sources: shares,
		Summary: strings.Join(parts, ", "),
	}
}

// Percentage returns round(part/whole*10000)/100, or 0 when whole is 0.
func Percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
