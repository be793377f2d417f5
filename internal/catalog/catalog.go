package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/exposurescan/internal/model"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Seed is the content of a catalog seed file.
type Seed struct {
	Categories  []model.ThreatCategory   `yaml:"categories"`
	Ingredients []model.ThreatIngredient `yaml:"ingredients"`
}

// Default returns the embedded default seed.
func Default() (*Seed, error) {
	return Parse(defaultCatalog)
}

// DefaultYAML returns the raw embedded seed file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// LoadFile reads and validates a seed file.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided catalog path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Load reads and validates a seed from r.
func Load(r io.Reader) (*Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates seed YAML. Source labels are accepted in any
// case and with "-" or " " in place of "_".
func Parse(data []byte) (*Seed, error) {
	var raw struct {
		Categories  []model.ThreatCategory `yaml:"categories"`
		Ingredients []struct {
			Key              string   `yaml:"key"`
			Name             string   `yaml:"name"`
			Category         string   `yaml:"category"`
			DetectionSources []string `yaml:"detectionSources"`
			PossibleScam     string   `yaml:"possibleScam"`
		} `yaml:"ingredients"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seed := &Seed{
		Categories:  make([]model.ThreatCategory, 0, len(raw.Categories)),
		Ingredients: make([]model.ThreatIngredient, 0, len(raw.Ingredients)),
	}

	for _, cat := range raw.Categories {
		cat.Key = strings.TrimSpace(cat.Key)
		if cat.Key == "" {
			return nil, fmt.Errorf("%w: category %q", ErrEmptyKey, cat.Name)
		}
		seed.Categories = append(seed.Categories, cat)
	}

	for _, ing := range raw.Ingredients {
		key := strings.TrimSpace(ing.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: ingredient %q", ErrEmptyKey, ing.Name)
		}
		if len(ing.DetectionSources) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoSources, key)
		}

		sources := make([]model.DetectionSource, 0, len(ing.DetectionSources))
		for _, label := range ing.DetectionSources {
			src, ok := model.ParseDetectionSource(label)
			if !ok {
				return nil, fmt.Errorf("%w: %s declares %q", ErrUnknownSource, key, label)
			}
			sources = append(sources, src)
		}

		seed.Ingredients = append(seed.Ingredients, model.ThreatIngredient{
			Key:              key,
			Name:             ing.Name,
			DetectionSources: sources,
			PossibleScam:     strings.TrimSpace(ing.PossibleScam),
			CategoryKey:      strings.TrimSpace(ing.Category),
		})
	}

	if len(seed.Ingredients) == 0 {
		return nil, ErrEmpty
	}

	// NewCatalog checks duplicates and category references.
	if _, err := seed.Catalog(); err != nil {
		return nil, err
	}

	return seed, nil
}

// Catalog builds the in-memory catalog for the seed.
func (s *Seed) Catalog() (*model.Catalog, error) {
	return model.NewCatalog(s.Categories, s.Ingredients)
}
