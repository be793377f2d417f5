package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateKey is returned when a catalog contains the same key twice.
var ErrDuplicateKey = errors.New("duplicate catalog key")

// ErrUnknownCategory is returned when an ingredient references a category
// that is not part of the catalog.
var ErrUnknownCategory = errors.New("ingredient references unknown category")

// ThreatCategory is one kind of harm (e.g. identity theft).
// Categories are created at catalog seed time and never change at runtime.
type ThreatCategory struct {
	ID          int64  `json:"id" yaml:"-"`
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ThreatIngredient is one discoverable personal-data fact type.
type ThreatIngredient struct {
	ID               int64             `json:"id" yaml:"-"`
	Key              string            `json:"key" yaml:"key"`
	Name             string            `json:"name" yaml:"name"`
	DetectionSources []DetectionSource `json:"detection_sources" yaml:"detectionSources"`
	PossibleScam     string            `json:"possible_scam,omitempty" yaml:"possibleScam,omitempty"`
	ThreatCategoryID int64             `json:"threat_category_id" yaml:"-"`

	// CategoryKey is the key of the owning category. It is the join column
	// used when seeding and is carried in memory for lookups.
	CategoryKey string `json:"category_key" yaml:"category"`
}

// HasSource reports whether the ingredient declares the given source.
func (i *ThreatIngredient) HasSource(src DetectionSource) bool {
	for _, s := range i.DetectionSources {
		if s == src {
			return true
		}
	}
	return false
}

// Catalog is the in-memory view of the threat catalog.
// It is read-only once built and safe for concurrent use.
type Catalog struct {
	categories  []ThreatCategory
	ingredients map[string]*ThreatIngredient
	byCategory  map[string][]string
	bySource    map[DetectionSource][]string
	ordered     []string
}

// NewCatalog builds a Catalog and its reverse indexes.
// Ingredients must reference categories by CategoryKey; ThreatCategoryID is
// filled from the matching category.
func NewCatalog(categories []ThreatCategory, ingredients []ThreatIngredient) (*Catalog, error) {
	c := &Catalog{
		categories:  make([]ThreatCategory, 0, len(categories)),
		ingredients: make(map[string]*ThreatIngredient, len(ingredients)),
		byCategory:  make(map[string][]string, len(categories)),
		bySource:    make(map[DetectionSource][]string),
		ordered:     make([]string, 0, len(ingredients)),
	}

	categoryIDs := make(map[string]int64, len(categories))
	for _, cat := range categories {
		if _, ok := categoryIDs[cat.Key]; ok {
			return nil, fmt.Errorf("%w: category %q", ErrDuplicateKey, cat.Key)
		}
		categoryIDs[cat.Key] = cat.ID
		c.categories = append(c.categories, cat)
		c.byCategory[cat.Key] = make([]string, 0)
	}

	for _, ing := range ingredients {
		if _, ok := c.ingredients[ing.Key]; ok {
			return nil, fmt.Errorf("%w: ingredient %q", ErrDuplicateKey, ing.Key)
		}
		catID, ok := categoryIDs[ing.CategoryKey]
		if !ok {
			return nil, fmt.Errorf("%w: %q -> %q", ErrUnknownCategory, ing.Key, ing.CategoryKey)
		}
		ing.ThreatCategoryID = catID
		ing.DetectionSources = append([]DetectionSource(nil), ing.DetectionSources...)

		stored := ing
		c.ingredients[ing.Key] = &stored
		c.ordered = append(c.ordered, ing.Key)
		c.byCategory[ing.CategoryKey] = append(c.byCategory[ing.CategoryKey], ing.Key)
		for _, src := range ing.DetectionSources {
			c.bySource[src] = append(c.bySource[src], ing.Key)
		}
	}

	sort.Strings(c.ordered)
	for key := range c.byCategory {
		sort.Strings(c.byCategory[key])
	}
	for src := range c.bySource {
		sort.Strings(c.bySource[src])
	}

	return c, nil
}

// Ingredient returns the ingredient for a key.
func (c *Catalog) Ingredient(key string) (*ThreatIngredient, bool) {
	ing, ok := c.ingredients[key]
	return ing, ok
}

// Categories returns all categories in catalog order.
func (c *Catalog) Categories() []ThreatCategory {
	return append([]ThreatCategory(nil), c.categories...)
}

// Category returns the category with the given key.
func (c *Catalog) Category(key string) (ThreatCategory, bool) {
	for _, cat := range c.categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return ThreatCategory{}, false
}

// CategoryIngredients returns the sorted ingredient keys of a category.
func (c *Catalog) CategoryIngredients(categoryKey string) []string {
	return append([]string(nil), c.byCategory[categoryKey]...)
}

// SourceIngredients returns the sorted keys of ingredients declaring src.
func (c *Catalog) SourceIngredients(src DetectionSource) []string {
	return append([]string(nil), c.bySource[src]...)
}

// IngredientKeys returns all ingredient keys sorted.
func (c *Catalog) IngredientKeys() []string {
	return append([]string(nil), c.ordered...)
}

// Size returns the number of ingredients in the catalog.
func (c *Catalog) Size() int {
	return len(c.ingredients)
}
