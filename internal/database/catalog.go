package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nao1215/exposurescan/internal/model"
)

// SeedResult reports what SeedCatalog wrote.
type SeedResult struct {
	Categories  int
	Ingredients int
}

// SeedCatalog upserts categories and ingredients by key in one transaction.
// Existing rows keep their IDs so that stored exposures stay valid.
// Ingredients reference their category through CategoryKey.
func (edb *ExposureDB) SeedCatalog(ctx context.Context, categories []model.ThreatCategory, ingredients []model.ThreatIngredient) (*SeedResult, error) {
	tx, err := edb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	categoryQuery := `
	INSERT INTO threat_categories (key, name, description)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		name = excluded.name,
		description = excluded.description
	`

	categoryIDs := make(map[string]int64, len(categories))
	for _, cat := range categories {
		if _, err := tx.ExecContext(ctx, categoryQuery, cat.Key, cat.Name, cat.Description); err != nil {
			return nil, fmt.Errorf("failed to upsert category %s: %w", cat.Key, err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM threat_categories WHERE key = ?`, cat.Key).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to read category id %s: %w", cat.Key, err)
		}
		categoryIDs[cat.Key] = id
	}

	ingredientQuery := `
	INSERT INTO threat_ingredients (key, name, detection_sources, possible_scam, threat_category_id)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		name = excluded.name,
		detection_sources = excluded.detection_sources,
		possible_scam = excluded.possible_scam,
		threat_category_id = excluded.threat_category_id
	`

	for _, ing := range ingredients {
		categoryID, ok := categoryIDs[ing.CategoryKey]
		if !ok {
			if err := tx.QueryRowContext(ctx, `SELECT id FROM threat_categories WHERE key = ?`, ing.CategoryKey).Scan(&categoryID); err != nil {
				if err == sql.ErrNoRows {
					return nil, fmt.Errorf("%w: %s -> %s", model.ErrUnknownCategory, ing.Key, ing.CategoryKey)
				}
				return nil, fmt.Errorf("failed to read category id %s: %w", ing.CategoryKey, err)
			}
		}

		sourcesJSON, err := json.Marshal(ing.DetectionSources)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize detection sources: %w", err)
		}

		if _, err := tx.ExecContext(ctx, ingredientQuery,
			ing.Key,
			ing.Name,
			string(sourcesJSON),
			ing.PossibleScam,
			categoryID,
		); err != nil {
			return nil, fmt.Errorf("failed to upsert ingredient %s: %w", ing.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &SeedResult{Categories: len(categories), Ingredients: len(ingredients)}, nil
}

// LoadCatalog reads the whole catalog and builds its in-memory indexes.
func (edb *ExposureDB) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	categories, err := edb.listCategories(ctx)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT i.id, i.key, i.name, i.detection_sources, i.possible_scam, i.threat_category_id, c.key
	FROM threat_ingredients i
	JOIN threat_categories c ON c.id = i.threat_category_id
	ORDER BY i.key
	`

	rows, err := edb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]model.ThreatIngredient, 0)
	for rows.Next() {
		var ing model.ThreatIngredient
		var sourcesJSON string

		if err := rows.Scan(
			&ing.ID,
			&ing.Key,
			&ing.Name,
			&sourcesJSON,
			&ing.PossibleScam,
			&ing.ThreatCategoryID,
			&ing.CategoryKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}

		if err := json.Unmarshal([]byte(sourcesJSON), &ing.DetectionSources); err != nil {
			return nil, fmt.Errorf("failed to parse detection sources of %s: %w", ing.Key, err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ingredients: %w", err)
	}

	catalog, err := model.NewCatalog(categories, ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	return catalog, nil
}

func (edb *ExposureDB) listCategories(ctx context.Context) ([]model.ThreatCategory, error) {
	rows, err := edb.db.QueryContext(ctx, `
	SELECT id, key, name, description FROM threat_categories
	ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.ThreatCategory, 0)
	for rows.Next() {
		var cat model.ThreatCategory
		if err := rows.Scan(&cat.ID, &cat.Key, &cat.Name, &cat.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}
