package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nao1215/exposurescan/internal/model"
)

// ErrEmptyUserID is returned when a snapshot operation has no user.
var ErrEmptyUserID = errors.New("user id is empty")

// Snapshot is the full exposure and assessment state of one user.
type Snapshot struct {
	UserID      string
	Exposures   []model.Exposure
	Assessments []model.ThreatAssessment
}

// ReplaceSnapshot replaces the user's exposures and assessments in one
// transaction. On success the IDs of the snapshot rows are filled in.
// On failure nothing changes.
func (edb *ExposureDB) ReplaceSnapshot(ctx context.Context, snap *Snapshot) error {
	if snap.UserID == "" {
		return ErrEmptyUserID
	}

	tx, err := edb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_ingredient_exposures WHERE user_id = ?`, snap.UserID); err != nil {
		return fmt.Errorf("failed to delete exposures: %w", err)
	}

	exposureQuery := `
	INSERT INTO user_ingredient_exposures
		(user_id, ingredient_id, source, evidence_url, evidence_snippet, confidence, detected_at, value_masked)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range snap.Exposures {
		e := &snap.Exposures[i]
		e.UserID = snap.UserID

		result, err := tx.ExecContext(ctx, exposureQuery,
			e.UserID,
			e.IngredientID,
			string(e.Source),
			nullString(e.EvidenceURL),
			nullString(e.EvidenceSnippet),
			e.Confidence,
			formatTimestamp(e.DetectedAt),
			nullStringPtr(e.ValueMasked),
		)
		if err != nil {
			return fmt.Errorf("failed to insert exposure %s: %w", e.IngredientKey, err)
		}
		if e.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read exposure id: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM threat_assessments WHERE user_id = ?`, snap.UserID); err != nil {
		return fmt.Errorf("failed to delete assessments: %w", err)
	}

	assessmentQuery := `
	INSERT INTO threat_assessments (user_id, threat_id, score, matched_ingredients)
	VALUES (?, ?, ?, ?)
	`
	for i := range snap.Assessments {
		a := &snap.Assessments[i]
		a.UserID = snap.UserID

		matchedJSON, err := json.Marshal(a.MatchedIngredients)
		if err != nil {
			return fmt.Errorf("failed to serialize matched ingredients: %w", err)
		}

		result, err := tx.ExecContext(ctx, assessmentQuery, a.UserID, a.ThreatID, a.Score, string(matchedJSON))
		if err != nil {
			return fmt.Errorf("failed to insert assessment %s: %w", a.ThreatKey, err)
		}
		if a.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read assessment id: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExposures returns the user's current exposures in insertion order.
func (edb *ExposureDB) ListExposures(ctx context.Context, userID string) ([]model.Exposure, error) {
	query := `
	SELECT e.id, e.user_id, e.ingredient_id, i.key, e.source, e.evidence_url,
		e.evidence_snippet, e.confidence, e.detected_at, e.value_masked
	FROM user_ingredient_exposures e
	JOIN threat_ingredients i ON i.id = e.ingredient_id
	WHERE e.user_id = ?
	ORDER BY e.id
	`

	rows, err := edb.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exposures: %w", err)
	}
	defer rows.Close()

	exposures := make([]model.Exposure, 0)
	for rows.Next() {
		var e model.Exposure
		var source, detectedAt string
		var evidenceURL, snippet, masked sql.NullString

		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.IngredientID,
			&e.IngredientKey,
			&source,
			&evidenceURL,
			&snippet,
			&e.Confidence,
			&detectedAt,
			&masked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exposure: %w", err)
		}

		e.Source = model.DetectionSource(source)
		e.EvidenceURL = evidenceURL.String
		e.EvidenceSnippet = snippet.String
		e.DetectedAt = parseTimestamp(detectedAt)
		if masked.Valid {
			v := masked.String
			e.ValueMasked = &v
		}
		exposures = append(exposures, e)
	}

	return exposures, rows.Err()
}

// MatchedIngredientKeys returns the distinct ingredient keys the user has at
// least one exposure for, sorted.
func (edb *ExposureDB) MatchedIngredientKeys(ctx context.Context, userID string) ([]string, error) {
	query := `
	SELECT DISTINCT i.key
	FROM user_ingredient_exposures e
	JOIN threat_ingredients i ON i.id = e.ingredient_id
	WHERE e.user_id = ?
	ORDER BY i.key
	`

	rows, err := edb.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matched ingredients: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// ListAssessments returns the user's assessments ordered by score
// descending, then category key.
func (edb *ExposureDB) ListAssessments(ctx context.Context, userID string) ([]model.ThreatAssessment, error) {
	query := `
	SELECT a.id, a.user_id, a.threat_id, c.key, c.name, a.score, a.matched_ingredients
	FROM threat_assessments a
	JOIN threat_categories c ON c.id = a.threat_id
	WHERE a.user_id = ?
	ORDER BY a.score DESC, c.key
	`

	rows, err := edb.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]model.ThreatAssessment, 0)
	for rows.Next() {
		var a model.ThreatAssessment
		var matchedJSON string

		if err := rows.Scan(&a.ID, &a.UserID, &a.ThreatID, &a.ThreatKey, &a.ThreatName, &a.Score, &matchedJSON); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(matchedJSON), &a.MatchedIngredients); err != nil {
			return nil, fmt.Errorf("failed to parse matched ingredients: %w", err)
		}
		assessments = append(assessments, a)
	}

	return assessments, rows.Err()
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
