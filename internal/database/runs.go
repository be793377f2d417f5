package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nao1215/exposurescan/internal/model"
)

// SaveScanRun stores a report in the run history and returns its row ID.
func (edb *ExposureDB) SaveScanRun(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO scan_runs (run_id, user_id, timestamp, aggregate_score, exposure_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := edb.db.ExecContext(ctx, query,
		report.RunID,
		report.UserID,
		formatTimestamp(report.GeneratedAt),
		report.Aggregate.Score,
		len(report.Exposures),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan run: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestScanRun returns the most recent report for a user, or nil if the
// user has none.
func (edb *ExposureDB) GetLatestScanRun(ctx context.Context, userID string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_runs
	WHERE user_id = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return edb.getReport(ctx, query, userID)
}

// GetScanRunByID returns the report stored under a run ID, or nil.
func (edb *ExposureDB) GetScanRunByID(ctx context.Context, runID string) (*model.ScanReport, error) {
	return edb.getReport(ctx, `SELECT report_json FROM scan_runs WHERE run_id = ?`, runID)
}

func (edb *ExposureDB) getReport(ctx context.Context, query string, arg any) (*model.ScanReport, error) {
	var reportJSON string
	err := edb.db.QueryRowContext(ctx, query, arg).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan run: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListScanRuns returns run metadata, newest first. An empty userID lists
// the runs of every user.
func (edb *ExposureDB) ListScanRuns(ctx context.Context, userID string) ([]model.ScanRunSummary, error) {
	query := `
	SELECT id, run_id, user_id, timestamp, aggregate_score, exposure_count
	FROM scan_runs
	`
	args := make([]any, 0, 1)
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := edb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.ScanRunSummary, 0)
	for rows.Next() {
		var run model.ScanRunSummary
		var timestamp string

		if err := rows.Scan(&run.ID, &run.RunID, &run.UserID, &timestamp, &run.AggregateScore, &run.ExposureCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = parseTimestamp(timestamp)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListUsers returns every user with at least one stored run.
func (edb *ExposureDB) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := edb.db.QueryContext(ctx, `
	SELECT DISTINCT user_id FROM scan_runs
	ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
