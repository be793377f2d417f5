package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFileName is the name of the database file inside the data directory.
const DBFileName = "exposurescan.db"

// ErrDatabaseNotFound is returned by Open when the database does not exist
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// ExposureDB provides SQLite-based storage for the catalog, exposure
// snapshots and scan history.
//
// Design decision: We use a single database file for all users. Snapshots
// are keyed by user ID and replaced transactionally, so there is no need to
// isolate users on disk.
type ExposureDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ExposureDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ExposureDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*ExposureDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; rwc allows it.
	// Foreign keys are per connection in SQLite, so they go in the DSN.
	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	dsn := dbPath + "?mode=" + mode + "&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer. A single connection also serializes
	// snapshot transactions across goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &ExposureDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := edb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return edb, nil
}

// Close closes the database connection.
func (edb *ExposureDB) Close() error {
	return edb.db.Close()
}

// Path returns the database file path.
func (edb *ExposureDB) Path() string {
	return edb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (edb *ExposureDB) createTables() error {
	schema := `
	-- Threat categories group ingredients into kinds of harm
	CREATE TABLE IF NOT EXISTS threat_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

	-- Threat ingredients are the discoverable fact types; detection_sources
	-- is a JSON array of source labels
	CREATE TABLE IF NOT EXISTS threat_ingredients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		detection_sources TEXT NOT NULL,
		possible_scam TEXT NOT NULL DEFAULT '',
		threat_category_id INTEGER NOT NULL REFERENCES threat_categories(id)
	);

	CREATE INDEX IF NOT EXISTS idx_ingredients_category ON threat_ingredients(threat_category_id);

	-- Exposures are the latest snapshot per user; value_masked never holds
	-- the raw value
	CREATE TABLE IF NOT EXISTS user_ingredient_exposures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		ingredient_id INTEGER NOT NULL REFERENCES threat_ingredients(id),
		source TEXT NOT NULL,
		evidence_url TEXT,
		evidence_snippet TEXT,
		confidence REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
		detected_at DATETIME NOT NULL,
		value_masked TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_exposures_user ON user_ingredient_exposures(user_id);

	-- Assessments are recomputed with every snapshot; zero scores are not stored
	CREATE TABLE IF NOT EXISTS threat_assessments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		threat_id INTEGER NOT NULL REFERENCES threat_categories(id),
		score INTEGER NOT NULL CHECK (score >= 0 AND score <= 100),
		matched_ingredients TEXT NOT NULL,
		UNIQUE(user_id, threat_id)
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_user ON threat_assessments(user_id);

	-- Scan runs store every report as JSON for history
	CREATE TABLE IF NOT EXISTS scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		aggregate_score REAL NOT NULL,
		exposure_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_user ON scan_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON scan_runs(timestamp);
	`

	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// timestampLayout is fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp renders t the way it is stored.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // timestampLayout and driver-formatted times
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
