package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "exposurescan"

	// DefaultBatchSize of 4 concurrent fusion runs keeps the single SQLite
	// writer busy without piling up waiting transactions.
	DefaultBatchSize = 4

	// DefaultMaxTextBytes bounds the free text handed to the identifier
	// extractor per field. Research narratives larger than this are
	// truncated with a warning.
	DefaultMaxTextBytes = 512 * 1024 // 512KB

	// DefaultSnippetLength is the evidence snippet length in runes.
	DefaultSnippetLength = 160
)

// Config holds all configuration options for exposurescan.
// This struct is populated from defaults, the configuration file and CLI
// flags, in that order, and passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable.
type Config struct {
	// DBDir is the directory path for the SQLite database.
	// Defaults to XDG data directory (~/.local/share/exposurescan on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent fusion runs when ingesting
	// several payloads. Runs for the same user are still serialized.
	BatchSize int

	// MaxTextBytes is the maximum number of bytes of one free text field
	// inspected by the identifier extractor.
	MaxTextBytes int

	// SnippetLength is the evidence snippet length in runes.
	SnippetLength int

	// Timeout bounds a single fusion run. Zero means no timeout.
	Timeout time.Duration

	// CatalogFile is a catalog seed file used by "catalog seed".
	// When empty, the embedded default catalog is used.
	CatalogFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .exposurescan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DBDir:         XDGDataDir(),
		BatchSize:     DefaultBatchSize,
		MaxTextBytes:  DefaultMaxTextBytes,
		SnippetLength: DefaultSnippetLength,
	}
}

// XDGDataDir returns the XDG data directory for exposurescan.
// On Linux: ~/.local/share/exposurescan
// On macOS: ~/Library/Application Support/exposurescan
// On Windows: %LOCALAPPDATA%\exposurescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for exposurescan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.DBDir == "" {
		return ErrNoDBDir
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxTextBytes <= 0 {
		return ErrInvalidMaxTextBytes
	}

	if c.SnippetLength <= 0 {
		return ErrInvalidSnippetLength
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
