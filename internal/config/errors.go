package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no scan payload is ever processed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxTextBytes is returned when the extraction text limit is
	// not positive.
	ErrInvalidMaxTextBytes = errors.New("invalid max text bytes: must be positive")

	// ErrInvalidSnippetLength is returned when the evidence snippet length is
	// not positive.
	ErrInvalidSnippetLength = errors.New("invalid snippet length: must be positive")

	// ErrInvalidTimeout is returned when the per-run timeout is negative.
	// Use 0 for no timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrNoDBDir is returned when no database directory is configured.
	ErrNoDBDir = errors.New("no database directory configured")
)
