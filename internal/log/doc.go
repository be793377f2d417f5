// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of credentials and personal identifiers
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The engine handles raw personal data (emails, phone numbers, national IDs,
// card numbers) before it is masked for storage. The SecureHandler makes sure
// none of it reaches log output:
//   - Attributes whose key names a credential or identifier are replaced
//   - String values shaped like an identifier are replaced
//   - Emails and card numbers embedded in longer strings are replaced in place
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of personal data in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Warn("unknown ingredient key",
//	    "ingredient", "shoe_size",
//	    "value", "42",              // Will be sanitized to "***REDACTED***"
//	)
package log
