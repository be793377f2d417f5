package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be sanitized.
// These keys commonly carry credentials or raw personal identifiers.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization": true,
	"cookie":        true,
	"x-api-key":     true,

	// Authentication
	"password":     true,
	"passwd":       true,
	"secret":       true,
	"token":        true,
	"api_key":      true,
	"apikey":       true,
	"access_token": true,
	"session":      true,
	"credential":   true,
	"credentials":  true,

	// Raw identifier values
	"value":     true,
	"raw_value": true,
	"raw":       true,
	"snippet":   true,
	"email":     true,
	"phone":     true,
	"pan":       true,
	"aadhaar":   true,
	"card":      true,
	"upi":       true,
	"dob":       true,
	"address":   true,
}

// sensitiveKeywords mark a key as sensitive when contained anywhere in it.
// Short identifiers like "pan" are only matched exactly via sensitiveKeys,
// since as substrings they hit ordinary words ("company", "expand").
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "credential", "private",
	"email", "phone", "aadhaar", "birth",
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be sanitized regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// Email addresses
	regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),

	// Payment handles (name@bank)
	regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,}@[a-zA-Z]{2,}$`),

	// Tax IDs (5 letters, 4 digits, 1 letter)
	regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`),

	// Phone numbers, national IDs and card numbers: 10 or more digits with
	// optional separators
	regexp.MustCompile(`^\+?(?:\d[\s\-().]*){10,}$`),
}

// embeddedPatterns are identifiers replaced inside longer strings such as
// error messages.
var embeddedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	regexp.MustCompile(`\b(?:\d{4}[\s-]?){3}\d{4}\b`),
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and sanitizes sensitive attributes.
// It implements the slog.Handler interface.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// A nil handler falls back to the default slog handler.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record and passes it to the wrapped handler.
// The message itself is treated like a string attribute value.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, redactEmbedded(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr returns a sanitized copy of the attribute.
// Groups are sanitized recursively.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if redacted := redactEmbedded(strVal); redacted != strVal {
			return slog.String(a.Key, redacted)
		}
	case slog.KindAny:
		// errors often quote the offending value
		if err, ok := a.Value.Any().(error); ok {
			msg := err.Error()
			if redacted := redactEmbedded(msg); redacted != msg {
				return slog.String(a.Key, redacted)
			}
		}
	}

	return a
}

// containsSensitiveKeyword checks if the key contains any sensitive keyword.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if the whole value looks like a secret or an
// identifier.
func isSensitiveValue(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// redactEmbedded replaces identifiers inside a longer string.
func redactEmbedded(s string) string {
	for _, pattern := range embeddedPatterns {
		s = pattern.ReplaceAllString(s, MaskValue)
	}
	return s
}

// NewSecureLogger creates a new slog.Logger with secure handling.
// The logger writes text output to the given writer.
// If verbose is true, debug level logs are enabled; otherwise warnings and
// errors only.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	secureHandler := NewSecureHandler(textHandler)

	return slog.New(secureHandler)
}

// NewSecureJSONLogger creates a new slog.Logger with JSON output and secure
// handling. This is useful for structured logging in production.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	secureHandler := NewSecureHandler(jsonHandler)

	return slog.New(secureHandler)
}
