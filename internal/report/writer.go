package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/exposurescan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
// Implementations write fusion results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same
// API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScanReport) (int, error)

	// WriteRuns outputs a listing of stored fusion runs.
	WriteRuns(runs []model.ScanRunSummary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRuns outputs the run listing to all configured Writers.
func (m *MultiWriter) WriteRuns(runs []model.ScanRunSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRuns(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// displayName turns a key such as "ACCOUNT_TAKEOVER" or "email_id" into
// "Account Takeover" or "Email Id".
// A cases.Caser is stateful, so one is created per call.
func displayName(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(key), "_", " "))
}

// maskedValue returns the masked value for display, or "-" when the
// exposure has none.
func maskedValue(e model.Exposure) string {
	if e.ValueMasked == nil || *e.ValueMasked == "" {
		return "-"
	}
	return *e.ValueMasked
}

// formatScore renders a score with two decimals.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// formatConfidence renders a confidence in [0,1] as a percentage.
func formatConfidence(c float64) string {
	return fmt.Sprintf("%.0f%%", c*100)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
