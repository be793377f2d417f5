package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/exposurescan/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the model types already carry json tags and the
// report is written once per run.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(report)
}

// WriteRuns outputs the run listing as a JSON array.
func (w *JSONWriter) WriteRuns(runs []model.ScanRunSummary) (int, error) {
	if runs == nil {
		runs = []model.ScanRunSummary{}
	}
	return w.writeJSON(runs)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport is a wrapper for the report with additional metadata.
//
// Design decision: We wrap the report rather than modifying ScanReport
// because the run history stores ScanReport as-is and the version belongs
// to the output, not to the run.
type JSONReport struct {
	// Version is the exposurescan version that generated this output.
	Version string `json:"version"`

	// Report is the full fusion report.
	Report *model.ScanReport `json:"report"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.ScanReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
	}
}

// FullJSONWriter outputs reports with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the exposurescan version string.
	version string
}

// NewFullJSONWriter creates a writer for reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
