package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/exposurescan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables evidence and diagnostics in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeScore(&sb, report)
	w.writeAssessments(&sb, report)
	w.writeDistribution(&sb, report)
	w.writeExposures(&sb, report)
	if w.verbose {
		w.writeDiagnostics(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteRuns outputs the run listing as a table.
func (w *SimpleWriter) WriteRuns(runs []model.ScanRunSummary) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No fusion runs stored.\n")
		return w.output.Write([]byte(sb.String()))
	}

	sb.WriteString(fmt.Sprintf("%-6s %-36s %-20s %-20s %7s %9s\n", "ID", "RUN", "USER", "TIMESTAMP", "SCORE", "EXPOSURES"))
	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("%-6d %-36s %-20s %-20s %7s %9d\n",
			r.ID,
			r.RunID,
			truncateString(r.UserID, 20),
			r.Timestamp.Format("2006-01-02 15:04:05"),
			formatScore(r.AggregateScore),
			r.ExposureCount,
		))
	}

	return w.output.Write([]byte(sb.String()))
}

// writeSection writes a section title between rules.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        EXPOSURESCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("User:      %s\n", report.UserID))
	sb.WriteString(fmt.Sprintf("Run:       %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n")
}

// writeScore writes the aggregate score and its breakdown.
func (w *SimpleWriter) writeScore(sb *strings.Builder, report *model.ScanReport) {
	w.writeSection(sb, "VULNERABILITY SCORE")

	agg := report.Aggregate
	sb.WriteString(fmt.Sprintf("  SCORE:    %s / 100 (%s)\n", formatScore(agg.Score), agg.Risk))
	sb.WriteString(fmt.Sprintf("  FOUND:    %d of %d ingredients\n", agg.IngredientsFound, agg.TotalIngredients))
	sb.WriteString(fmt.Sprintf("  COVERAGE: %s%% + baseline %s\n", formatScore(agg.Coverage), formatScore(agg.Baseline)))
	sb.WriteString("\n")
}

// writeAssessments writes the category scores, highest first.
func (w *SimpleWriter) writeAssessments(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Assessments) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "THREAT ASSESSMENTS")

	if len(report.Assessments) == 0 {
		sb.WriteString("  No threat categories triggered\n\n")
		return
	}

	for _, a := range report.Assessments {
		name := a.ThreatName
		if name == "" {
			name = displayName(a.ThreatKey)
		}
		sb.WriteString(fmt.Sprintf("  [%3d] %s\n", a.Score, name))
		sb.WriteString(fmt.Sprintf("        %s\n", strings.Join(a.MatchedIngredients, ", ")))
	}
	sb.WriteString("\n")
}

// writeDistribution writes the per-source coverage.
func (w *SimpleWriter) writeDistribution(sb *strings.Builder, report *model.ScanReport) {
	w.writeSection(sb, "SOURCE DISTRIBUTION")

	for _, s := range report.SourceDistribution.Sources {
		sb.WriteString(fmt.Sprintf("  %-14s %3d/%-3d (%s%%)\n", s.Source, s.UserCount, s.SystemCount, formatScore(s.Percentage)))
	}
	sb.WriteString("\n")
}

// writeExposures writes the masked exposures.
func (w *SimpleWriter) writeExposures(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Exposures) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "EXPOSURES")

	if len(report.Exposures) == 0 {
		sb.WriteString("  No exposures found\n\n")
		return
	}

	for _, e := range report.Exposures {
		sb.WriteString(fmt.Sprintf("  * %s (%s, %s)\n", e.IngredientKey, e.Source, formatConfidence(e.Confidence)))
		sb.WriteString(fmt.Sprintf("    Value: %s\n", maskedValue(e)))
		if w.verbose && e.EvidenceURL != "" {
			sb.WriteString(fmt.Sprintf("    Evidence: %s\n", e.EvidenceURL))
		}
		if w.verbose && e.EvidenceSnippet != "" {
			sb.WriteString(fmt.Sprintf("    Snippet: %s\n", e.EvidenceSnippet))
		}
	}
	sb.WriteString("\n")
}

// writeDiagnostics writes the run counters.
func (w *SimpleWriter) writeDiagnostics(sb *strings.Builder, report *model.ScanReport) {
	w.writeSection(sb, "DIAGNOSTICS")

	d := report.Diagnostics
	sb.WriteString(fmt.Sprintf("  Candidates seen:    %d\n", d.CandidatesSeen))
	sb.WriteString(fmt.Sprintf("  Duplicates dropped: %d\n", d.DuplicatesDropped))
	sb.WriteString(fmt.Sprintf("  Unknown dropped:    %d\n", d.UnknownDropped))
	if len(d.BranchesProcessed) > 0 {
		sb.WriteString(fmt.Sprintf("  Branches processed: %s\n", strings.Join(d.BranchesProcessed, ", ")))
	}
	if len(d.BranchesSkipped) > 0 {
		sb.WriteString(fmt.Sprintf("  Branches skipped:   %s\n", strings.Join(d.BranchesSkipped, ", ")))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by exposurescan\n")
	sb.WriteString("https://github.com/nao1215/exposurescan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
