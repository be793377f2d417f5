package report

import (
	"io"
	"strconv"

	"github.com/nao1215/exposurescan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScore(md, report)
	w.writeAssessments(md, report)
	w.writeDistribution(md, report)
	w.writeExposures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteRuns outputs the run listing as a Markdown table.
func (w *MarkdownWriter) WriteRuns(runs []model.ScanRunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Fusion Runs")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No fusion runs stored.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			"`" + r.RunID + "`",
			r.UserID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			formatScore(r.AggregateScore),
			strconv.Itoa(r.ExposureCount),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Run", "User", "Timestamp", "Score", "Exposures"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Exposure Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"User", "`" + report.UserID + "`"},
			{"Run", "`" + report.RunID + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Exposures", strconv.Itoa(len(report.Exposures))},
		},
	})
	md.PlainText("")
}

// writeScore writes the aggregate score with an alert for its risk band.
func (w *MarkdownWriter) writeScore(md *markdown.Markdown, report *model.ScanReport) {
	agg := report.Aggregate

	md.H2("Vulnerability Score")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Score", "Risk", "Ingredients Found", "Coverage", "Baseline"},
		Rows: [][]string{{
			"**" + formatScore(agg.Score) + "**",
			agg.Risk.String(),
			strconv.Itoa(agg.IngredientsFound) + " / " + strconv.Itoa(agg.TotalIngredients),
			formatScore(agg.Coverage) + "%",
			formatScore(agg.Baseline),
		}},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// writeAlert writes an appropriate alert based on the risk level.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	agg := report.Aggregate
	switch agg.Risk {
	case model.RiskCritical:
		md.Cautionf("Critical exposure: %d of %d catalog ingredients are exposed.",
			agg.IngredientsFound, agg.TotalIngredients)
	case model.RiskHigh:
		md.Warningf("High exposure: %d of %d catalog ingredients are exposed.",
			agg.IngredientsFound, agg.TotalIngredients)
	case model.RiskMedium:
		md.Importantf("Moderate exposure: %d catalog ingredient(s) are exposed.",
			agg.IngredientsFound)
	default:
		if agg.IngredientsFound > 0 {
			md.Note("Low exposure. Review the exposures below.")
		} else {
			md.Tip("No exposures detected.")
		}
	}
	md.PlainText("")
}

// writeAssessments writes the category scores table.
func (w *MarkdownWriter) writeAssessments(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Threat Assessments")
	md.PlainText("")

	if len(report.Assessments) == 0 {
		md.PlainText("No threat categories triggered.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Assessments))
	for i, a := range report.Assessments {
		name := a.ThreatName
		if name == "" {
			name = displayName(a.ThreatKey)
		}
		rows[i] = []string{
			name,
			strconv.Itoa(a.Score),
			truncateString(joinCode(a.MatchedIngredients), 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Matched Ingredients"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDistribution writes the source distribution table and pie chart.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, report *model.ScanReport) {
	dist := report.SourceDistribution

	md.H2("Source Distribution")
	md.PlainText("")

	rows := make([][]string, len(dist.Sources))
	for i, s := range dist.Sources {
		rows[i] = []string{
			displayName(string(s.Source)),
			strconv.Itoa(s.UserCount),
			strconv.Itoa(s.SystemCount),
			formatScore(s.Percentage) + "%",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Found", "Catalog", "Coverage"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, dist)
}

// writePieChart writes a mermaid pie chart of triggered ingredients per
// source. Nothing is written when no source has a match.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, dist model.SourceDistribution) {
	total := 0
	for _, s := range dist.Sources {
		total += s.UserCount
	}
	if total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Exposures by Detection Source"),
		piechart.WithShowData(true),
	)

	for _, s := range dist.Sources {
		if s.UserCount > 0 {
			chart.LabelAndIntValue(displayName(string(s.Source)), uint64(s.UserCount))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeExposures writes the masked exposures table.
func (w *MarkdownWriter) writeExposures(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Exposures")
	md.PlainText("")

	if len(report.Exposures) == 0 {
		md.PlainText("No exposures found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Exposures))
	for i, e := range report.Exposures {
		evidence := e.EvidenceURL
		if evidence == "" {
			evidence = "-"
		}
		rows[i] = []string{
			displayName(e.IngredientKey),
			"`" + maskedValue(e) + "`",
			string(e.Source),
			formatConfidence(e.Confidence),
			truncateString(evidence, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Ingredient", "Value", "Source", "Confidence", "Evidence"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, e := range report.Exposures {
		if e.EvidenceSnippet != "" {
			md.Details(displayName(e.IngredientKey), e.EvidenceSnippet)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [exposurescan](https://github.com/nao1215/exposurescan)*")
}

// joinCode renders keys as a comma separated list of code spans.
func joinCode(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += "`" + k + "`"
	}
	return out
}
