// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables and a source distribution chart
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so that new output formats can be added
// without modifying the core data structures.
//
// Writers never see raw identifiers: exposures carry masked values only.
package report
