package report

import (
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/tagcheck/internal/model"
)

// Writer outputs check results.
//
// Write is called once per checked document and WriteSummary once at the
// end of a run. Streaming writers print as they go; document writers
// (JSON, Markdown) buffer reports and emit everything in WriteSummary.
type Writer interface {
	// Write outputs a single report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CheckReport) (int, error)

	// WriteSummary outputs the summary of the run.
	WriteSummary(summary *model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer, stopping at the first error.
func (m *MultiWriter) Write(report *model.CheckReport) (int, error) {
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

// WriteSummary outputs the summary to every Writer.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
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

// titleCaser capitalizes status words for display.
var titleCaser = cases.Title(language.English)

// statusLabel returns the display form of a report status, e.g. "Invalid".
func statusLabel(status string) string {
	return titleCaser.String(status)
}

// location returns "line:col" for a report with a position, or "".
func location(report *model.CheckReport) string {
	if report.Line == 0 {
		return ""
	}
	return itoa(report.Line) + ":" + itoa(report.Column)
}
