package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/tagcheck/internal/console"
	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/validator"
)

// rulerWidth is the width of the summary separator lines.
const rulerWidth = 70

// SimpleWriter prints one diagnostic per document and a short summary.
// It is the default terminal output.
type SimpleWriter struct {
	baseWriter

	styler console.Styler

	// quiet hides documents without problems.
	quiet bool

	// verbose adds document metadata and statistics.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithStyler sets the styler used for diagnostics.
// The default is console.NewStyler(output).
func WithStyler(s console.Styler) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.styler = s
	}
}

// WithQuiet hides valid documents.
func WithQuiet(quiet bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.quiet = quiet
	}
}

// WithVerbose prints encoding, hash and statistics for each document.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		styler:     console.NewStyler(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints the outcome of one check.
func (w *SimpleWriter) Write(report *model.CheckReport) (int, error) {
	var sb strings.Builder

	switch report.Status() {
	case model.StatusFailed:
		sb.WriteString(w.styler.FormatDiagnostic(console.Diagnostic{
			Source:  report.Source,
			Message: "could not check document: " + report.ErrorMessage,
		}))
	case model.StatusValid:
		if w.quiet {
			return 0, nil
		}
		sb.WriteString(w.styler.FormatSuccess(report.Source + ": " + report.Result.Message))
		sb.WriteString("\n")
	default:
		sb.WriteString(w.styler.FormatDiagnostic(diagnostic(report)))
	}

	if w.verbose && !report.Failed() {
		w.writeDetails(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

// diagnostic converts an invalid report to a console diagnostic. The
// source line is shown when the document is still loaded; reports read
// back from history only carry the excerpt.
func diagnostic(report *model.CheckReport) console.Diagnostic {
	d := console.Diagnostic{
		Source:  report.Source,
		Line:    report.Line,
		Column:  report.Column,
		Message: report.Result.Message,
		Hint:    report.Result.Kind.Title(),
	}

	switch {
	case report.Document != nil:
		d.Context = console.SourceLine(report.Document.Content, report.Line)
	case report.Excerpt != "":
		d.Hint = fmt.Sprintf("%s near %q", d.Hint, report.Excerpt)
	}

	return d
}

// writeDetails writes the verbose metadata lines.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, report *model.CheckReport) {
	if report.Encoding != "" {
		fmt.Fprintf(sb, "    encoding: %s, size: %d bytes\n", report.Encoding, report.Size)
	}
	if report.Hash != "" {
		fmt.Fprintf(sb, "    sha3-256: %s\n", report.Hash)
	}
	if s := report.Stats; s != nil {
		fmt.Fprintf(sb, "    elements: %d, distinct tags: %d, text nodes: %d, max depth: %d, external links: %d\n",
			s.Elements, s.DistinctTags, s.TextNodes, s.MaxDepth, s.ExternalLinks)
	}
}

// WriteSummary prints the totals and, when documents were invalid, the
// breakdown per problem kind.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", rulerWidth))
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Checked %d %s: %d valid, %d invalid, %d failed\n",
		summary.Total, plural(summary.Total, "document", "documents"),
		summary.Valid, summary.Invalid, summary.Failed)
	fmt.Fprintf(&sb, "Error rate: %.1f%%\n", summary.ErrorRate())

	if summary.Invalid > 0 {
		sb.WriteString("\n")
		for _, kind := range validator.AllKinds() {
			if n := summary.ByKind[kind]; n > 0 {
				fmt.Fprintf(&sb, "  %-26s %d\n", kind.Title()+":", n)
			}
		}
	}

	sb.WriteString(strings.Repeat("=", rulerWidth))
	sb.WriteString("\n")

	switch {
	case summary.Total == 0:
		sb.WriteString(w.styler.FormatWarning("no documents found"))
	case !summary.HasProblems():
		sb.WriteString(w.styler.FormatSuccess("all documents are balanced"))
	case summary.Invalid > 0:
		sb.WriteString(w.styler.FormatError(
			fmt.Sprintf("%d %s with tag balance problems",
				summary.Invalid, plural(summary.Invalid, "document", "documents"))))
	default:
		sb.WriteString(w.styler.FormatWarning(
			fmt.Sprintf("%d %s could not be checked",
				summary.Failed, plural(summary.Failed, "document", "documents"))))
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
