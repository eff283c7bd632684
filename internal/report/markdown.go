package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/tagcheck/internal/model"
	"github.com/nao1215/tagcheck/internal/validator"
)

// maxMessageWidth bounds the message column of the documents table.
const maxMessageWidth = 60

// MarkdownWriter collects reports and renders a Markdown document with a
// summary table, an alert, a pie chart of problem kinds and one row per
// document.
type MarkdownWriter struct {
	baseWriter

	mu      sync.Mutex
	reports []*model.CheckReport
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write buffers report. Nothing is written until WriteSummary.
func (w *MarkdownWriter) Write(report *model.CheckReport) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reports = append(w.reports, report)
	return 0, nil
}

// WriteSummary renders the buffered reports and summary.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	w.mu.Lock()
	reports := w.reports
	w.reports = nil
	w.mu.Unlock()

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeAlert(md, summary)
	if summary.Invalid > 0 {
		w.writeKinds(md, summary)
	}
	w.writeDocuments(md, reports)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the totals table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("tagcheck Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", time.Now().UTC().Format(time.RFC3339)},
			{"Documents", strconv.Itoa(summary.Total)},
			{"Valid", strconv.Itoa(summary.Valid)},
			{"Invalid", strconv.Itoa(summary.Invalid)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"Error rate", fmt.Sprintf("%.1f%%", summary.ErrorRate())},
		},
	})
	md.PlainText("")
}

// writeAlert writes a GitHub alert matching the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.Summary) {
	switch {
	case summary.Invalid > 0:
		md.Cautionf("%d of %d checked documents have tag balance problems.",
			summary.Invalid, summary.Checked())
	case summary.Failed > 0:
		md.Warningf("%d documents could not be checked.", summary.Failed)
	case summary.Total == 0:
		md.Note("No documents were checked.")
	default:
		md.Tip("All documents are balanced.")
	}
	md.PlainText("")
}

// writeKinds writes the per-kind table and pie chart.
func (w *MarkdownWriter) writeKinds(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Problems by Kind")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Problem Kinds"),
		piechart.WithShowData(true),
	)

	rows := make([][]string, 0, len(summary.ByKind))
	for _, kind := range validator.AllKinds() {
		n := summary.ByKind[kind]
		if n == 0 {
			continue
		}
		rows = append(rows, []string{kind.Title(), strconv.Itoa(n)})
		chart.LabelAndIntValue(kind.Title(), uint64(n))
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Documents"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDocuments writes one table row per report and an excerpt block for
// each invalid one.
func (w *MarkdownWriter) writeDocuments(md *markdown.Markdown, reports []*model.CheckReport) {
	md.H2("Documents")
	md.PlainText("")

	if len(reports) == 0 {
		md.PlainText("No documents checked.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		message := r.Result.Message
		kind := ""
		if r.Failed() {
			message = r.ErrorMessage
		} else if !r.Result.Valid {
			kind = r.Result.Kind.Title()
		}
		rows = append(rows, []string{
			r.Source,
			statusLabel(r.Status()),
			kind,
			location(r),
			truncateString(message, maxMessageWidth),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Status", "Kind", "Line:Col", "Message"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range reports {
		if r.Status() == model.StatusInvalid && r.Excerpt != "" {
			md.Details(r.Source, fmt.Sprintf("%s\n\n`%s`", r.Result.Message, r.Excerpt))
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [tagcheck](https://github.com/nao1215/tagcheck)*")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
