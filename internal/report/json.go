package report

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/nao1215/tagcheck/internal/model"
)

// JSONWriter collects reports and writes them as one JSON document when
// the summary arrives:
//
//	{"version": "...", "generated_at": "...", "reports": [...], "summary": {...}}
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent       bool
	indentPrefix string
	indentString string

	version string

	mu      sync.Mutex
	reports []*model.CheckReport
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

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
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

// jsonSummary adds derived figures to model.Summary.
type jsonSummary struct {
	*model.Summary

	ErrorRate float64 `json:"error_rate"`
}

// jsonDocument is the top-level output object.
type jsonDocument struct {
	Version     string               `json:"version,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Reports     []*model.CheckReport `json:"reports"`
	Summary     jsonSummary          `json:"summary"`
}

// Write buffers report. Nothing is written until WriteSummary.
func (w *JSONWriter) Write(report *model.CheckReport) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reports = append(w.reports, report)
	return 0, nil
}

// WriteSummary writes the buffered reports and summary.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	w.mu.Lock()
	reports := w.reports
	w.reports = nil
	w.mu.Unlock()

	if reports == nil {
		reports = []*model.CheckReport{}
	}

	return w.writeJSON(jsonDocument{
		Version:     w.version,
		GeneratedAt: time.Now().UTC(),
		Reports:     reports,
		Summary: jsonSummary{
			Summary:   summary,
			ErrorRate: summary.ErrorRate(),
		},
	})
}

// WriteValue encodes any value with the writer's formatting.
// The history command uses it for stored records.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	return w.writeJSON(v)
}

// writeJSON marshals v and writes it with a trailing newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
