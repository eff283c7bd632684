package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/tagcheck/internal/document"
	"github.com/nao1215/tagcheck/internal/inspect"
	"github.com/nao1215/tagcheck/internal/validator"
)

// Status values of a CheckReport.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// CheckReport is the outcome of checking a single document.
// It is filled step by step by the check pipeline.
type CheckReport struct {
	// ID identifies this check in the history database.
	ID string `json:"id"`

	// Source is the path of the checked document, or "<stdin>".
	Source string `json:"source"`

	// Hash is the SHA3-256 of the raw document bytes.
	Hash string `json:"hash,omitempty"`

	// Encoding is the charset the document was decoded from.
	Encoding string `json:"encoding,omitempty"`

	// Size is the raw document size in bytes.
	Size int64 `json:"size"`

	// DateChecked is when the check started.
	DateChecked time.Time `json:"date_checked"`

	// Result is the validator verdict.
	Result validator.Result `json:"result"`

	// Line and Column locate Result.Position; zero when there is no position.
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`

	// Excerpt is the text around Result.Position.
	Excerpt string `json:"excerpt,omitempty"`

	// Stats holds structural statistics when inspection was requested.
	Stats *inspect.Stats `json:"stats,omitempty"`

	// Document is the loaded input. Not serialized.
	Document *document.Document `json:"-"`

	// Error is set when the document could not be checked at all.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewCheckReport creates a report for source with a fresh ID.
func NewCheckReport(source string) *CheckReport {
	return &CheckReport{
		ID:          uuid.NewString(),
		Source:      source,
		DateChecked: time.Now(),
		Result: validator.Result{
			Position: validator.NoPosition,
		},
	}
}

// SetDocument attaches the loaded document and copies its metadata.
func (r *CheckReport) SetDocument(doc *document.Document) {
	r.Document = doc
	r.Hash = doc.Hash
	r.Encoding = doc.Encoding
	r.Size = doc.Size
}

// SetResult records res for doc, resolving the position to a line, column
// and an excerpt of radius bytes on each side.
func (r *CheckReport) SetResult(doc string, res validator.Result, radius int) {
	r.Result = res
	r.Line, r.Column = 0, 0
	r.Excerpt = ""
	if !res.HasPosition() {
		return
	}
	r.Line, r.Column = validator.LineColumn(doc, res.Position)
	r.Excerpt = validator.Excerpt(doc, res.Position, radius)
}

// SetError marks the check as failed.
func (r *CheckReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Failed reports whether the document could not be checked.
func (r *CheckReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// Valid reports whether the document was checked and found balanced.
func (r *CheckReport) Valid() bool {
	return !r.Failed() && r.Result.Valid
}

// Status returns StatusValid, StatusInvalid or StatusFailed.
func (r *CheckReport) Status() string {
	switch {
	case r.Failed():
		return StatusFailed
	case r.Result.Valid:
		return StatusValid
	default:
		return StatusInvalid
	}
}
