package model

import (
	"errors"
	"math"
	"testing"

	"github.com/nao1215/tagcheck/internal/validator"
)

// newChecked returns a report holding the verdict for doc.
func newChecked(doc string) *CheckReport {
	r := NewCheckReport("doc.html")
	r.SetResult(doc, validator.New().Validate(doc), validator.DefaultExcerptRadius)
	return r
}

// TestNewSummary tests aggregation over reports.
func TestNewSummary(t *testing.T) {
	t.Parallel()

	failed := NewCheckReport("missing.html")
	failed.SetError(errors.New("not found"))

	s := NewSummary([]*CheckReport{
		newChecked("<p></p>"),
		newChecked("<div><p>x</div>"),
		newChecked("<div><span></div>"),
		newChecked("<p>"),
		failed,
		nil,
	})

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Valid != 1 || s.Invalid != 3 || s.Failed != 1 {
		t.Errorf("got valid=%d invalid=%d failed=%d", s.Valid, s.Invalid, s.Failed)
	}
	if s.ByKind[validator.KindOverlap] != 2 {
		t.Errorf("overlap count = %d, want 2", s.ByKind[validator.KindOverlap])
	}
	if s.ByKind[validator.KindUnclosedTag] != 1 {
		t.Errorf("unclosed count = %d, want 1", s.ByKind[validator.KindUnclosedTag])
	}
	if s.Checked() != 4 || s.Correct() != 1 {
		t.Errorf("Checked() = %d, Correct() = %d", s.Checked(), s.Correct())
	}
	if got := s.ErrorRate(); math.Abs(got-75) > 1e-9 {
		t.Errorf("ErrorRate() = %f, want 75", got)
	}
	if !s.HasProblems() {
		t.Error("expected problems")
	}
}

// TestSummaryErrorRate tests the rate edge cases.
func TestSummaryErrorRate(t *testing.T) {
	t.Parallel()

	t.Run("empty summary has zero rate", func(t *testing.T) {
		t.Parallel()

		s := NewSummary(nil)
		if s.ErrorRate() != 0 {
			t.Errorf("ErrorRate() = %f, want 0", s.ErrorRate())
		}
		if s.HasProblems() {
			t.Error("empty summary has no problems")
		}
	})

	t.Run("only failures has zero rate", func(t *testing.T) {
		t.Parallel()

		r := NewCheckReport("x")
		r.SetError(errors.New("boom"))
		s := NewSummary([]*CheckReport{r})
		if s.ErrorRate() != 0 {
			t.Errorf("ErrorRate() = %f, want 0", s.ErrorRate())
		}
		if !s.HasProblems() {
			t.Error("failures are problems")
		}
	})

	t.Run("zero value summary accepts reports", func(t *testing.T) {
		t.Parallel()

		var s Summary
		s.Add(newChecked("<p>"))
		if s.Invalid != 1 || s.ByKind[validator.KindUnclosedTag] != 1 {
			t.Errorf("unexpected summary %+v", s)
		}
	})
}
