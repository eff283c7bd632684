package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatDiagnostic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		diag     Diagnostic
		expected []string
	}{
		{
			name: "error with position",
			diag: Diagnostic{
				Source:  "index.html",
				Line:    3,
				Column:  14,
				Message: "closing tag 'div' does not match 'p'",
			},
			expected: []string{"index.html:3:14:", "error:", "closing tag 'div' does not match 'p'"},
		},
		{
			name: "no position keeps the file prefix",
			diag: Diagnostic{
				Source:  "index.html",
				Message: "unreadable",
			},
			expected: []string{"index.html: error: unreadable"},
		},
		{
			name: "warning with hint",
			diag: Diagnostic{
				Source:   "a.html",
				Line:     1,
				Column:   1,
				Severity: "warning",
				Message:  "empty document",
				Hint:     "nothing to check",
			},
			expected: []string{"a.html:1:1:", "warning:", "hint: nothing to check"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := Plain().FormatDiagnostic(tt.diag)
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestFormatDiagnosticContext(t *testing.T) {
	t.Parallel()

	t.Run("caret under the column", func(t *testing.T) {
		t.Parallel()

		out := Plain().FormatDiagnostic(Diagnostic{
			Source:  "x.html",
			Line:    12,
			Column:  6,
			Message: "m",
			Context: "<div></span>",
		})
		want := "x.html:12:6: error: m\n12 | <div></span>\n   |      ^\n"
		if out != want {
			t.Errorf("got:\n%q\nwant:\n%q", out, want)
		}
	})

	t.Run("long lines are windowed", func(t *testing.T) {
		t.Parallel()

		line := strings.Repeat("a", 200) + "<X>" + strings.Repeat("b", 200)
		out := Plain().FormatDiagnostic(Diagnostic{
			Source:  "min.html",
			Line:    1,
			Column:  201,
			Message: "m",
			Context: line,
		})

		lines := strings.Split(out, "\n")
		src := strings.TrimPrefix(lines[1], "1 | ")
		if len([]rune(src)) != maxContextWidth {
			t.Errorf("expected %d runes, got %d", maxContextWidth, len([]rune(src)))
		}
		caret := strings.Index(lines[2], "^") - len("1 | ")
		if src[caret] != '<' {
			t.Errorf("caret points at %q, want '<'", src[caret])
		}
	})
}

func TestWindow(t *testing.T) {
	t.Parallel()

	line := []rune(strings.Repeat("x", 100))
	tests := []struct {
		name    string
		col     int
		wantCol int
	}{
		{"near start", 3, 3},
		{"middle", 50, 41},
		{"near end", 99, 79},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, col := window(line, tt.col)
			if len(got) != maxContextWidth {
				t.Errorf("window length = %d", len(got))
			}
			if col != tt.wantCol {
				t.Errorf("col = %d, want %d", col, tt.wantCol)
			}
		})
	}
}

func TestSourceLine(t *testing.T) {
	t.Parallel()

	doc := "first\nsecond\r\nthird"
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second\r"},
		{3, "third"},
		{4, ""},
	}
	for _, tt := range tests {
		if got := SourceLine(doc, tt.n); got != tt.want {
			t.Errorf("SourceLine(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMessages(t *testing.T) {
	t.Parallel()

	s := Plain()
	if got := s.FormatSuccess("ok"); got != "✓ ok" {
		t.Errorf("FormatSuccess = %q", got)
	}
	if got := s.FormatWarning("careful"); got != "⚠ careful" {
		t.Errorf("FormatWarning = %q", got)
	}
	if got := s.FormatInfo("note"); got != "ℹ note" {
		t.Errorf("FormatInfo = %q", got)
	}
	if got := s.FormatError("bad"); got != "✗ bad" {
		t.Errorf("FormatError = %q", got)
	}
}

func TestNewStyler(t *testing.T) {
	t.Parallel()

	if NewStyler(&bytes.Buffer{}).Colored() {
		t.Error("buffers are not terminals")
	}
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("IsTerminal(buffer) should be false")
	}
}

func TestSpinnerDisabledOffTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSpinner(&buf, "checking")
	if s.IsEnabled() {
		t.Fatal("spinner should be disabled for a buffer")
	}
	s.Start()
	s.UpdateMessage("still checking")
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}
}
