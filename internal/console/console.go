package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// maxContextWidth is the widest source line shown under a diagnostic.
// Longer lines (minified HTML) are cut to a window around the column.
const maxContextWidth = 80

// Styles for the different message types.
var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#282A36"))

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// Diagnostic describes one problem in a document.
type Diagnostic struct {
	// Source is the document path.
	Source string

	// Line and Column are 1-based; zero means unknown.
	Line   int
	Column int

	// Severity is "error" (default), "warning" or "info".
	Severity string

	// Message is the problem description.
	Message string

	// Context is the text of the line holding the problem.
	Context string

	// Hint is an optional short explanation.
	Hint string
}

// Styler renders messages, with colour when enabled.
type Styler struct {
	color bool
}

// NewStyler returns a Styler that colours output when w is a terminal.
func NewStyler(w io.Writer) Styler {
	return Styler{color: IsTerminal(w)}
}

// Plain returns a Styler that never colours.
func Plain() Styler {
	return Styler{}
}

// Colored reports whether s applies styles.
func (s Styler) Colored() bool {
	return s.color
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// apply renders text with style when colour is enabled.
func (s Styler) apply(style lipgloss.Style, text string) string {
	if s.color {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to one relative to the working
// directory. Other paths are returned unchanged.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}

	wd, err := os.Getwd()
	if err != nil {
		return path
	}

	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}

// FormatDiagnostic renders d as
//
//	file:line:col: error: message
//	  N | source line
//	    |     ^
//	hint: text
func (s Styler) FormatDiagnostic(d Diagnostic) string {
	var out strings.Builder

	typeStyle := errorStyle
	prefix := "error"
	switch d.Severity {
	case "warning":
		typeStyle = warningStyle
		prefix = "warning"
	case "info":
		typeStyle = infoStyle
		prefix = "info"
	}

	if d.Source != "" {
		location := ToRelativePath(d.Source) + ":"
		if d.Line > 0 {
			location = fmt.Sprintf("%s%d:%d:", location, d.Line, d.Column)
		}
		out.WriteString(s.apply(filePathStyle, location))
		out.WriteString(" ")
	}

	out.WriteString(s.apply(typeStyle, prefix+":"))
	out.WriteString(" ")
	out.WriteString(d.Message)
	out.WriteString("\n")

	if d.Context != "" && d.Line > 0 {
		out.WriteString(s.renderContext(d))
	}

	if d.Hint != "" {
		out.WriteString(s.apply(hintStyle, "hint: "))
		out.WriteString(d.Hint)
		out.WriteString("\n")
	}

	return out.String()
}

// renderContext renders the source line with the column highlighted and a
// caret below it.
func (s Styler) renderContext(d Diagnostic) string {
	line, col := window([]rune(flatten(d.Context)), d.Column)

	gutter := fmt.Sprintf("%d", d.Line)
	var out strings.Builder
	out.WriteString(s.apply(lineNumberStyle, gutter))
	out.WriteString(" | ")

	if col >= 1 && col <= len(line) {
		out.WriteString(string(line[:col-1]))
		out.WriteString(s.apply(highlightStyle, string(line[col-1])))
		out.WriteString(string(line[col:]))
	} else {
		out.WriteString(string(line))
	}
	out.WriteString("\n")

	if col >= 1 {
		out.WriteString(strings.Repeat(" ", len(gutter)))
		out.WriteString(" | ")
		out.WriteString(strings.Repeat(" ", col-1))
		out.WriteString(s.apply(errorStyle, "^"))
		out.WriteString("\n")
	}

	return out.String()
}

// window cuts line to at most maxContextWidth runes around col and returns
// the cut line with col adjusted to it.
func window(line []rune, col int) ([]rune, int) {
	if len(line) <= maxContextWidth {
		return line, col
	}

	start := max(0, col-1-maxContextWidth/2)
	end := min(len(line), start+maxContextWidth)
	start = max(0, end-maxContextWidth)
	return line[start:end], col - start
}

// flatten replaces tabs so the caret lines up with the text above it.
func flatten(s string) string {
	s = strings.TrimRight(s, "\r\n")
	return strings.ReplaceAll(s, "\t", " ")
}

// SourceLine returns line number n (1-based) of doc without its newline,
// or "" when doc has fewer lines.
func SourceLine(doc string, n int) string {
	if n < 1 {
		return ""
	}
	for i := 1; ; i++ {
		next, rest, found := strings.Cut(doc, "\n")
		if i == n {
			return next
		}
		if !found {
			return ""
		}
		doc = rest
	}
}

// FormatSuccess formats a success message.
func (s Styler) FormatSuccess(message string) string {
	return s.apply(successStyle, "✓ ") + message
}

// FormatInfo formats an informational message.
func (s Styler) FormatInfo(message string) string {
	return s.apply(infoStyle, "ℹ ") + message
}

// FormatWarning formats a warning message.
func (s Styler) FormatWarning(message string) string {
	return s.apply(warningStyle, "⚠ ") + message
}

// FormatError formats an error message.
func (s Styler) FormatError(message string) string {
	return s.apply(errorStyle, "✗ ") + message
}
