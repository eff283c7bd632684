package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultMaxValueLength is the longest string value logged unchanged, in bytes.
const DefaultMaxValueLength = 200

// ExcerptHandler wraps an slog.Handler and shortens and escapes string
// attribute values before passing records on.
type ExcerptHandler struct {
	handler slog.Handler
	maxLen  int
}

// NewExcerptHandler creates an ExcerptHandler around handler. Values longer
// than maxLen bytes are truncated; maxLen <= 0 uses DefaultMaxValueLength.
// If handler is nil, slog.Default().Handler() is used.
func NewExcerptHandler(handler slog.Handler, maxLen int) *ExcerptHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxValueLength
	}
	return &ExcerptHandler{handler: handler, maxLen: maxLen}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ExcerptHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *ExcerptHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.rewrite(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the rewritten attributes added.
func (h *ExcerptHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewrite(a)
	}
	return &ExcerptHandler{handler: h.handler.WithAttrs(rewritten), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *ExcerptHandler) WithGroup(name string) slog.Handler {
	return &ExcerptHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// rewrite shortens a string attribute, recursing into groups.
func (h *ExcerptHandler) rewrite(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			rewritten[i] = h.rewrite(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	case slog.KindString:
		return slog.String(a.Key, Shorten(a.Value.String(), h.maxLen))
	default:
		return a
	}
}

// Shorten cuts s to at most maxLen bytes at a rune boundary and escapes
// control characters. A cut string ends in "…(N bytes)" with the full size.
func Shorten(s string, maxLen int) string {
	cut := s
	if len(s) > maxLen {
		end := maxLen
		for end > 0 && !utf8.RuneStart(s[end]) {
			end--
		}
		cut = s[:end]
	}

	escaped := escapeControl(cut)
	if len(cut) < len(s) {
		escaped += fmt.Sprintf("…(%d bytes)", len(s))
	}
	return escaped
}

// escapeControl replaces control characters with Go escape sequences.
func escapeControl(s string) string {
	if !strings.ContainsFunc(s, isControl) {
		return s
	}

	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case isControl(r):
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// NewLogger creates a text logger writing to w.
// verbose selects slog.LevelDebug; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewExcerptHandler(slog.NewTextHandler(w, handlerOptions(verbose)), 0))
}

// NewJSONLogger creates a JSON logger writing to w.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewExcerptHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), 0))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
