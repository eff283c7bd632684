package validator

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/quick"
)

// TestValidate checks the verdict, kind and position for documents taken
// from the reference test list of the original tool.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		valid   bool
		kind    Kind
		pos     int
		message string
	}{
		{
			name:    "properly nested tags",
			doc:     "<div><p>Texte</p></div>",
			valid:   true,
			kind:    KindNone,
			pos:     NoPosition,
			message: "no error detected",
		},
		{
			name: "missing closing p is reported at the closing div",
			doc:  "<div><p>Texte</div>",
			kind: KindOverlap,
			pos:  13,
		},
		{
			name:  "closing tag differing only in case matches",
			doc:   "<div><p>Text</P></div>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name:    "unclosed div",
			doc:     "<div>Texte",
			kind:    KindUnclosedTag,
			pos:     0,
			message: "opening tag 'div' is unclosed",
		},
		{
			name:    "missing opening chevron at start",
			doc:     "div>Texte</div>",
			kind:    KindMalformedChevron,
			pos:     0,
			message: "chevron omission detected or malformed tag",
		},
		{
			name: "missing closing chevron at end",
			doc:  "<div",
			kind: KindMalformedChevron,
			pos:  0,
		},
		{
			name: "h1 closed by h2",
			doc:  "<h1>Titre</h2>",
			kind: KindOverlap,
			pos:  9,
		},
		{
			name: "unclosed span",
			doc:  "<span>texte",
			kind: KindUnclosedTag,
			pos:  0,
		},
		{
			name:  "void element without slash",
			doc:   "<br><p>test</p>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name:  "doctype declaration",
			doc:   "<!DOCTYPE html><html><body><h1>Titre</h1></body></html>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name:  "self-closing image",
			doc:   "<div><img src='...'/></div>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name:    "unknown tag is rejected even when well nested",
			doc:     "<baliseInconnue>texte</baliseInconnue>",
			kind:    KindUnknownTag,
			pos:     0,
			message: "unknown or misspelled tag name 'baliseinconnue'",
		},
		{
			name:  "script body without chevrons",
			doc:   "<div><script>alert('Hello');</script></div>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name: "span closing p",
			doc:  "<div><p>text</span></p></div>",
			kind: KindOverlap,
			pos:  12,
		},
		{
			name:  "plain text",
			doc:   "Ceci est du texte pur.",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name: "attribute without closing chevron",
			doc:  "<div class=test",
			kind: KindMalformedChevron,
			pos:  0,
		},
		{
			name:    "unknown tag after text",
			doc:     "Hello world <tag>",
			kind:    KindUnknownTag,
			pos:     12,
			message: "unknown or misspelled tag name 'tag'",
		},
		{
			name: "wrong closing order",
			doc:  "<div><p>Hello</div></p>",
			kind: KindOverlap,
			pos:  13,
		},
		{
			name:  "three levels",
			doc:   "<div><span><p>Text</p></span></div>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name: "overlap at innermost level",
			doc:  "<div><span><p>Text</span></div></p>",
			kind: KindOverlap,
			pos:  18,
		},
		{
			name: "overlap after a correct closure",
			doc:  "<div><span><p>Text</p></div></span>",
			kind: KindOverlap,
			pos:  22,
		},
		{
			name:    "extra closing tag",
			doc:     "<div></div></div>",
			kind:    KindUnmatchedClosingTag,
			pos:     11,
			message: "closing tag 'div' has no matching opening tag",
		},
		{
			name: "closing tag alone",
			doc:  "</p>",
			kind: KindUnmatchedClosingTag,
			pos:  0,
		},
		{
			name:  "empty document",
			doc:   "",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name:  "comment is skipped",
			doc:   "<!-- note --><p>x</p>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name:  "upper case tags",
			doc:   "<DIV><P>x</p></Div>",
			valid: true,
			kind:  KindNone,
			pos:   NoPosition,
		},
		{
			name: "arrow in leading text trips the chevron heuristic",
			doc:  "a -> b",
			kind: KindMalformedChevron,
			pos:  0,
		},
		{
			name: "unknown closing tag is checked before the stack",
			doc:  "<div></dvi>",
			kind: KindUnknownTag,
			pos:  5,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := v.Validate(tt.doc)
			if got.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (message: %s)", got.Valid, tt.valid, got.Message)
			}
			if got.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.kind)
			}
			if got.Position != tt.pos {
				t.Errorf("Position = %d, want %d", got.Position, tt.pos)
			}
			if tt.message != "" && got.Message != tt.message {
				t.Errorf("Message = %q, want %q", got.Message, tt.message)
			}
		})
	}
}

// TestValidateOverlapMessage verifies that the overlap message names both
// tags and both positions.
func TestValidateOverlapMessage(t *testing.T) {
	t.Parallel()

	got := New().Validate("<div><p>Hello</div></p>")
	want := "closing tag 'div' at position 13 does not match the most recently opened tag 'p' at position 5 (overlap or incorrect closure)"
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

// TestValidateOrdering verifies that problems are reported in phase order.
func TestValidateOrdering(t *testing.T) {
	t.Parallel()

	t.Run("malformed chevron wins over an earlier unknown tag", func(t *testing.T) {
		t.Parallel()

		doc := "<baliseInconnue>x</baliseInconnue> <p"
		got := New().Validate(doc)
		if got.Kind != KindMalformedChevron {
			t.Fatalf("Kind = %s, want %s", got.Kind, KindMalformedChevron)
		}
		if got.Position != strings.LastIndex(doc, "<p") {
			t.Errorf("Position = %d, want %d", got.Position, strings.LastIndex(doc, "<p"))
		}
	})

	t.Run("first tag problem wins over unclosed tags", func(t *testing.T) {
		t.Parallel()

		got := New().Validate("<div><section><p>x</div>")
		if got.Kind != KindOverlap {
			t.Errorf("Kind = %s, want %s", got.Kind, KindOverlap)
		}
	})

	t.Run("innermost unclosed tag is reported", func(t *testing.T) {
		t.Parallel()

		got := New().Validate("<div><section>x")
		if got.Kind != KindUnclosedTag {
			t.Fatalf("Kind = %s, want %s", got.Kind, KindUnclosedTag)
		}
		if got.Position != 5 {
			t.Errorf("Position = %d, want 5", got.Position)
		}
		if got.Message != "opening tag 'section' is unclosed" {
			t.Errorf("unexpected message %q", got.Message)
		}
	})
}

// TestNewOptions tests construction with caller-supplied tag lists.
func TestNewOptions(t *testing.T) {
	t.Parallel()

	t.Run("known tags replace the default list", func(t *testing.T) {
		t.Parallel()

		v := New(WithKnownTags([]string{"Custom", " Box "}))
		if got := v.Validate("<custom><BOX></box></CUSTOM>"); !got.Valid {
			t.Errorf("expected valid, got %s", got.Message)
		}
		got := v.Validate("<div></div>")
		if got.Kind != KindUnknownTag {
			t.Errorf("Kind = %s, want %s", got.Kind, KindUnknownTag)
		}
	})

	t.Run("extra tags extend the default list", func(t *testing.T) {
		t.Parallel()

		v := New(WithExtraTags([]string{"my-widget"}))
		if got := v.Validate("<div><my-widget></my-widget></div>"); !got.Valid {
			t.Errorf("expected valid, got %s", got.Message)
		}
		if !v.IsKnown("DIV") {
			t.Error("expected default tags to remain known")
		}
	})

	t.Run("empty names are ignored", func(t *testing.T) {
		t.Parallel()

		v := New(WithKnownTags([]string{"", "  ", "p"}))
		if got := v.KnownTags(); len(got) != 1 || got[0] != "p" {
			t.Errorf("KnownTags() = %v, want [p]", got)
		}
	})

	t.Run("void tags can be disabled", func(t *testing.T) {
		t.Parallel()

		v := New(WithVoidTags(nil))
		got := v.Validate("<br><p>test</p>")
		if got.Kind != KindUnclosedTag || got.Position != 0 {
			t.Errorf("got %s at %d, want %s at 0", got.Kind, got.Position, KindUnclosedTag)
		}
	})

	t.Run("default list is sorted and contains common tags", func(t *testing.T) {
		t.Parallel()

		tags := New().KnownTags()
		for i := 1; i < len(tags); i++ {
			if tags[i-1] >= tags[i] {
				t.Fatalf("tags not sorted at %d: %q >= %q", i, tags[i-1], tags[i])
			}
		}
		for _, name := range []string{"html", "div", "p", "br", "doctype"} {
			if !New().IsKnown(name) {
				t.Errorf("expected %q to be known", name)
			}
		}
	})

	t.Run("DefaultKnownTags returns a copy", func(t *testing.T) {
		t.Parallel()

		tags := DefaultKnownTags()
		tags[0] = "mutated"
		if DefaultKnownTags()[0] == "mutated" {
			t.Error("DefaultKnownTags exposed its backing array")
		}
	})
}

// TestValidatePureText verifies that text without chevrons is always valid.
func TestValidatePureText(t *testing.T) {
	t.Parallel()

	v := New()
	property := func(s string) bool {
		s = strings.NewReplacer("<", "", ">", "").Replace(s)
		return v.Validate(s).Valid
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// TestValidateIdempotent verifies that repeated calls return equal results.
func TestValidateIdempotent(t *testing.T) {
	t.Parallel()

	v := New()
	docs := []string{
		"<div><p>Hello</div></p>",
		"<div>Texte",
		"<div><p>Text</p></div>",
	}
	for _, doc := range docs {
		first := v.Validate(doc)
		second := v.Validate(doc)
		if first != second {
			t.Errorf("Validate(%q) changed between calls: %+v then %+v", doc, first, second)
		}
	}
}

// TestValidateConcurrent shares one Validator across goroutines.
func TestValidateConcurrent(t *testing.T) {
	t.Parallel()

	v := New()
	want := v.Validate("<div><span><p>Text</span></div></p>")

	var wg sync.WaitGroup
	errs := make(chan Result, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := v.Validate("<div><span><p>Text</span></div></p>"); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("concurrent result %+v differs from %+v", got, want)
	}
}

// TestResultErr tests the error form of results.
func TestResultErr(t *testing.T) {
	t.Parallel()

	t.Run("valid result has no error", func(t *testing.T) {
		t.Parallel()

		if err := New().Validate("<p>x</p>").Err(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("invalid result matches its sentinel", func(t *testing.T) {
		t.Parallel()

		err := New().Validate("<div>Texte").Err()
		if !errors.Is(err, ErrUnclosedTag) {
			t.Errorf("expected ErrUnclosedTag, got %v", err)
		}
		if errors.Is(err, ErrOverlap) {
			t.Error("unclosed tag error must not match ErrOverlap")
		}
		var vErr *Error
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if vErr.Position != 0 {
			t.Errorf("Position = %d, want 0", vErr.Position)
		}
		if !strings.Contains(err.Error(), "at offset 0") {
			t.Errorf("error text %q should mention the offset", err.Error())
		}
	})
}
