package validator

import "fmt"

// NoPosition is the Result.Position of a valid document.
const NoPosition = -1

// Kind classifies the problem reported by a Result. Its text form is
// stable and used in JSON and the history database.
type Kind int

const (
	// KindNone means no problem was found.
	KindNone Kind = iota

	// KindMalformedChevron is a tag-like fragment without a properly
	// paired angle bracket.
	KindMalformedChevron

	// KindUnknownTag is a tag name missing from the known tag set.
	KindUnknownTag

	// KindUnmatchedClosingTag is a closing tag found while no tag is open.
	KindUnmatchedClosingTag

	// KindOverlap is a closing tag whose name differs from the innermost
	// open tag, e.g. "<a><b></a></b>".
	KindOverlap

	// KindUnclosedTag is an opening tag still open at the end of input.
	KindUnclosedTag
)

// kindNames maps each Kind to its stable text form.
var kindNames = map[Kind]string{
	KindNone:                "none",
	KindMalformedChevron:    "malformed_chevron",
	KindUnknownTag:          "unknown_tag",
	KindUnmatchedClosingTag: "unmatched_closing_tag",
	KindOverlap:             "overlap",
	KindUnclosedTag:         "unclosed_tag",
}

// AllKinds returns every problem kind in report order, KindNone excluded.
func AllKinds() []Kind {
	return []Kind{
		KindMalformedChevron,
		KindUnknownTag,
		KindUnmatchedClosingTag,
		KindOverlap,
		KindUnclosedTag,
	}
}

// String returns the stable text form of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Title returns a short human-readable label for reports.
func (k Kind) Title() string {
	switch k {
	case KindNone:
		return "No error"
	case KindMalformedChevron:
		return "Malformed chevron"
	case KindUnknownTag:
		return "Unknown tag name"
	case KindUnmatchedClosingTag:
		return "Unmatched closing tag"
	case KindOverlap:
		return "Overlap or wrong closure"
	case KindUnclosedTag:
		return "Unclosed tag"
	default:
		return "Unknown problem"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind returns the Kind whose text form is s.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown problem kind %q", s)
}

// Result is the verdict of a single Validate call.
type Result struct {
	// Valid is true when no problem was found.
	Valid bool `json:"valid"`

	// Kind classifies the problem; KindNone when Valid.
	Kind Kind `json:"kind"`

	// Message describes the first problem found.
	Message string `json:"message"`

	// Position is the byte offset of the problem in the document,
	// or NoPosition when Valid.
	Position int `json:"position"`
}

// HasPosition reports whether the result points into the document.
func (r Result) HasPosition() bool {
	return r.Position != NoPosition
}

// Err returns nil for a valid result and an *Error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &Error{Kind: r.Kind, Message: r.Message, Position: r.Position}
}

// validResult is returned for documents without problems.
func validResult() Result {
	return Result{
		Valid:    true,
		Kind:     KindNone,
		Message:  "no error detected",
		Position: NoPosition,
	}
}

// invalid builds a failing Result.
func invalid(kind Kind, pos int, format string, args ...any) Result {
	return Result{
		Valid:    false,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}
