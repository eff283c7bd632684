package validator

import (
	"errors"
	"fmt"
)

// Sentinel errors for each problem kind. Validate never returns them
// directly; they back Result.Err so callers can use errors.Is.
var (
	// ErrMalformedChevron matches results of KindMalformedChevron.
	ErrMalformedChevron = errors.New("malformed chevron")

	// ErrUnknownTag matches results of KindUnknownTag.
	ErrUnknownTag = errors.New("unknown tag name")

	// ErrUnmatchedClosingTag matches results of KindUnmatchedClosingTag.
	ErrUnmatchedClosingTag = errors.New("unmatched closing tag")

	// ErrOverlap matches results of KindOverlap.
	ErrOverlap = errors.New("overlapping tags")

	// ErrUnclosedTag matches results of KindUnclosedTag.
	ErrUnclosedTag = errors.New("unclosed tag")
)

// kindErrors maps problem kinds to their sentinel errors.
var kindErrors = map[Kind]error{
	KindMalformedChevron:    ErrMalformedChevron,
	KindUnknownTag:          ErrUnknownTag,
	KindUnmatchedClosingTag: ErrUnmatchedClosingTag,
	KindOverlap:             ErrOverlap,
	KindUnclosedTag:         ErrUnclosedTag,
}

// Error is the error form of an invalid Result.
type Error struct {
	Kind     Kind
	Message  string
	Position int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position == NoPosition {
		return e.Message
	}
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Position)
}

// Is reports whether target is the sentinel error of e's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindErrors[e.Kind]
	return ok && sentinel == target
}
