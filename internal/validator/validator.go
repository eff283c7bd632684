package validator

import (
	"regexp"
	"strings"
)

// malformedChevronPattern matches a tag that never gets its ">" before the
// end of the document, or a "name>" fragment before the first "<".
var malformedChevronPattern = regexp.MustCompile(
	`(<[a-zA-Z0-9_:-]+[^>]*$)|(^[^<]*[a-zA-Z0-9_:-]+>)`,
)

// tagPattern matches "<", an optional "!" (doctype and comment openers),
// an optional "/" for closing tags, the tag name and the raw attribute text.
var tagPattern = regexp.MustCompile(`<\s*(!?)(/?)([a-zA-Z0-9_:-]+)([^>]*)>`)

// Submatch index pairs within a tagPattern match.
const (
	groupBang  = 1
	groupSlash = 2
	groupName  = 3
	groupAttrs = 4
)

// commentPrefix starts the name part of "<!-- ... -->".
const commentPrefix = "--"

// frame is an open tag waiting for its closing tag.
type frame struct {
	name string
	pos  int
}

// Validator checks documents against a fixed set of known tag names.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	known tagSet
	void  tagSet
}

// Option configures a Validator.
type Option func(*config)

// config collects options before the tag sets are frozen.
type config struct {
	known []string
	extra []string
	void  []string
}

// WithKnownTags replaces the built-in known tag list.
// Names are compared case-insensitively.
func WithKnownTags(tags []string) Option {
	return func(c *config) {
		c.known = tags
	}
}

// WithExtraTags adds names to the active known tag list.
func WithExtraTags(tags []string) Option {
	return func(c *config) {
		c.extra = append(c.extra, tags...)
	}
}

// WithVoidTags replaces the built-in list of void elements.
func WithVoidTags(tags []string) Option {
	return func(c *config) {
		c.void = tags
	}
}

// New creates a Validator. Without options it uses DefaultKnownTags and
// DefaultVoidTags.
func New(opts ...Option) *Validator {
	c := &config{
		known: defaultKnownTags,
		void:  defaultVoidTags,
	}
	for _, opt := range opts {
		opt(c)
	}

	known := newTagSet(c.known)
	known.add(c.extra)

	return &Validator{
		known: known,
		void:  newTagSet(c.void),
	}
}

// KnownTags returns the configured tag names in lexical order.
func (v *Validator) KnownTags() []string {
	return v.known.sorted()
}

// IsKnown reports whether name is a known tag, ignoring case.
func (v *Validator) IsKnown(name string) bool {
	return v.known.has(strings.ToLower(name))
}

// Validate checks doc and returns the first problem in scan order.
// Malformed chevrons take precedence over everything else; tag problems
// are reported left to right; unclosed tags are reported last.
func (v *Validator) Validate(doc string) Result {
	if loc := malformedChevronPattern.FindStringIndex(doc); loc != nil {
		return invalid(KindMalformedChevron, loc[0], "chevron omission detected or malformed tag")
	}

	var stack []frame

	for _, m := range tagPattern.FindAllStringSubmatchIndex(doc, -1) {
		start := m[0]
		declaration := m[2*groupBang+1] > m[2*groupBang]
		closing := m[2*groupSlash+1] > m[2*groupSlash]
		rawName := doc[m[2*groupName]:m[2*groupName+1]]
		attrs := doc[m[2*groupAttrs]:m[2*groupAttrs+1]]

		if declaration && strings.HasPrefix(rawName, commentPrefix) {
			continue
		}

		name := strings.ToLower(rawName)
		if !v.known.has(name) {
			return invalid(KindUnknownTag, start, "unknown or misspelled tag name '%s'", name)
		}

		if declaration {
			continue
		}

		if !closing {
			if strings.HasSuffix(strings.TrimSpace(attrs), "/") || v.void.has(name) {
				continue
			}
			stack = append(stack, frame{name: name, pos: start})
			continue
		}

		if len(stack) == 0 {
			return invalid(KindUnmatchedClosingTag, start, "closing tag '%s' has no matching opening tag", name)
		}

		top := stack[len(stack)-1]
		if top.name != name {
			return invalid(KindOverlap, start,
				"closing tag '%s' at position %d does not match the most recently opened tag '%s' at position %d (overlap or incorrect closure)",
				name, start, top.name, top.pos)
		}
		stack = stack[:len(stack)-1]
	}

	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return invalid(KindUnclosedTag, top.pos, "opening tag '%s' is unclosed", top.name)
	}

	return validResult()
}
