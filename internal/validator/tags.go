package validator

import (
	"sort"
	"strings"
)

// defaultKnownTags is the built-in allow-list of tag names.
// "doctype" is listed so that "<!DOCTYPE html>" passes the name check.
var defaultKnownTags = []string{
	"html", "head", "body", "title", "meta", "link", "script", "style",
	"div", "p", "span", "a", "img", "br", "hr", "input", "button",
	"form", "label", "select", "option", "textarea", "table", "tr",
	"td", "th", "thead", "tbody", "tfoot", "ul", "ol", "li", "h1",
	"h2", "h3", "h4", "h5", "h6", "header", "footer", "nav", "section",
	"article", "aside", "main", "figure", "figcaption", "video", "audio",
	"source", "track", "iframe", "embed", "object", "canvas", "svg",
	"details", "summary", "dialog", "datalist", "keygen", "meter",
	"output", "progress", "rp", "rt", "ruby", "time", "var", "wbr",
	"b", "i", "em", "strong", "small", "mark", "del", "ins", "sub",
	"sup", "code", "pre", "blockquote", "q", "cite", "abbr", "address",
	"bdo", "bdi", "dfn", "kbd", "samp", "data",
	"doctype",
}

// defaultVoidTags are elements that never take a closing tag, so an
// opening tag without "/>" does not go on the stack.
var defaultVoidTags = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"keygen", "link", "meta", "param", "source", "track", "wbr",
}

// DefaultKnownTags returns a copy of the built-in known tag list.
func DefaultKnownTags() []string {
	out := make([]string, len(defaultKnownTags))
	copy(out, defaultKnownTags)
	return out
}

// DefaultVoidTags returns a copy of the built-in void element list.
func DefaultVoidTags() []string {
	out := make([]string, len(defaultVoidTags))
	copy(out, defaultVoidTags)
	return out
}

// tagSet is a read-only set of lowercase tag names.
type tagSet map[string]struct{}

// newTagSet normalizes names to lowercase and drops empty entries.
func newTagSet(names []string) tagSet {
	set := make(tagSet, len(names))
	set.add(names)
	return set
}

// add inserts normalized names; only used while a Validator is built.
func (s tagSet) add(names []string) {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		s[name] = struct{}{}
	}
}

// has reports whether name is in the set. name must already be lowercase.
func (s tagSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// sorted returns the names in lexical order.
func (s tagSet) sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
