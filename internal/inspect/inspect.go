package inspect

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/nao1215/tagcheck/internal/parser"
)

// externalLinkPattern matches anchors whose href is an absolute http(s) URL.
var externalLinkPattern = regexp.MustCompile(`(?i)<a\s+[^>]*href=["'](http[^"']+)["']`)

// Stats summarizes the element tree of a document.
type Stats struct {
	// Elements is the number of element nodes, the root excluded.
	Elements int `json:"elements"`

	// DistinctTags is the number of different tag names.
	DistinctTags int `json:"distinct_tags"`

	// TextNodes is the number of non-empty text nodes.
	TextNodes int `json:"text_nodes"`

	// MaxDepth is the deepest element nesting level; top-level elements are at 1.
	MaxDepth int `json:"max_depth"`

	// ExternalLinks counts anchors pointing to absolute http(s) URLs.
	ExternalLinks int `json:"external_links"`

	// TagCounts maps each tag name to its number of occurrences.
	TagCounts map[string]int `json:"tag_counts,omitempty"`
}

// Collect computes Stats for a document and its parsed tree.
func Collect(doc string, root *parser.Node) Stats {
	stats := Stats{
		TagCounts:     make(map[string]int),
		ExternalLinks: CountExternalLinks(doc),
	}

	root.Walk(func(n *parser.Node, depth int) bool {
		if n == root {
			return true
		}
		if n.IsText() {
			stats.TextNodes++
			return true
		}
		stats.Elements++
		stats.TagCounts[n.Tag]++
		stats.MaxDepth = max(stats.MaxDepth, depth)
		return true
	})

	stats.DistinctTags = len(stats.TagCounts)
	return stats
}

// Tags returns the distinct tag names used in the tree, sorted.
func Tags(root *parser.Node) []string {
	seen := make(map[string]bool)
	root.Walk(func(n *parser.Node, _ int) bool {
		if n != root && !n.IsText() {
			seen[n.Tag] = true
		}
		return true
	})

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TextByTag returns the text children of every element named tag,
// in document order.
func TextByTag(root *parser.Node, tag string) []string {
	tag = strings.ToLower(tag)

	var texts []string
	root.Walk(func(n *parser.Node, _ int) bool {
		if n.Tag != tag {
			return true
		}
		for _, c := range n.Children {
			if c.IsText() {
				texts = append(texts, c.Content)
			}
		}
		return true
	})
	return texts
}

// CountExternalLinks counts <a> tags whose href starts with "http".
func CountExternalLinks(doc string) int {
	return len(externalLinkPattern.FindAllStringIndex(doc, -1))
}

// WriteTree writes an indented outline of the tree, two spaces per level.
// Elements are written as "<tag>", text nodes as their content. The root
// itself is not written.
func WriteTree(w io.Writer, root *parser.Node) error {
	var err error
	root.Walk(func(n *parser.Node, depth int) bool {
		if err != nil {
			return false
		}
		if n == root {
			return true
		}

		indent := strings.Repeat("  ", depth-1)
		if n.IsText() {
			_, err = fmt.Fprintf(w, "%s%s\n", indent, n.Content)
		} else {
			_, err = fmt.Fprintf(w, "%s<%s>\n", indent, n.Tag)
		}
		return err == nil
	})
	return err
}
