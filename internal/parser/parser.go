package parser

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// RootTag is the tag name of the synthetic node returned by Parse.
const RootTag = "document"

// voidElements never contain children, so a start tag does not descend.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// Attr is a single attribute of an element.
type Attr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Node is an element or a text node in the parsed tree.
// Element nodes have Tag set; text nodes have Tag empty and Content set.
type Node struct {
	// Tag is the lowercase element name, or "" for text nodes.
	Tag string `json:"tag,omitempty"`

	// Attrs holds the element attributes in document order.
	Attrs []Attr `json:"attrs,omitempty"`

	// Content is the trimmed, unescaped text of a text node.
	Content string `json:"content,omitempty"`

	// Children are the child nodes in document order.
	Children []*Node `json:"children,omitempty"`

	// Parent is nil for the root.
	Parent *Node `json:"-"`
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// Attr returns the value of the attribute named key, or "".
func (n *Node) Attr(key string) string {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// Walk visits n and its descendants depth-first, children in order.
// The root passed to Walk has depth 0. Returning false from fn skips the
// children of that node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// appendChild links child under n.
func (n *Node) appendChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// ParseString parses s. See Parse.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads HTML-like text and returns the root of its element tree.
// The root has Tag RootTag. Comments and doctype declarations are dropped.
// Only read errors are returned; malformed markup never fails the parse.
func Parse(r io.Reader) (*Node, error) {
	root := &Node{Tag: RootTag}
	current := root

	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return root, nil
			}
			return nil, z.Err()

		case html.StartTagToken:
			node := newElement(z.Token())
			current.appendChild(node)
			if !voidElements[node.Tag] {
				current = node
			}

		case html.SelfClosingTagToken:
			current.appendChild(newElement(z.Token()))

		case html.EndTagToken:
			name, _ := z.TagName()
			if open := openAncestor(current, string(name)); open != nil {
				current = open.Parent
			}

		case html.TextToken:
			text := strings.TrimSpace(string(z.Text()))
			if text != "" {
				current.appendChild(&Node{Content: text})
			}

		case html.CommentToken, html.DoctypeToken:
			// Not part of the element tree.
		}
	}
}

// newElement converts a start or self-closing token into an element node.
func newElement(tok html.Token) *Node {
	node := &Node{Tag: tok.Data}
	if len(tok.Attr) > 0 {
		node.Attrs = make([]Attr, len(tok.Attr))
		for i, a := range tok.Attr {
			node.Attrs[i] = Attr{Key: a.Key, Val: a.Val}
		}
	}
	return node
}

// openAncestor returns the nearest node from n upwards named tag,
// stopping before the root. It returns nil if no such element is open.
func openAncestor(n *Node, tag string) *Node {
	for ; n != nil && n.Parent != nil; n = n.Parent {
		if n.Tag == tag {
			return n
		}
	}
	return nil
}
