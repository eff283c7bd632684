// Package parser builds a lightweight element tree from HTML-like text.
//
// The parser is a tolerant linear scan over golang.org/x/net/html tokens.
// It does not run the HTML5 tree-construction algorithm: there are no
// implied <html>/<head>/<body> elements and no insertion modes. Start tags
// open a child of the current node, end tags climb back to the nearest open
// ancestor with the same name, and stray end tags are ignored.
//
// html.Parse is not used: it rewrites the input into a conforming DOM.
// The tokenizer still unescapes entities and treats <script> and <style>
// bodies as raw text.
//
// # Usage
//
//	root, err := parser.ParseString("<div><p>Hello</p></div>")
//	root.Walk(func(n *parser.Node, depth int) bool {
//	    fmt.Println(depth, n.Tag, n.Content)
//	    return true
//	})
package parser
