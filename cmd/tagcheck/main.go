// Package main provides the entry point for the tagcheck CLI.
//
// tagcheck reports tag balance problems in HTML documents: malformed
// chevrons, unknown tag names, stray or overlapping closing tags and
// unclosed tags.
//
// Usage:
//
//	tagcheck check index.html site/
//	cat page.html | tagcheck check -
//
// See --help for all available options.
package main

func main() {
	Execute()
}
