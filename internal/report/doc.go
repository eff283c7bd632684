// Package report writes check results.
//
// Writers:
//   - SimpleWriter: compiler-style diagnostics for the terminal
//   - JSONWriter: one JSON document for tool integration
//   - MarkdownWriter: a Markdown report with tables and a mermaid chart
//
// All writers implement Writer and can be combined with MultiWriter.
package report
