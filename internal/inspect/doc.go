// Package inspect reports on the structure of a document: the distinct tags
// it uses, an indented tree view, the text held by a given tag, external
// link counts and summary statistics.
//
// All functions work on a *parser.Node tree except CountExternalLinks,
// which scans the raw text so that links inside malformed markup the tree
// builder skipped are still counted.
package inspect
