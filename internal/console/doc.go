// Package console formats messages for the terminal.
//
// Diagnostics use the IDE-parseable "file:line:col: error: message" form
// followed by the offending source line and a caret under the column.
// Colours are applied with lipgloss only when the destination is a
// terminal, so piped output stays plain text.
package console
