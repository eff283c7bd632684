// Package database provides SQLite-based storage for tagcheck.
//
// The HistoryDB keeps one row per document check: the verdict columns used
// for listing and filtering, plus the full report as JSON so that a past
// check can be shown again exactly as it was reported.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// binary cross-compiles without a C toolchain. The database is a single
// file below the XDG data directory.
package database
