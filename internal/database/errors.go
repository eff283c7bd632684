package database

import "errors"

// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
// and the database file does not exist.
var ErrDatabaseNotFound = errors.New("history database not found")
