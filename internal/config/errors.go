package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no file, directory or "-" is given.
	ErrNoTarget = errors.New("no target specified: provide files, directories or - for stdin")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidExcerptRadius is returned when the excerpt radius is negative.
	ErrInvalidExcerptRadius = errors.New("invalid excerpt radius: must be non-negative")

	// ErrInvalidMaxDocumentSize is returned when the size limit is not positive.
	ErrInvalidMaxDocumentSize = errors.New("invalid max document size: must be positive")
)

// Project file errors.
var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidIgnorePattern is returned for a malformed glob in ignore.
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")
)
