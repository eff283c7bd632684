package document

import "errors"

var (
	// ErrDocumentTooLarge is returned when the input exceeds the size limit.
	ErrDocumentTooLarge = errors.New("document exceeds the maximum size")

	// ErrNotFound is returned when the document path does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrIsDirectory is returned by Load when the path names a directory.
	// Use Expand to turn directories into file lists.
	ErrIsDirectory = errors.New("document path is a directory")
)
