package document

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

const (
	// StdinPath is the path argument that selects standard input.
	StdinPath = "-"

	// StdinSource is the Source recorded for documents read from stdin.
	StdinSource = "<stdin>"

	// DefaultMaxSize is the default upper bound for a single document.
	DefaultMaxSize = 10 * 1024 * 1024 // 10MB

	// utf8Name is the charset name reported for UTF-8 and plain ASCII input.
	utf8Name = "utf-8"
)

// utf8BOM is stripped from UTF-8 input so offsets start at the first character.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// htmlExtensions are the file extensions Expand picks up inside directories.
var htmlExtensions = []string{".html", ".htm", ".xhtml"}

// Document is a loaded, UTF-8 decoded input.
type Document struct {
	// Source is the path the document was read from, or StdinSource.
	Source string `json:"source"`

	// Content is the decoded text that gets validated.
	Content string `json:"-"`

	// Size is the number of raw bytes read.
	Size int64 `json:"size"`

	// Encoding is the charset name the raw bytes were decoded from.
	Encoding string `json:"encoding"`

	// Hash is the hex encoded SHA3-256 of the raw bytes.
	Hash string `json:"hash"`
}

// Load reads the document at path. A path of "-" reads standard input.
// maxSize <= 0 disables the size limit.
func Load(ctx context.Context, path string, maxSize int64) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path == StdinPath {
		return LoadReader(ctx, StdinSource, os.Stdin, maxSize)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrDocumentTooLarge, path, info.Size(), maxSize)
	}

	f, err := os.Open(path) //nolint:gosec // Paths are chosen by the user
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadReader(ctx, path, f, maxSize)
}

// LoadReader reads a document from r and records it under source.
func LoadReader(ctx context.Context, source string, r io.Reader, maxSize int64) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if maxSize > 0 {
		// One extra byte tells an exact fit apart from an overflow.
		r = io.LimitReader(r, maxSize+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	if maxSize > 0 && int64(len(raw)) > maxSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrDocumentTooLarge, source, maxSize)
	}

	content, name, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", source, err)
	}

	return &Document{
		Source:   source,
		Content:  content,
		Size:     int64(len(raw)),
		Encoding: name,
		Hash:     Hash(raw),
	}, nil
}

// Hash returns the hex encoded SHA3-256 digest of raw.
func Hash(raw []byte) string {
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// decode converts raw to UTF-8 text and reports the source charset.
// Input that is already valid UTF-8 is never transformed unless a byte order
// mark says otherwise.
func decode(raw []byte) (string, string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return string(raw[len(utf8BOM):]), utf8Name, nil
	}

	enc, name, certain := charset.DetermineEncoding(raw, "")
	if name == utf8Name || (!certain && utf8.Valid(raw)) {
		return string(raw), utf8Name, nil
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
	if err != nil {
		return "", "", err
	}
	return string(decoded), name, nil
}

// Expand turns paths into the list of files to check. Files are kept as
// given; directories are walked for HTML files, which are returned sorted.
// ignore, when non-nil, filters paths found while walking directories.
// Duplicates are dropped, keeping the first occurrence.
func Expand(paths []string, ignore func(path string) bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		if p == StdinPath {
			add(p)
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
			}
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		found, err := walkHTML(p, ignore)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

// walkHTML collects the HTML files below root.
func walkHTML(root string, ignore func(string) bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && ignore != nil && ignore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsHTMLFile(path) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	slices.Sort(found)
	return found, nil
}

// IsHTMLFile reports whether path has an HTML file extension.
func IsHTMLFile(path string) bool {
	return slices.Contains(htmlExtensions, strings.ToLower(filepath.Ext(path)))
}
