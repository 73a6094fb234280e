package writeback

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned when a file that must already exist is missing.
	// It also matches fs.ErrNotExist through errors.Is.
	ErrNotFound error = notFound{}

	// ErrMissingMetadata is returned when a document parses but lacks the
	// namespace this tool reads its metadata from.
	ErrMissingMetadata = errors.New("missing metadata")

	// ErrKeyNotFound is returned when a key is absent from a parsed structure.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidEntry is returned for keys or values that cannot be stored
	// in the target format without corrupting it.
	ErrInvalidEntry = errors.New("invalid entry")
)

type notFound struct{}

func (notFound) Error() string { return "not found" }

func (notFound) Is(target error) bool { return target == fs.ErrNotExist }

// NotFound wraps ErrNotFound with the path that was looked up.
func NotFound(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotFound)
}

// ParseError reports content that does not conform to its file format.
// Line and Column are 1-based; zero means the parser gave no position.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingMetadataError carries the namespace that could not be found.
type MissingMetadataError struct {
	Path      string
	Namespace string
	Message   string
}

func (e *MissingMetadataError) Error() string { return e.Message }

func (e *MissingMetadataError) Is(target error) bool { return target == ErrMissingMetadata }

// KeyError names the key a lookup failed on.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string { return fmt.Sprintf("%q: %v", e.Key, ErrKeyNotFound) }

func (e *KeyError) Is(target error) bool { return target == ErrKeyNotFound }

// Position converts a byte offset into a 1-based line and column.
func Position(content []byte, offset int64) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(content)) {
		offset = int64(len(content))
	}
	line, col = 1, 1
	for _, b := range content[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
