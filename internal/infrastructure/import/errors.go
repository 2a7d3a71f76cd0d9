package fileimport

import (
	"errors"
	"fmt"
	"strings"
)

// Errors that make a whole file unreadable. Row level problems never use
// these; they travel on bulk.RawRow.Problems instead.
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrInvalidEncoding   = errors.New("file is not valid UTF-8")
	ErrMissingHeader     = errors.New("file has no header row")
	ErrNoDataRows        = errors.New("file contains no data rows")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrTooManyRows       = errors.New("file exceeds maximum allowed rows")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// MissingColumnsError lists required columns absent from the header
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Is lets errors.Is(err, ErrMissingHeader) match
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingHeader
}

// IsUnreadable reports whether err means the input could not be read at all
func IsUnreadable(err error) bool {
	for _, target := range []error{
		ErrEmptyFile, ErrInvalidEncoding, ErrMissingHeader, ErrNoDataRows,
		ErrFileTooLarge, ErrTooManyRows, ErrUnsupportedFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// ParseError wraps a syntax error of the underlying reader
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
