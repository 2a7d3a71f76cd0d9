package fileimport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sicua/backend/internal/domain/bulk"
)

// RowParser reads import rows from a file body
type RowParser interface {
	Parse(r io.Reader) ([]bulk.RawRow, error)
}

// SourceForFile picks the import source from a file name extension
func SourceForFile(fileName string) (bulk.ImportSource, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return bulk.ImportSourceCSV, nil
	case ".xlsx":
		return bulk.ImportSourceXLSX, nil
	}
	return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, filepath.Ext(fileName))
}

// ParserFor returns the parser for source
func ParserFor(source bulk.ImportSource, opts Options) (RowParser, error) {
	switch source {
	case bulk.ImportSourceCSV:
		return NewCSVParser(WithMaxRows(opts.MaxRows)), nil
	case bulk.ImportSourceXLSX:
		return NewXLSXReader(opts), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
}

// ReadLimited parses r with the parser for source, refusing bodies larger
// than maxBytes when maxBytes is positive.
func ReadLimited(source bulk.ImportSource, r io.Reader, maxBytes int64, opts Options) ([]bulk.RawRow, error) {
	parser, err := ParserFor(source, opts)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 {
		r = &limitedReader{r: r, remaining: maxBytes}
	}
	rows, err := parser.Parse(r)
	if lr, ok := r.(*limitedReader); ok && lr.exceeded {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxBytes)
	}
	return rows, err
}

// limitedReader is io.LimitReader that remembers whether the limit was hit
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// probe one byte to tell "exactly at the limit" from "over it"
		var probe [1]byte
		if n, _ := l.r.Read(probe[:]); n > 0 {
			l.exceeded = true
		}
		return 0, io.EOF
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
