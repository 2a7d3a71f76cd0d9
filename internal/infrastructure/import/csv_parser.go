package fileimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sicua/backend/internal/domain/bulk"
)

const encodingCheckSize = 4096

// CSVParser reads product rows from comma separated text
type CSVParser struct {
	delimiter rune
	opts      Options
}

// ParserOption configures a CSVParser
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithMaxRows rejects files with more than n data rows
func WithMaxRows(n int) ParserOption {
	return func(p *CSVParser) {
		p.opts.MaxRows = n
	}
}

// NewCSVParser creates a parser
func NewCSVParser(opts ...ParserOption) *CSVParser {
	p := &CSVParser{delimiter: ','}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the header and every data row of r. A UTF-8 byte order mark
// is skipped; any other encoding is rejected. Blank rows are skipped but
// still count toward row numbers.
func (p *CSVParser) Parse(r io.Reader) ([]bulk.RawRow, error) {
	br := bufio.NewReaderSize(r, encodingCheckSize)
	if err := skipBOM(br); err != nil {
		return nil, err
	}
	if err := checkUTF8(br); err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = p.delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, &ParseError{Format: "csv", Err: err}
	}

	builder, err := newRowBuilder(header, p.opts)
	if err != nil {
		return nil, err
	}

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: "csv", Err: fmt.Errorf("data row %d: %w", line, err)}
		}
		if err := builder.add(line, record); err != nil {
			return nil, err
		}
	}
	return builder.result()
}

func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return nil
}

// checkUTF8 validates the first block of the file. A multi-byte rune cut
// at the block boundary is not an error.
func checkUTF8(br *bufio.Reader) error {
	content, err := br.Peek(encodingCheckSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	if len(content) == encodingCheckSize {
		content = trimPartialRune(content)
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			return b
		}
	}
	return b
}

func trimSpaces(s string) string {
	start, end := 0, len(s)
	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !isWhitespace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !isWhitespace(r) {
			break
		}
		end -= size
	}
	return s[start:end]
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u00a0':
		return true
	}
	return false
}
