package fileimport

import (
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/sicua/backend/internal/domain/bulk"
)

// XLSXReader reads product rows from the first sheet of a workbook
type XLSXReader struct {
	opts Options
}

// NewXLSXReader creates a reader
func NewXLSXReader(opts Options) *XLSXReader {
	return &XLSXReader{opts: opts}
}

// Parse reads the header and every data row of the first sheet
func (x *XLSXReader) Parse(r io.Reader) ([]bulk.RawRow, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: "xlsx", Err: err}
	}

	sheet := book.GetSheetName(1)
	if sheet == "" {
		return nil, ErrEmptyFile
	}
	records := book.GetRows(sheet)
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	builder, err := newRowBuilder(records[0], x.opts)
	if err != nil {
		return nil, err
	}
	for i, record := range records[1:] {
		if err := builder.add(i+1, record); err != nil {
			return nil, err
		}
	}
	return builder.result()
}
