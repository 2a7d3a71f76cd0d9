package fileimport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/bulk"
	"github.com/spf13/cast"
)

// Options bounds what a reader accepts
type Options struct {
	// MaxRows is the largest number of data rows accepted; zero means no limit
	MaxRows int
}

// rowBuilder turns positional records into RawRows using a header index
type rowBuilder struct {
	index map[string]int
	opts  Options
	rows  []bulk.RawRow
}

func newRowBuilder(header []string, opts Options) (*rowBuilder, error) {
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}
	return &rowBuilder{index: index, opts: opts}, nil
}

// add converts record, skipping rows whose cells are all blank. line is the
// 1-based data row number.
func (b *rowBuilder) add(line int, record []string) error {
	if isBlank(record) {
		return nil
	}
	if b.opts.MaxRows > 0 && len(b.rows) >= b.opts.MaxRows {
		return fmt.Errorf("%w (%d)", ErrTooManyRows, b.opts.MaxRows)
	}
	b.rows = append(b.rows, b.build(line, record))
	return nil
}

func (b *rowBuilder) result() ([]bulk.RawRow, error) {
	if len(b.rows) == 0 {
		return nil, ErrNoDataRows
	}
	return b.rows, nil
}

func (b *rowBuilder) cell(record []string, col string) string {
	i, ok := b.index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return trimSpaces(record[i])
}

func (b *rowBuilder) build(line int, record []string) bulk.RawRow {
	row := bulk.RawRow{
		Line:         line,
		ProductID:    optional(b.cell(record, ColProductID)),
		Name:         b.cell(record, ColName),
		Brand:        optional(b.cell(record, ColBrand)),
		CategoryName: optional(b.cell(record, ColCategoryName)),
		Size:         optional(b.cell(record, ColSize)),
	}

	if v := b.cell(record, ColCategoryNumber); v != "" {
		if n, err := toInt(v); err == nil {
			row.CategoryNumber = &n
		} else {
			row.AddProblem(fmt.Sprintf("category_number %q is not a whole number", v))
		}
	}
	if v := b.cell(record, ColQuantity); v != "" {
		if n, err := toInt(v); err == nil {
			row.Quantity = &n
		} else {
			row.AddProblem(fmt.Sprintf("quantity %q is not a whole number", v))
		}
	}
	if v := b.cell(record, ColPrice); v != "" {
		if d, err := toDecimal(v); err == nil {
			row.Price = &d
		} else {
			row.AddProblem(fmt.Sprintf("price %q is not a number", v))
		}
	}
	return row
}

// toInt accepts "7", "007", "+7" and "7.0"
func toInt(s string) (int, error) {
	s = strings.TrimPrefix(s, "+")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(strings.TrimPrefix(s, "-"), "0")
	if s == "" || strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && strings.Trim(s[i+1:], "0") == "" {
		s = s[:i]
	}
	if strings.Contains(s, "_") {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	n, err := cast.ToIntE(s)
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

// toDecimal accepts a dot or a single comma as decimal separator
func toDecimal(s string) (decimal.Decimal, error) {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(strings.TrimPrefix(s, "$"))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(record []string) bool {
	for _, v := range record {
		if trimSpaces(v) != "" {
			return false
		}
	}
	return true
}
