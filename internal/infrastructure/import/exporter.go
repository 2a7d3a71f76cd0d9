package fileimport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/catalog"
)

const exportSheet = "Sheet1"

// ProductRecord is one exported catalog line. Its columns match the import
// schema so an export can be imported back unchanged.
type ProductRecord struct {
	ProductID      string `csv:"product_id"`
	Name           string `csv:"name"`
	Brand          string `csv:"brand"`
	CategoryNumber string `csv:"category_number"`
	CategoryName   string `csv:"category_name"`
	Size           string `csv:"size"`
	Price          string `csv:"price"`
	Quantity       int    `csv:"quantity"`
}

// cells returns the record in Columns order
func (r ProductRecord) cells() []any {
	return []any{r.ProductID, r.Name, r.Brand, r.CategoryNumber, r.CategoryName, r.Size, r.Price, r.Quantity}
}

// NewProductRecords flattens products. categoryNames maps category numbers
// to names; a missing entry leaves the name blank.
func NewProductRecords(products []catalog.Product, categoryNames map[int]string) []ProductRecord {
	out := make([]ProductRecord, len(products))
	for i, p := range products {
		rec := ProductRecord{
			ProductID: p.ID,
			Name:      p.Name,
			Brand:     p.Brand,
			Size:      p.Size,
			Price:     priceText(p.Price),
			Quantity:  p.Quantity,
		}
		if p.CategoryNumber != nil {
			rec.CategoryNumber = strconv.Itoa(*p.CategoryNumber)
			rec.CategoryName = categoryNames[*p.CategoryNumber]
		}
		out[i] = rec
	}
	return out
}

// priceText shows two decimals for ordinary prices and every stored digit
// beyond that, so re-importing never rounds.
func priceText(d decimal.Decimal) string {
	if d.Equal(d.Truncate(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// WriteCSV writes records with a header row. An empty export still
// carries the header.
func WriteCSV(w io.Writer, records []ProductRecord) error {
	if records == nil {
		records = []ProductRecord{}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes records to the first sheet of a new workbook
func WriteXLSX(w io.Writer, records []ProductRecord) error {
	book := excelize.NewFile()
	for col, name := range Columns {
		book.SetCellValue(exportSheet, cellName(col, 1), name)
	}
	for i, rec := range records {
		for col, v := range rec.cells() {
			book.SetCellValue(exportSheet, cellName(col, i+2), v)
		}
	}
	if err := book.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// cellName converts a zero based column and one based row to "B3" form
func cellName(col, row int) string {
	return string(rune('A'+col)) + strconv.Itoa(row)
}
