package bulk

import (
	"github.com/shopspring/decimal"
)

// RawRow is one structured row handed to the product importer.
// Pointer fields are optional; required ones are checked by the importer so
// that a missing value becomes a row error rather than a parse failure.
type RawRow struct {
	// Line is the 1-based data row number used in messages. Zero means
	// "use the position in the batch".
	Line           int              `json:"line,omitempty"`
	ProductID      *string          `json:"product_id,omitempty"`
	Name           string           `json:"name"`
	Brand          *string          `json:"brand,omitempty"`
	CategoryNumber *int             `json:"category_number,omitempty"`
	CategoryName   *string          `json:"category_name,omitempty"`
	Size           *string          `json:"size,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	Quantity       *int             `json:"quantity,omitempty"`

	// Problems holds cell-level parse failures found while building the row
	Problems []string `json:"-"`
}

// AddProblem records a cell that could not be read
func (r *RawRow) AddProblem(msg string) {
	r.Problems = append(r.Problems, msg)
}
