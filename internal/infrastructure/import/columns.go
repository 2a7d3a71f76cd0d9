package fileimport

import (
	"strings"
)

// Canonical column names, in export order
const (
	ColProductID      = "product_id"
	ColName           = "name"
	ColBrand          = "brand"
	ColCategoryNumber = "category_number"
	ColCategoryName   = "category_name"
	ColSize           = "size"
	ColPrice          = "price"
	ColQuantity       = "quantity"
)

// Columns lists every column in export order
var Columns = []string{
	ColProductID, ColName, ColBrand, ColCategoryNumber, ColCategoryName, ColSize, ColPrice, ColQuantity,
}

// RequiredColumns must appear in the header of every import file
var RequiredColumns = []string{ColName, ColCategoryNumber, ColPrice, ColQuantity}

var aliases = map[string]string{
	"id":               ColProductID,
	"code":             ColProductID,
	"sku":              ColProductID,
	"codigo":           ColProductID,
	"product":          ColName,
	"product_name":     ColName,
	"nombre":           ColName,
	"marca":            ColBrand,
	"category":         ColCategoryNumber,
	"category_no":      ColCategoryNumber,
	"categoria":        ColCategoryNumber,
	"rubro":            ColCategoryNumber,
	"nombre_rubro":     ColCategoryName,
	"nombre_categoria": ColCategoryName,
	"talle":            ColSize,
	"talla":            ColSize,
	"precio":           ColPrice,
	"unit_price":       ColPrice,
	"qty":              ColQuantity,
	"stock":            ColQuantity,
	"cantidad":         ColQuantity,
}

// NormalizeHeader maps a header cell to its canonical column name.
// Unknown headers are returned normalized but otherwise unchanged.
func NormalizeHeader(h string) string {
	key := strings.ToLower(trimSpaces(h))
	key = strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(key)
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// headerIndex maps canonical columns to their position. The first
// occurrence of a column wins.
func headerIndex(record []string) (map[string]int, error) {
	index := make(map[string]int, len(record))
	for i, cell := range record {
		name := NormalizeHeader(cell)
		if name == "" {
			continue
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	if len(index) == 0 {
		return nil, ErrMissingHeader
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return index, nil
}
