package fileimport

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "product_id,name,brand,category_number,category_name,size,price,quantity\n"

func TestCSVParser_Parse(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		rows, err := NewCSVParser().Parse(strings.NewReader(header + "P1,Blue Shirt,Acme,3,Shirts,M,10.50,4\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)

		row := rows[0]
		assert.Equal(t, 1, row.Line)
		assert.Equal(t, "P1", *row.ProductID)
		assert.Equal(t, "Blue Shirt", row.Name)
		assert.Equal(t, "Acme", *row.Brand)
		assert.Equal(t, 3, *row.CategoryNumber)
		assert.Equal(t, "Shirts", *row.CategoryName)
		assert.Equal(t, "M", *row.Size)
		assert.True(t, row.Price.Equal(decimal.RequireFromString("10.50")))
		assert.Equal(t, 4, *row.Quantity)
		assert.Empty(t, row.Problems)
	})

	t.Run("blank optional cells are nil", func(t *testing.T) {
		rows, err := NewCSVParser().Parse(strings.NewReader(header + ",Socks,,2,,,1.00,0\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].ProductID)
		assert.Nil(t, rows[0].Brand)
		assert.Nil(t, rows[0].CategoryName)
		assert.Nil(t, rows[0].Size)
		assert.Equal(t, 0, *rows[0].Quantity)
	})

	t.Run("BOM and header aliases", func(t *testing.T) {
		input := "\xEF\xBB\xBFSKU;Nombre;Rubro;Precio;Stock\nA-1;Remera;7;1500,50;12\n"
		rows, err := NewCSVParser(WithDelimiter(';')).Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "A-1", *rows[0].ProductID)
		assert.Equal(t, "Remera", rows[0].Name)
		assert.Equal(t, 7, *rows[0].CategoryNumber)
		assert.True(t, rows[0].Price.Equal(decimal.RequireFromString("1500.50")))
		assert.Equal(t, 12, *rows[0].Quantity)
	})

	t.Run("blank rows are skipped but keep numbering", func(t *testing.T) {
		input := header + "P1,A,,1,,,1,1\n , , \nP2,B,,1,,,1,1\n"
		rows, err := NewCSVParser().Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Line)
		assert.Equal(t, 3, rows[1].Line)
	})

	t.Run("bad cells become row problems", func(t *testing.T) {
		rows, err := NewCSVParser().Parse(strings.NewReader(header + "P1,A,,three,,,abc,1.5\n"))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].CategoryNumber)
		assert.Nil(t, rows[0].Price)
		assert.Nil(t, rows[0].Quantity)
		assert.Len(t, rows[0].Problems, 3)
		assert.Contains(t, rows[0].Problems[0], "category_number")
	})
}

func TestCSVParser_Unreadable(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		parser *CSVParser
		want   error
	}{
		{"empty", "", NewCSVParser(), ErrEmptyFile},
		{"not utf-8", header + "P1,Caf\xe9,,1,,,1,1\n", NewCSVParser(), ErrInvalidEncoding},
		{"header only", header, NewCSVParser(), ErrNoDataRows},
		{"missing required column", "name,price\nA,1\n", NewCSVParser(), ErrMissingHeader},
		{"too many rows", header + "P1,A,,1,,,1,1\nP2,B,,1,,,1,1\n", NewCSVParser(WithMaxRows(1)), ErrTooManyRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, IsUnreadable(err))
		})
	}
}

func TestCSVParser_MissingColumnsNamed(t *testing.T) {
	_, err := NewCSVParser().Parse(strings.NewReader("name,price\nA,1\n"))
	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{ColCategoryNumber, ColQuantity}, missing.Columns)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, ColProductID, NormalizeHeader(" Codigo "))
	assert.Equal(t, ColCategoryNumber, NormalizeHeader("Category No."))
	assert.Equal(t, ColCategoryName, NormalizeHeader("Nombre Rubro"))
	assert.Equal(t, ColQuantity, NormalizeHeader("QTY"))
	assert.Equal(t, "color", NormalizeHeader("Color"))
}

func TestToInt(t *testing.T) {
	for input, want := range map[string]int{"7": 7, "007": 7, "+7": 7, "-3": -3, "7.0": 7, "0": 0} {
		got, err := toInt(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	for _, input := range []string{"7.5", "1_000", "seven", "0x10"} {
		_, err := toInt(input)
		assert.Error(t, err, input)
	}
}
