package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the printable view of a sale. Layout and typesetting belong to
// the client; this only fixes the content.
type Receipt struct {
	SaleID     string          `json:"sale_id"`
	StoreName  string          `json:"store_name"`
	SoldAt     time.Time       `json:"sold_at"`
	Client     string          `json:"client"`
	ClientID   *string         `json:"client_id,omitempty"`
	Lines      []ReceiptLine   `json:"lines"`
	Units      int             `json:"units"`
	Total      decimal.Decimal `json:"total"`
	Status     SaleStatus      `json:"status"`
	InvoicedAt *time.Time      `json:"invoiced_at,omitempty"`
}

// ReceiptLine is one printed line
type ReceiptLine struct {
	LineNo    int             `json:"line_no"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewReceipt renders the receipt content of s
func NewReceipt(s *Sale, storeName string) *Receipt {
	lines := make([]ReceiptLine, 0, len(s.Items))
	for _, it := range s.Items {
		lines = append(lines, ReceiptLine{
			LineNo:    it.LineNo,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return &Receipt{
		SaleID:     s.ID.String(),
		StoreName:  storeName,
		SoldAt:     s.SoldAt,
		Client:     s.Client.DisplayName(),
		ClientID:   s.Client.ID,
		Lines:      lines,
		Units:      s.ItemCount(),
		Total:      s.Total,
		Status:     s.Status(),
		InvoicedAt: s.InvoicedAt,
	}
}
