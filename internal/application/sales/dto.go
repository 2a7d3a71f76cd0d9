package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/sales"
)

// SaleItemRequest is one cart line
type SaleItemRequest struct {
	ProductID string `json:"product_id" binding:"required,max=64"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	// UnitPriceOverride replaces the catalog price for this line only
	UnitPriceOverride *decimal.Decimal `json:"unit_price_override" binding:"omitempty,gte=0"`
}

// CreateSaleRequest represents a request to record a sale
type CreateSaleRequest struct {
	ClientName *string           `json:"client_name" binding:"omitempty,max=200"`
	ClientID   *string           `json:"client_id" binding:"omitempty,max=64"`
	Items      []SaleItemRequest `json:"items" binding:"dive"`
	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// SaleItemResponse is a sale line in API responses
type SaleItemResponse struct {
	LineNo          int             `json:"line_no"`
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	PriceOverridden bool            `json:"price_overridden"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID         uuid.UUID          `json:"id"`
	ClientName *string            `json:"client_name,omitempty"`
	ClientID   *string            `json:"client_id,omitempty"`
	Items      []SaleItemResponse `json:"items"`
	Units      int                `json:"units"`
	Total      decimal.Decimal    `json:"total"`
	Invoiced   bool               `json:"invoiced"`
	Status     string             `json:"status"`
	InvoicedAt *time.Time         `json:"invoiced_at,omitempty"`
	SoldAt     time.Time          `json:"sold_at"`
	Version    int                `json:"version"`
}

// SaleListFilter represents filter options for sale list
type SaleListFilter struct {
	From     *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To       *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Invoiced *bool      `form:"invoiced"`
	ClientID *string    `form:"client_id"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToSaleResponse converts a domain Sale to SaleResponse
func ToSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemResponse{
			LineNo:          it.LineNo,
			ProductID:       it.ProductID,
			Name:            it.Name,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			Subtotal:        it.Subtotal,
			PriceOverridden: it.PriceOverridden,
		}
	}
	return SaleResponse{
		ID:         s.ID,
		ClientName: s.Client.Name,
		ClientID:   s.Client.ID,
		Items:      items,
		Units:      s.ItemCount(),
		Total:      s.Total,
		Invoiced:   s.Invoiced,
		Status:     s.Status().String(),
		InvoicedAt: s.InvoicedAt,
		SoldAt:     s.SoldAt,
		Version:    s.Version,
	}
}

// ToSaleResponses converts a slice of domain Sales
func ToSaleResponses(list []sales.Sale) []SaleResponse {
	out := make([]SaleResponse, len(list))
	for i := range list {
		out[i] = ToSaleResponse(&list[i])
	}
	return out
}
