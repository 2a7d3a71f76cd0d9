package sales

import (
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/shared"
)

// AggregateTypeSale is the aggregate type for sale events
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCreated  = "SaleCreated"
	EventTypeSaleInvoiced = "SaleInvoiced"
)

// SaleCreatedEvent is published after a sale and its stock changes commit
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID     string          `json:"sale_id"`
	ClientID   *string         `json:"client_id,omitempty"`
	Lines      int             `json:"lines"`
	Units      int             `json:"units"`
	Total      decimal.Decimal `json:"total"`
	ProductIDs []string        `json:"product_ids"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	ids := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		ids = append(ids, it.ProductID)
	}
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID.String()),
		SaleID:          s.ID.String(),
		ClientID:        s.Client.ID,
		Lines:           len(s.Items),
		Units:           s.ItemCount(),
		Total:           s.Total,
		ProductIDs:      ids,
	}
}

// SaleInvoicedEvent is published the first time a sale is invoiced
type SaleInvoicedEvent struct {
	shared.BaseDomainEvent
	SaleID string          `json:"sale_id"`
	Total  decimal.Decimal `json:"total"`
}

// NewSaleInvoicedEvent creates a new SaleInvoicedEvent
func NewSaleInvoicedEvent(s *Sale) *SaleInvoicedEvent {
	return &SaleInvoicedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleInvoiced, AggregateTypeSale, s.ID.String()),
		SaleID:          s.ID.String(),
		Total:           s.Total,
	}
}
