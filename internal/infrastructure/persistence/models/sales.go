package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/sales"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateModel
	ClientName     *string         `gorm:"type:varchar(200)"`
	ClientID       *string         `gorm:"type:varchar(100);index"`
	IdempotencyKey *string         `gorm:"type:varchar(255);uniqueIndex:idx_sales_idempotency_key"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Invoiced       bool            `gorm:"not null;default:false;index"`
	InvoicedAt     *time.Time
	SoldAt         time.Time       `gorm:"not null;index"`
	Items          []SaleItemModel `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel stores one product snapshot of a sale
type SaleItemModel struct {
	SaleID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LineNo          int             `gorm:"primaryKey"`
	ProductID       string          `gorm:"type:varchar(64);not null;index"`
	Name            string          `gorm:"type:varchar(200);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity        int             `gorm:"not null;check:quantity > 0"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PriceOverridden bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale.
// Items must be preloaded.
func (m *SaleModel) ToDomain() *sales.Sale {
	items := make([]sales.SaleItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = sales.SaleItem{
			LineNo:          it.LineNo,
			ProductID:       it.ProductID,
			Name:            it.Name,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			Subtotal:        it.Subtotal,
			PriceOverridden: it.PriceOverridden,
		}
	}
	return &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		Client:            sales.Client{Name: m.ClientName, ID: m.ClientID},
		IdempotencyKey:    m.IdempotencyKey,
		Items:             items,
		Total:             m.Total,
		Invoiced:          m.Invoiced,
		InvoicedAt:        m.InvoicedAt,
		SoldAt:            m.SoldAt,
	}
}

// FromDomain populates the persistence model from a domain Sale.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ID = s.ID
	m.ClientName = s.Client.Name
	m.ClientID = s.Client.ID
	m.IdempotencyKey = s.IdempotencyKey
	m.Total = s.Total
	m.Invoiced = s.Invoiced
	m.InvoicedAt = s.InvoicedAt
	m.SoldAt = s.SoldAt
	m.Items = make([]SaleItemModel, len(s.Items))
	for i, it := range s.Items {
		m.Items[i] = SaleItemModel{
			SaleID:          s.ID,
			LineNo:          it.LineNo,
			ProductID:       it.ProductID,
			Name:            it.Name,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			Subtotal:        it.Subtotal,
			PriceOverridden: it.PriceOverridden,
		}
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
