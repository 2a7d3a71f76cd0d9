package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeProduct  = "Product"
	AggregateTypeCategory = "Category"
)

// Event type constants
const (
	EventTypeProductCreated  = "ProductCreated"
	EventTypeProductUpdated  = "ProductUpdated"
	EventTypeProductDeleted  = "ProductDeleted"
	EventTypeStockDecreased  = "StockDecreased"
	EventTypeCategoryCreated = "CategoryCreated"
	EventTypeCategoryRenamed = "CategoryRenamed"
	EventTypeCategoryDeleted = "CategoryDeleted"
)

// ProductCreatedEvent is published when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	CategoryNumber *int            `json:"category_number,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		CategoryNumber:  p.CategoryNumber,
		Price:           p.Price,
		Quantity:        p.Quantity,
	}
}

// ProductUpdatedEvent is published when a product is edited
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	CategoryNumber *int            `json:"category_number,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Name:            p.Name,
		CategoryNumber:  p.CategoryNumber,
		Price:           p.Price,
		Quantity:        p.Quantity,
	}
}

// ProductDeletedEvent is published when a product is removed from the catalog
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Forced    bool   `json:"forced"`
}

// NewProductDeletedEvent creates a new ProductDeletedEvent
func NewProductDeletedEvent(p *Product, forced bool) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Quantity:        p.Quantity,
		Forced:          forced,
	}
}

// StockDecreasedEvent is published for each product line of a recorded sale
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Remaining int    `json:"remaining"`
	SaleID    string `json:"sale_id"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(line StockDecrement, saleID string) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeProduct, line.ProductID),
		ProductID:       line.ProductID,
		Quantity:        line.Quantity,
		Remaining:       line.Remaining(),
		SaleID:          saleID,
	}
}

// CategoryCreatedEvent is published when a category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Number     int       `json:"number"`
	Name       string    `json:"name"`
}

// NewCategoryCreatedEvent creates a new CategoryCreatedEvent
func NewCategoryCreatedEvent(c *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, c.ID.String()),
		CategoryID:      c.ID,
		Number:          c.Number,
		Name:            c.Name,
	}
}

// CategoryRenamedEvent is published when a category name changes
type CategoryRenamedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Number     int       `json:"number"`
	OldName    string    `json:"old_name"`
	NewName    string    `json:"new_name"`
}

// NewCategoryRenamedEvent creates a new CategoryRenamedEvent
func NewCategoryRenamedEvent(c *Category, oldName string) *CategoryRenamedEvent {
	return &CategoryRenamedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryRenamed, AggregateTypeCategory, c.ID.String()),
		CategoryID:      c.ID,
		Number:          c.Number,
		OldName:         oldName,
		NewName:         c.Name,
	}
}

// CategoryDeletedEvent is published when a category is deleted
type CategoryDeletedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Number     int       `json:"number"`
}

// NewCategoryDeletedEvent creates a new CategoryDeletedEvent
func NewCategoryDeletedEvent(c *Category) *CategoryDeletedEvent {
	return &CategoryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryDeleted, AggregateTypeCategory, c.ID.String()),
		CategoryID:      c.ID,
		Number:          c.Number,
	}
}
