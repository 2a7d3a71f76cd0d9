package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	ID string `gorm:"type:varchar(64);primaryKey"`
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null;index"`
	Brand          string          `gorm:"type:varchar(100);not null;default:''"`
	CategoryNumber *int            `gorm:"index"`
	Size           string          `gorm:"type:varchar(50);not null;default:''"`
	Price          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity       int             `gorm:"not null;default:0;check:quantity >= 0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		Name:              m.Name,
		Brand:             m.Brand,
		CategoryNumber:    m.CategoryNumber,
		Size:              m.Size,
		Price:             m.Price,
		Quantity:          m.Quantity,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ID = p.ID
	m.Name = p.Name
	m.Brand = p.Brand
	m.CategoryNumber = p.CategoryNumber
	m.Size = p.Size
	m.Price = p.Price
	m.Quantity = p.Quantity
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category domain entity.
// NameKey holds the case-folded name so uniqueness ignores case on every
// database driver.
type CategoryModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateModel
	Number  int    `gorm:"not null;uniqueIndex:idx_categories_number;check:number > 0"`
	Name    string `gorm:"type:varchar(100);not null"`
	NameKey string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name_key"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		Number:            m.Number,
		Name:              m.Name,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ID = c.ID
	m.Number = c.Number
	m.Name = c.Name
	m.NameKey = c.NameKey()
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}
