package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	ID             string          `json:"id" binding:"required,min=1,max=64"`
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Brand          string          `json:"brand" binding:"max=100"`
	CategoryNumber *int            `json:"category_number" binding:"omitempty,min=1"`
	Size           string          `json:"size" binding:"max=50"`
	Price          decimal.Decimal `json:"price" binding:"gte=0"`
	Quantity       int             `json:"quantity" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields are left unchanged; ClearCategory detaches the category.
type UpdateProductRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Brand          *string          `json:"brand" binding:"omitempty,max=100"`
	CategoryNumber *int             `json:"category_number" binding:"omitempty,min=1"`
	ClearCategory  bool             `json:"clear_category"`
	Size           *string          `json:"size" binding:"omitempty,max=50"`
	Price          *decimal.Decimal `json:"price" binding:"omitempty,gte=0"`
	Quantity       *int             `json:"quantity" binding:"omitempty,min=0"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	CategoryNumber *int            `json:"category_number"`
	Size           string          `json:"size"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search         string `form:"search"`
	CategoryNumber *int   `form:"category_number" binding:"omitempty,min=1"`
	InStock        *bool  `form:"in_stock"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Brand:          p.Brand,
		CategoryNumber: p.CategoryNumber,
		Size:           p.Size,
		Price:          p.Price,
		Quantity:       p.Quantity,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// CreateCategoryRequest represents a request to create a category.
// When Number is omitted the next free number is used.
type CreateCategoryRequest struct {
	Number *int   `json:"number" binding:"omitempty,min=1"`
	Name   string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateCategoryRequest renames a category. The number cannot change.
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// CategoryListFilter represents filter options for category list
type CategoryListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// NextNumberResponse carries the suggested number for a new category
type NextNumberResponse struct {
	Number int `json:"number"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Number:    c.Number,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}
