package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sicua/backend/internal/domain/shared"
)

const (
	maxProductIDLength   = 64
	maxProductNameLength = 200
	maxBrandLength       = 100
	maxSizeLength        = 50
)

// ProductDetails holds the mutable attributes of a product
type ProductDetails struct {
	Name           string
	Brand          string
	CategoryNumber *int
	Size           string
	Price          decimal.Decimal
	Quantity       int
}

// Product is a sellable catalog item.
// ID is assigned by the store (barcode or SKU) and never changes.
type Product struct {
	shared.BaseAggregateRoot
	ID             string
	Name           string
	Brand          string
	CategoryNumber *int
	Size           string
	Price          decimal.Decimal
	Quantity       int
}

// NewProduct creates a new product
func NewProduct(id string, details ProductDetails) (*Product, error) {
	id = strings.TrimSpace(id)
	if err := ValidateProductID(id); err != nil {
		return nil, err
	}
	details = normalizeDetails(details)
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                id,
	}
	p.apply(details)
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the product attributes. The identifier is kept.
func (p *Product) Update(details ProductDetails) error {
	details = normalizeDetails(details)
	if err := validateDetails(details); err != nil {
		return err
	}
	p.apply(details)
	p.IncrementVersion()
	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// Details returns the current attributes
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		Name:           p.Name,
		Brand:          p.Brand,
		CategoryNumber: p.CategoryNumber,
		Size:           p.Size,
		Price:          p.Price,
		Quantity:       p.Quantity,
	}
}

// CheckDeletable rejects deleting a product that still has units on hand
// unless force is set.
func (p *Product) CheckDeletable(force bool) error {
	if p.Quantity > 0 && !force {
		return shared.NewValidationError("quantity", "product still has stock; deletion requires force")
	}
	return nil
}

// HasCategory returns true if the product is assigned to a category
func (p *Product) HasCategory() bool {
	return p.CategoryNumber != nil
}

func (p *Product) apply(d ProductDetails) {
	p.Name = d.Name
	p.Brand = d.Brand
	p.CategoryNumber = d.CategoryNumber
	p.Size = d.Size
	p.Price = d.Price
	p.Quantity = d.Quantity
}

func normalizeDetails(d ProductDetails) ProductDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Brand = strings.TrimSpace(d.Brand)
	d.Size = strings.TrimSpace(d.Size)
	return d
}

// ValidateProductID checks an already trimmed product id
func ValidateProductID(id string) error {
	if id == "" {
		return shared.NewValidationError("id", "product id cannot be empty")
	}
	if utf8.RuneCountInString(id) > maxProductIDLength {
		return shared.NewValidationError("id", "product id cannot exceed 64 characters")
	}
	for _, r := range id {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewValidationError("id", "product id can only contain letters, numbers, dots, underscores and hyphens")
		}
	}
	return nil
}

// ValidateDetails applies the checks of NewProduct and Update without
// building a product.
func ValidateDetails(details ProductDetails) error {
	return validateDetails(normalizeDetails(details))
}

func validateDetails(d ProductDetails) error {
	if d.Name == "" {
		return shared.NewValidationError("name", "name is required")
	}
	if utf8.RuneCountInString(d.Name) > maxProductNameLength {
		return shared.NewValidationError("name", "name cannot exceed 200 characters")
	}
	if utf8.RuneCountInString(d.Brand) > maxBrandLength {
		return shared.NewValidationError("brand", "brand cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(d.Size) > maxSizeLength {
		return shared.NewValidationError("size", "size cannot exceed 50 characters")
	}
	if d.CategoryNumber != nil && *d.CategoryNumber <= 0 {
		return shared.NewValidationError("category_number", "category number must be positive")
	}
	if d.Price.IsNegative() {
		return shared.NewValidationError("price", "price cannot be negative")
	}
	if shared.ExceedsMoneyScale(d.Price) {
		return shared.NewValidationError("price", "price cannot have more than 4 decimal places")
	}
	if d.Quantity < 0 {
		return shared.NewValidationError("quantity", "quantity cannot be negative")
	}
	return nil
}
