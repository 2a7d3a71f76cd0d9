package shared

import (
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so typed errors
// below still match the plain sentinels with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeEmptyCart           = "EMPTY_CART"
	CodeNameConflict        = "NAME_CONFLICT"
	CodeCategoryNumberTaken = "CATEGORY_NUMBER_TAKEN"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeSaleNotFound        = "SALE_NOT_FOUND"
	CodeValidation          = "VALIDATION_ERROR"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrEmptyCart           = NewDomainError(CodeEmptyCart, "Sale must contain at least one item")
	ErrStockConflict       = NewDomainError(CodeConcurrencyConflict, "Stock changed while the sale was being recorded")
)

// ProductNotFoundError is returned when a product identifier does not resolve.
type ProductNotFoundError struct {
	*DomainError
	ProductID string
}

func (e *ProductNotFoundError) Unwrap() error { return e.DomainError }

func NewProductNotFoundError(productID string) *ProductNotFoundError {
	return &ProductNotFoundError{
		DomainError: NewDomainError(CodeProductNotFound, fmt.Sprintf("Product %q not found", productID)),
		ProductID:   productID,
	}
}

// InsufficientStockError carries how many units were available when the
// request was rejected.
type InsufficientStockError struct {
	*DomainError
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Unwrap() error { return e.DomainError }

func NewInsufficientStockError(productID string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		DomainError: NewDomainError(CodeInsufficientStock, fmt.Sprintf(
			"Insufficient stock for product %q: requested %d, available %d", productID, requested, available)),
		ProductID: productID,
		Requested: requested,
		Available: available,
	}
}

// Shortfall is the number of missing units.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// NameConflictError is returned when a category name is already used,
// compared case-insensitively.
type NameConflictError struct {
	*DomainError
	Name string
}

func (e *NameConflictError) Unwrap() error { return e.DomainError }

func NewNameConflictError(name string) *NameConflictError {
	return &NameConflictError{
		DomainError: NewDomainError(CodeNameConflict, fmt.Sprintf("Category name %q is already in use", name)),
		Name:        name,
	}
}

// DuplicateNumberError is returned when a category number is taken by the
// time a create reaches the database.
type DuplicateNumberError struct {
	*DomainError
	Number int
}

func (e *DuplicateNumberError) Unwrap() error { return e.DomainError }

func NewDuplicateNumberError(number int) *DuplicateNumberError {
	return &DuplicateNumberError{
		DomainError: NewDomainError(CodeCategoryNumberTaken, fmt.Sprintf("Category number %d is already in use", number)),
		Number:      number,
	}
}

// CategoryNotFoundError is returned when a category id or number does not resolve.
type CategoryNotFoundError struct {
	*DomainError
	Key string
}

func (e *CategoryNotFoundError) Unwrap() error { return e.DomainError }

func NewCategoryNotFoundError(key string) *CategoryNotFoundError {
	return &CategoryNotFoundError{
		DomainError: NewDomainError(CodeCategoryNotFound, fmt.Sprintf("Category %s not found", key)),
		Key:         key,
	}
}

// SaleNotFoundError is returned when a sale identifier does not resolve.
type SaleNotFoundError struct {
	*DomainError
	SaleID string
}

func (e *SaleNotFoundError) Unwrap() error { return e.DomainError }

func NewSaleNotFoundError(saleID string) *SaleNotFoundError {
	return &SaleNotFoundError{
		DomainError: NewDomainError(CodeSaleNotFound, fmt.Sprintf("Sale %s not found", saleID)),
		SaleID:      saleID,
	}
}

// ValidationError names the offending field and why it was rejected.
type ValidationError struct {
	*DomainError
	Field  string
	Reason string
}

func (e *ValidationError) Unwrap() error { return e.DomainError }

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{
		DomainError: NewDomainError(CodeValidation, fmt.Sprintf("%s: %s", field, reason)),
		Field:       field,
		Reason:      reason,
	}
}
