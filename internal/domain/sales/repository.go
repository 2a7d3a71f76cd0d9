package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/shared"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	From     *time.Time
	To       *time.Time
	Invoiced *bool
	ClientID *string
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID returns a *shared.SaleNotFoundError when id does not resolve
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIdempotencyKey returns the sale created with key, or a
	// *shared.SaleNotFoundError
	FindByIdempotencyKey(ctx context.Context, key string) (*Sale, error)

	FindAll(ctx context.Context, filter SaleFilter) ([]Sale, error)

	Count(ctx context.Context, filter SaleFilter) (int64, error)

	// Create inserts the sale with its items
	Create(ctx context.Context, sale *Sale) error

	// Save persists the invoicing state with optimistic locking on Version
	Save(ctx context.Context, sale *Sale) error
}
