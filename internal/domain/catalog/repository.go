package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID returns a *shared.ProductNotFoundError when id does not resolve
	FindByID(ctx context.Context, id string) (*Product, error)

	// FindByName finds the first product with exactly this name
	FindByName(ctx context.Context, name string) (*Product, error)

	// FindAll finds products matching the filter.
	// Supported filter keys: "category_number" (int), "in_stock" (bool)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ListAll returns every product ordered by id
	ListAll(ctx context.Context) ([]Product, error)

	// ExistsByID checks whether a product id is taken
	ExistsByID(ctx context.Context, id string) (bool, error)

	// CountByCategoryNumber counts products assigned to a category number
	CountByCategoryNumber(ctx context.Context, number int) (int64, error)

	// Create inserts a new product; shared.ErrAlreadyExists if the id is taken
	Create(ctx context.Context, product *Product) error

	// Save updates an existing product with optimistic locking on Version
	Save(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id string) error

	// ApplyStockPlan applies every decrement of the plan or none of them.
	// Returns shared.ErrStockConflict when a product changed since it was read.
	ApplyStockPlan(ctx context.Context, plan *StockPlan) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByNumber returns a *shared.CategoryNotFoundError when no category has number
	FindByNumber(ctx context.Context, number int) (*Category, error)

	// FindByName looks up a category by name ignoring case
	FindByName(ctx context.Context, name string) (*Category, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// MaxNumber returns the highest category number in use, or 0
	MaxNumber(ctx context.Context) (int, error)

	// Create inserts a category. Unique index violations come back as
	// *shared.DuplicateNumberError or *shared.NameConflictError.
	Create(ctx context.Context, category *Category) error

	// Save updates an existing category with optimistic locking on Version
	Save(ctx context.Context, category *Category) error

	Delete(ctx context.Context, id uuid.UUID) error
}
