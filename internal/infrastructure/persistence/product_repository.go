package persistence

import (
	"context"
	"time"

	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, shared.NewProductNotFoundError(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds the first product with exactly this name, lowest id first
func (r *GormProductRepository) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id ASC").
		First(&model).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, shared.NewProductNotFoundError(name)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Order(orderClause(filter, ProductSortFields, "id", "asc")).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error
	return count, err
}

// ListAll returns every product ordered by id
func (r *GormProductRepository) ListAll(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// ExistsByID checks whether a product id is taken
func (r *GormProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCategoryNumber counts products assigned to a category number
func (r *GormProductRepository) CountByCategoryNumber(ctx context.Context, number int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("category_number = ?", number).
		Count(&count).Error
	return count, err
}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err, "") {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Product "+product.ID+" already exists")
		}
		return err
	}
	return nil
}

// Save updates an existing product with optimistic locking.
// The domain bumps Version on every change, so the stored row must still
// carry the previous version.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, product.Version-1).
		Updates(map[string]any{
			"name":            product.Name,
			"brand":           product.Brand,
			"category_number": product.CategoryNumber,
			"size":            product.Size,
			"price":           product.Price,
			"quantity":        product.Quantity,
			"version":         product.Version,
			"updated_at":      product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrConflict(ctx, product.ID)
	}
	return nil
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewProductNotFoundError(id)
	}
	return nil
}

// ApplyStockPlan decrements stock for every line of plan inside one
// transaction. Each UPDATE only matches when the stored quantity still
// equals the quantity observed while planning, so a concurrent sale turns
// into shared.ErrStockConflict instead of overselling. Inside an outer
// transaction this runs as a savepoint.
func (r *GormProductRepository) ApplyStockPlan(ctx context.Context, plan *catalog.StockPlan) error {
	if plan == nil || plan.Len() == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range plan.Lines() {
			result := tx.Model(&models.ProductModel{}).
				Where("id = ? AND quantity = ?", line.ProductID, line.ExpectedQuantity).
				Updates(map[string]any{
					"quantity":   line.Remaining(),
					"version":    gorm.Expr("version + 1"),
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrStockConflict
			}
		}
		return nil
	})
}

func (r *GormProductRepository) missingOrConflict(ctx context.Context, id string) error {
	exists, err := r.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewProductNotFoundError(id)
	}
	return shared.ErrConcurrencyConflict
}

// applyFilter applies search and filter keys, without pagination or ordering
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?) OR id LIKE ?", pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category_number":
			if value == nil {
				query = query.Where("category_number IS NULL")
			} else {
				query = query.Where("category_number = ?", value)
			}
		case "in_stock":
			if inStock, ok := value.(bool); ok {
				if inStock {
					query = query.Where("quantity > 0")
				} else {
					query = query.Where("quantity = 0")
				}
			}
		}
	}

	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
