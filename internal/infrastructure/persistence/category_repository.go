package persistence

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.first(ctx, id.String(), "id = ?", id)
}

// FindByNumber finds a category by its number
func (r *GormCategoryRepository) FindByNumber(ctx context.Context, number int) (*catalog.Category, error) {
	return r.first(ctx, strconv.Itoa(number), "number = ?", number)
}

// FindByName finds a category by name, ignoring case
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*catalog.Category, error) {
	return r.first(ctx, strconv.Quote(name), "name_key = ?", catalog.FoldName(name))
}

func (r *GormCategoryRepository) first(ctx context.Context, key string, query string, args ...any) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, shared.NewCategoryNotFoundError(key)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Order(orderClause(filter, CategorySortFields, "number", "asc")).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Category, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter).Count(&count).Error
	return count, err
}

// MaxNumber returns the highest category number in use, or 0
func (r *GormCategoryRepository) MaxNumber(ctx context.Context) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&highest).Error
	return highest, err
}

// Create inserts a category
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	model := models.CategoryModelFromDomain(category)
	err := r.db.WithContext(ctx).Create(model).Error
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, "name_key"):
		return shared.NewNameConflictError(category.Name)
	case isUniqueViolation(err, ""):
		return shared.NewDuplicateNumberError(category.Number)
	}
	return err
}

// Save updates an existing category with optimistic locking
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	result := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Where("id = ? AND version = ?", category.ID, category.Version-1).
		Updates(map[string]any{
			"name":       category.Name,
			"name_key":   category.NameKey(),
			"version":    category.Version,
			"updated_at": category.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error, "name_key") {
			return shared.NewNameConflictError(category.Name)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.CategoryModel{}).Where("id = ?", category.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.NewCategoryNotFoundError(category.ID.String())
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewCategoryNotFoundError(id.String())
	}
	return nil
}

func (r *GormCategoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name_key LIKE ?", "%"+catalog.FoldName(filter.Search)+"%")
	}
	return query
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
