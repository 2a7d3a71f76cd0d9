package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/bulk"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormImportRunRepository implements ImportRunRepository using GORM
type GormImportRunRepository struct {
	db *gorm.DB
}

// NewGormImportRunRepository creates a new GormImportRunRepository
func NewGormImportRunRepository(db *gorm.DB) *GormImportRunRepository {
	return &GormImportRunRepository{db: db}
}

// FindByID finds an import run by its ID
func (r *GormImportRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportRun, error) {
	var model models.ImportRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAll returns runs newest first unless the filter orders otherwise
func (r *GormImportRunRepository) FindAll(ctx context.Context, filter shared.Filter) ([]bulk.ImportRun, error) {
	var rows []models.ImportRunModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ImportRunModel{}), filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.Order(orderClause(filter, ImportRunSortFields, "started_at", "desc")).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]bulk.ImportRun, 0, len(rows))
	for i := range rows {
		run, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, nil
}

// Count counts runs matching the filter
func (r *GormImportRunRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ImportRunModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a run
func (r *GormImportRunRepository) Save(ctx context.Context, run *bulk.ImportRun) error {
	var model models.ImportRunModel
	if err := model.FromDomain(run); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(&model).Error
}

func (r *GormImportRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if source, ok := filter.Filters["source"]; ok {
		query = query.Where("source = ?", source)
	}
	return query
}

// Ensure GormImportRunRepository implements ImportRunRepository
var _ bulk.ImportRunRepository = (*GormImportRunRepository)(nil)
