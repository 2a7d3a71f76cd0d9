package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/sales"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, shared.NewSaleNotFoundError(id.String())
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIdempotencyKey finds the sale created with key
func (r *GormSaleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("idempotency_key = ?", key).
		First(&model).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, shared.NewSaleNotFoundError("with idempotency key " + key)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds sales matching the filter, items included
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]sales.Sale, error) {
	var rows []models.SaleModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := query.
		Preload("Items", preloadItems).
		Order(orderClause(filter.Filter, SaleSortFields, "sold_at", "desc")).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]sales.Sale, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter sales.SaleFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter).Count(&count).Error
	return count, err
}

// Create inserts the sale and its items in one statement group.
// GORM writes the Items association as part of the create.
func (r *GormSaleRepository) Create(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if err != nil {
		if isUniqueViolation(err, "idempotency_key") {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A sale with this idempotency key already exists")
		}
		return err
	}
	return nil
}

// Save persists the invoicing state with optimistic locking
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	result := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Where("id = ? AND version = ?", sale.ID, sale.Version-1).
		Updates(map[string]any{
			"invoiced":    sale.Invoiced,
			"invoiced_at": sale.InvoicedAt,
			"version":     sale.Version,
			"updated_at":  sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).Where("id = ?", sale.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.NewSaleNotFoundError(sale.ID.String())
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter sales.SaleFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where("sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sold_at <= ?", *filter.To)
	}
	if filter.Invoiced != nil {
		query = query.Where("invoiced = ?", *filter.Invoiced)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(client_name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
