package importapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appcatalog "github.com/sicua/backend/internal/application/catalog"
	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/bulk"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"github.com/sicua/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// GeneratedIDPrefix starts the identifier given to rows that carry none
const GeneratedIDPrefix = "P-"

const maxIDAttempts = 3

// ProductImportService folds product rows into the catalog one at a time.
// Row problems are collected in the result; they never stop the batch.
type ProductImportService struct {
	productRepo catalog.ProductRepository
	resolver    *appcatalog.CategoryResolver
	events      *event.Dispatcher
	metrics     *telemetry.StoreMetrics
	logger      *zap.Logger
	newID       func() string
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(
	productRepo catalog.ProductRepository,
	resolver *appcatalog.CategoryResolver,
	events *event.Dispatcher,
	logger *zap.Logger,
) *ProductImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductImportService{
		productRepo: productRepo,
		resolver:    resolver,
		events:      events,
		logger:      logger,
		newID:       generateProductID,
	}
}

// SetMetrics sets the business metrics recorder
func (s *ProductImportService) SetMetrics(m *telemetry.StoreMetrics) {
	s.metrics = m
}

// ImportProducts processes rows in order and always returns a result.
// Rows are numbered from 1 unless RawRow.Line says otherwise.
func (s *ProductImportService) ImportProducts(ctx context.Context, rows []bulk.RawRow) *bulk.ImportResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "ImportProducts")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrRowsCount, len(rows))

	result := bulk.NewImportResult()
	for i := range rows {
		line := rows[i].Line
		if line <= 0 {
			line = i + 1
		}
		if err := ctx.Err(); err != nil {
			result.RecordFailure(line, "", "import cancelled before this row")
			continue
		}
		s.importRow(ctx, line, &rows[i], result)
	}
	result.Finish()

	telemetry.SetAttributes(span,
		"successful_imports", result.SuccessfulImports,
		"rejected", result.Rejected(),
	)
	s.logger.Info("Product import finished",
		zap.Int("total", result.TotalProcessed),
		zap.Int("successful", result.SuccessfulImports),
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

func (s *ProductImportService) importRow(ctx context.Context, line int, row *bulk.RawRow, result *bulk.ImportResult) {
	if len(row.Problems) > 0 {
		result.RecordFailure(line, "", strings.Join(row.Problems, "; "))
		return
	}
	if field, reason := checkRequired(row); field != "" {
		result.RecordFailure(line, field, reason)
		return
	}

	id := ""
	if row.ProductID != nil {
		id = strings.TrimSpace(*row.ProductID)
	}
	// Rows rejected by the product checks must not create a category first
	if id != "" {
		if err := catalog.ValidateProductID(id); err != nil {
			field, msg := describe(err, "product_id")
			result.RecordFailure(line, field, msg)
			return
		}
	}
	if err := catalog.ValidateDetails(rowDetails(row, catalog.ProductDetails{}, *row.CategoryNumber)); err != nil {
		field, msg := describe(err, "")
		result.RecordFailure(line, field, msg)
		return
	}

	resolution, err := s.resolver.ResolveOrCreate(ctx, *row.CategoryNumber, row.CategoryName)
	if err != nil {
		field, msg := describe(err, "category_number")
		result.RecordFailure(line, field, msg)
		return
	}
	if resolution.Created {
		result.CategoryCreated()
	}
	if resolution.NameIgnored {
		result.Warn(line, fmt.Sprintf("category %d already exists as %q; name %q was ignored",
			resolution.Category.Number, resolution.Category.Name, strings.TrimSpace(*row.CategoryName)))
	}

	if id == "" {
		if id, err = s.freshID(ctx); err != nil {
			result.RecordFailure(line, "product_id", err.Error())
			return
		}
	}

	product, created, err := s.upsert(ctx, id, row, resolution.Category.Number)
	if err != nil {
		field, msg := describe(err, "")
		result.RecordFailure(line, field, msg)
		return
	}
	result.RecordSuccess(created)
	s.events.Dispatch(ctx, product)
}

// upsert updates the product with id if it exists and creates it otherwise
func (s *ProductImportService) upsert(ctx context.Context, id string, row *bulk.RawRow, categoryNumber int) (*catalog.Product, bool, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		var nf *shared.ProductNotFoundError
		if !errors.As(err, &nf) {
			return nil, false, err
		}
		product, err := catalog.NewProduct(id, rowDetails(row, catalog.ProductDetails{}, categoryNumber))
		if err != nil {
			return nil, false, err
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			return nil, false, err
		}
		return product, true, nil
	}

	if err := existing.Update(rowDetails(row, existing.Details(), categoryNumber)); err != nil {
		return nil, false, err
	}
	if err := s.productRepo.Save(ctx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// rowDetails lays the row over base. Optional cells left empty keep the
// value from base.
func rowDetails(row *bulk.RawRow, base catalog.ProductDetails, categoryNumber int) catalog.ProductDetails {
	d := base
	d.Name = row.Name
	d.CategoryNumber = &categoryNumber
	d.Price = *row.Price
	d.Quantity = *row.Quantity
	if row.Brand != nil {
		d.Brand = *row.Brand
	}
	if row.Size != nil {
		d.Size = *row.Size
	}
	return d
}

// checkRequired returns the first missing or invalid required field
func checkRequired(row *bulk.RawRow) (field, reason string) {
	switch {
	case strings.TrimSpace(row.Name) == "":
		return "name", "name is required"
	case row.Price == nil:
		return "price", "price is required"
	case row.Price.IsNegative():
		return "price", fmt.Sprintf("price %s is negative", row.Price.String())
	case row.CategoryNumber == nil:
		return "category_number", "category number is required"
	case *row.CategoryNumber <= 0:
		return "category_number", fmt.Sprintf("category number %d is not positive", *row.CategoryNumber)
	case row.Quantity == nil:
		return "quantity", "quantity is required"
	case *row.Quantity < 0:
		return "quantity", fmt.Sprintf("quantity %d is negative", *row.Quantity)
	}
	return "", ""
}

// describe turns an error into a row message
func describe(err error, defaultField string) (field, msg string) {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		return verr.Field, verr.Reason
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return defaultField, de.Message
	}
	return defaultField, "unexpected error: " + err.Error()
}

// freshID draws generated ids until one is not taken
func (s *ProductImportService) freshID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		taken, err := s.productRepo.ExistsByID(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a free product id after %d attempts", maxIDAttempts)
}

func generateProductID() string {
	return GeneratedIDPrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
