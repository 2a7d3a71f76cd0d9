package importapp

import (
	"context"
	"fmt"

	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	fileimport "github.com/sicua/backend/internal/infrastructure/import"
	"github.com/sicua/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ExportService flattens the catalog into records in the import column
// layout, so a written export can be fed back through ImportRunService.
type ExportService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewExportService creates a new ExportService
func NewExportService(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ExportProducts returns every product ordered by id with its category name
func (s *ExportService) ExportProducts(ctx context.Context) ([]fileimport.ProductRecord, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "import", "ExportProducts")
	defer span.End()

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.Number] = c.Name
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrRowsCount, len(products))
	s.logger.Debug("Exporting catalog", zap.Int("products", len(products)), zap.Int("categories", len(categories)))
	return fileimport.NewProductRecords(products, names), nil
}
