package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	events       *event.Dispatcher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	events *event.Dispatcher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Product %q already exists", req.ID))
	}

	if err := s.ensureCategory(ctx, req.CategoryNumber); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.ID, catalog.ProductDetails{
		Name:           req.Name,
		Brand:          req.Brand,
		CategoryNumber: req.CategoryNumber,
		Size:           req.Size,
		Price:          req.Price,
		Quantity:       req.Quantity,
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.String("product_id", product.ID))
	s.events.Dispatch(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by its identifier
func (s *ProductService) GetByID(ctx context.Context, id string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByName retrieves a product by its exact name
func (s *ProductService) GetByName(ctx context.Context, name string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "id"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.CategoryNumber != nil {
		domainFilter.Filters["category_number"] = *filter.CategoryNumber
	}
	if filter.InStock != nil {
		domainFilter.Filters["in_stock"] = *filter.InStock
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// ListAll returns every product ordered by id
func (s *ProductService) ListAll(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update applies the non-nil fields of req to a product
func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := product.Details()
	if req.Name != nil {
		details.Name = *req.Name
	}
	if req.Brand != nil {
		details.Brand = *req.Brand
	}
	if req.ClearCategory {
		details.CategoryNumber = nil
	} else if req.CategoryNumber != nil {
		if err := s.ensureCategory(ctx, req.CategoryNumber); err != nil {
			return nil, err
		}
		details.CategoryNumber = req.CategoryNumber
	}
	if req.Size != nil {
		details.Size = *req.Size
	}
	if req.Price != nil {
		details.Price = *req.Price
	}
	if req.Quantity != nil {
		details.Quantity = *req.Quantity
	}

	if err := product.Update(details); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Products with stock need force.
func (s *ProductService) Delete(ctx context.Context, id string, force bool) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := product.CheckDeletable(force); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id), zap.Bool("forced", force))
	s.events.Publish(ctx, catalog.NewProductDeletedEvent(product, force))
	return nil
}

// ensureCategory checks that a referenced category number exists
func (s *ProductService) ensureCategory(ctx context.Context, number *int) error {
	if number == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByNumber(ctx, *number); err != nil {
		var nf *shared.CategoryNotFoundError
		if errors.As(err, &nf) {
			return shared.NewValidationError("category_number", fmt.Sprintf("category %d does not exist", *number))
		}
		return err
	}
	return nil
}
