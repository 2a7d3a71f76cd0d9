package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	resolver     *CategoryResolver
	events       *event.Dispatcher
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	resolver *CategoryResolver,
	events *event.Dispatcher,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		resolver:     resolver,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new category. Both the number and the name must be free.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	number := 0
	if req.Number != nil {
		number = *req.Number
	} else {
		next, err := s.resolver.GetNextCategoryNumber(ctx)
		if err != nil {
			return nil, err
		}
		number = next
	}
	if number <= 0 {
		return nil, shared.NewValidationError("number", "category number must be a positive integer")
	}

	unlock := s.resolver.locks.lock(number)
	defer unlock()

	if _, err := s.categoryRepo.FindByNumber(ctx, number); err == nil {
		return nil, shared.NewDuplicateNumberError(number)
	} else if !isCategoryNotFound(err) {
		return nil, err
	}

	category, err := s.resolver.create(ctx, number, req.Name)
	if err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByNumber retrieves a category by its number
func (s *CategoryService) GetByNumber(ctx context.Context, number int) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves categories ordered by number
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 100
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "number",
		OrderDir: "asc",
		Search:   filter.Search,
	}

	categories, err := s.categoryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.categoryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCategoryResponses(categories), total, nil
}

// Update renames a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.resolver.ensureNameFree(ctx, req.Name, category); err != nil {
		return nil, err
	}
	before := category.Version
	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}
	if category.Version != before {
		if err := s.categoryRepo.Save(ctx, category); err != nil {
			return nil, err
		}
		s.events.Dispatch(ctx, category)
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete removes a category that no product references
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.productRepo.CountByCategoryNumber(ctx, category.Number)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return shared.NewValidationError("category",
			fmt.Sprintf("category %d is still assigned to %d products", category.Number, inUse))
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.Int("number", category.Number))
	s.events.Publish(ctx, catalog.NewCategoryDeletedEvent(category))
	return nil
}

// NextNumber suggests the number for a new category
func (s *CategoryService) NextNumber(ctx context.Context) (*NextNumberResponse, error) {
	n, err := s.resolver.GetNextCategoryNumber(ctx)
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{Number: n}, nil
}
