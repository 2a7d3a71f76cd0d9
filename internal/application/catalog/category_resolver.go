package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sicua/backend/internal/application/event"
	"github.com/sicua/backend/internal/domain/catalog"
	"github.com/sicua/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Resolution is the outcome of CategoryResolver.ResolveOrCreate
type Resolution struct {
	Category *catalog.Category
	// Created is true when the category did not exist and was provisioned
	Created bool
	// NameIgnored is true when a proposed name differed from the stored one.
	// The number is the canonical key; the stored name is kept.
	NameIgnored bool
}

// CategoryResolver finds a category by number or provisions it.
type CategoryResolver struct {
	repo   catalog.CategoryRepository
	events *event.Dispatcher
	locks  *numberLocks
	logger *zap.Logger
}

// NewCategoryResolver creates a new CategoryResolver
func NewCategoryResolver(repo catalog.CategoryRepository, events *event.Dispatcher, logger *zap.Logger) *CategoryResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryResolver{
		repo:   repo,
		events: events,
		locks:  newNumberLocks(),
		logger: logger,
	}
}

// ResolveOrCreate returns the category with number. If it exists the proposed
// name is not applied, even when it differs. Otherwise a category is created
// with proposedName, which must be present and unused.
func (r *CategoryResolver) ResolveOrCreate(ctx context.Context, number int, proposedName *string) (*Resolution, error) {
	if number <= 0 {
		return nil, shared.NewValidationError("category_number", "category number must be a positive integer")
	}

	unlock := r.locks.lock(number)
	defer unlock()

	existing, err := r.repo.FindByNumber(ctx, number)
	if err == nil {
		ignored := proposedName != nil && strings.TrimSpace(*proposedName) != "" && !existing.SameName(*proposedName)
		return &Resolution{Category: existing, NameIgnored: ignored}, nil
	}
	if !isCategoryNotFound(err) {
		return nil, err
	}

	if proposedName == nil || strings.TrimSpace(*proposedName) == "" {
		return nil, shared.NewValidationError("category_name",
			fmt.Sprintf("category %d does not exist and no name was given to create it", number))
	}

	created, err := r.create(ctx, number, *proposedName)
	if err != nil {
		return nil, err
	}
	return &Resolution{Category: created, Created: true}, nil
}

// GetNextCategoryNumber returns one more than the highest number in use, or 1.
// The value is a suggestion; creating with it can still fail if another
// writer takes the number first.
func (r *CategoryResolver) GetNextCategoryNumber(ctx context.Context) (int, error) {
	highest, err := r.repo.MaxNumber(ctx)
	if err != nil {
		return 0, err
	}
	return highest + 1, nil
}

// create inserts a category after checking name uniqueness. The caller must
// hold the lock for number. Number uniqueness is left to the store, which
// reports a lost race as *shared.DuplicateNumberError.
func (r *CategoryResolver) create(ctx context.Context, number int, name string) (*catalog.Category, error) {
	category, err := catalog.NewCategory(number, name)
	if err != nil {
		return nil, err
	}

	if err := r.ensureNameFree(ctx, category.Name, nil); err != nil {
		return nil, err
	}

	if err := r.repo.Create(ctx, category); err != nil {
		var dup *shared.DuplicateNumberError
		if errors.As(err, &dup) {
			r.logger.Info("Category number taken concurrently", zap.Int("number", number))
		}
		return nil, err
	}

	r.logger.Info("Category created", zap.Int("number", category.Number), zap.String("name", category.Name))
	r.events.Dispatch(ctx, category)
	return category, nil
}

// ensureNameFree fails with NameConflict if another category uses name.
// except is the category being renamed, if any.
func (r *CategoryResolver) ensureNameFree(ctx context.Context, name string, except *catalog.Category) error {
	other, err := r.repo.FindByName(ctx, name)
	if err != nil {
		if isCategoryNotFound(err) {
			return nil
		}
		return err
	}
	if except != nil && other.ID == except.ID {
		return nil
	}
	return shared.NewNameConflictError(name)
}

func isCategoryNotFound(err error) bool {
	var nf *shared.CategoryNotFoundError
	return errors.As(err, &nf)
}

// numberLocks serialises work on the same category number within the process.
type numberLocks struct {
	mu    sync.Mutex
	locks map[int]*numberLock
}

type numberLock struct {
	mu   sync.Mutex
	refs int
}

func newNumberLocks() *numberLocks {
	return &numberLocks{locks: make(map[int]*numberLock)}
}

func (l *numberLocks) lock(number int) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[number]
	if !ok {
		entry = &numberLock{}
		l.locks[number] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, number)
		}
		l.mu.Unlock()
	}
}
