package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/shared"
	"golang.org/x/text/cases"
)

const maxCategoryNameLength = 100

// Category groups products under a user-facing number.
// Number is the stable key and is never reassigned; only the name can change.
type Category struct {
	shared.BaseAggregateRoot
	ID     uuid.UUID
	Number int
	Name   string
}

// NewCategory creates a new category
func NewCategory(number int, name string) (*Category, error) {
	if err := validateCategoryNumber(number); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	c := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                uuid.New(),
		Number:            number,
		Name:              name,
	}
	c.AddDomainEvent(NewCategoryCreatedEvent(c))
	return c, nil
}

// Rename changes the display name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if name == c.Name {
		return nil
	}
	old := c.Name
	c.Name = name
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryRenamedEvent(c, old))
	return nil
}

// NameKey returns the case-folded name used for uniqueness checks
func (c *Category) NameKey() string {
	return FoldName(c.Name)
}

// SameName reports whether name matches the category name ignoring case
func (c *Category) SameName(name string) bool {
	return c.NameKey() == FoldName(name)
}

// FoldName normalizes a category name for case-insensitive comparison
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func validateCategoryNumber(number int) error {
	if number <= 0 {
		return shared.NewValidationError("category_number", "category number must be a positive integer")
	}
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewValidationError("category_name", "category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return shared.NewValidationError("category_name", "category name cannot exceed 100 characters")
	}
	return nil
}
