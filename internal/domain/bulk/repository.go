package bulk

import (
	"context"

	"github.com/google/uuid"
	"github.com/sicua/backend/internal/domain/shared"
)

// ImportRunRepository defines the interface for import history persistence
type ImportRunRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ImportRun, error)

	// FindAll returns runs newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]ImportRun, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a run
	Save(ctx context.Context, run *ImportRun) error
}
