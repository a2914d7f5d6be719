package runs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/pkg/pagination"
)

// System defines the public contract for run domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Run], error)

	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	Create(ctx context.Context, cmd CreateCommand) (*Run, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Assignments(
		ctx context.Context,
		runID uuid.UUID,
		page pagination.PageRequest,
		filters AssignmentFilters,
	) (*pagination.PageResult[Assignment], error)

	Report(ctx context.Context, id uuid.UUID) (*Report, error)
}
