package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/pkg/pagination"
)

// System defines the public contract for prompt domain operations.
// It satisfies classifier.Prompter through Instructions.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Instructions returns the active override, or the default classifier
	// instructions when none is active.
	Instructions(ctx context.Context) (string, error)
}
