// Package prompts implements the prompt override domain. A prompt replaces
// the default instructions given to the LLM-backed classifiers; at most one
// prompt is active at a time.
package prompts

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Prompt represents a named instruction override.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string  `json:"name" validate:"required,max=128"`
	Instructions string  `json:"instructions" validate:"required,max=16384"`
	Description  *string `json:"description" validate:"omitempty,max=1024"`
}

// Validate checks the command's field constraints. Failures wrap ErrInvalidPrompt.
func (c CreateCommand) Validate() error {
	return validateStruct(c)
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand struct {
	Name         string  `json:"name" validate:"required,max=128"`
	Instructions string  `json:"instructions" validate:"required,max=16384"`
	Description  *string `json:"description" validate:"omitempty,max=1024"`
}

// Validate checks the command's field constraints. Failures wrap ErrInvalidPrompt.
func (c UpdateCommand) Validate() error {
	return validateStruct(c)
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPrompt, err)
	}
	return nil
}
