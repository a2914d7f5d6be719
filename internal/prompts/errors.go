package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/emotive/pkg/handlers"
)

// Domain errors for prompt operations.
var (
	ErrNotFound      = errors.New("prompt not found")
	ErrDuplicate     = errors.New("prompt name already exists")
	ErrInvalidPrompt = errors.New("invalid prompt")
	ErrInvalidID     = errors.New("invalid prompt id")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPrompt),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
