package runs

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/emotive/internal/dataset"
	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/pkg/handlers"
)

// Domain errors for run operations.
var (
	ErrNotFound     = errors.New("run not found")
	ErrDuplicate    = errors.New("run already exists")
	ErrInvalidRun   = errors.New("invalid run")
	ErrInvalidID    = errors.New("invalid run id")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
)

// MapHTTPStatus maps run domain and pipeline errors to HTTP status codes.
// Classifier failures are upstream failures; malformed distributions are
// adapter bugs and stay server errors.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidRun),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, handlers.ErrInvalidBody),
		errors.Is(err, dataset.ErrInvalidDataset),
		errors.Is(err, emotions.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, emotions.ErrMalformedDistribution):
		return http.StatusInternalServerError
	case errors.Is(err, emotions.ErrClassification):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
