package emotions

import (
	"errors"
	"fmt"
)

var (
	// ErrClassification matches every *ClassificationError.
	ErrClassification = errors.New("classification failed")
	// ErrMalformedDistribution matches every *MalformedDistributionError.
	ErrMalformedDistribution = errors.New("malformed score distribution")
	// ErrEmptyInput indicates aggregation over zero assignments.
	ErrEmptyInput = errors.New("no assignments to aggregate")
)

// ClassificationError reports a classifier failure for the item at Position.
type ClassificationError struct {
	Position int
	Err      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Position, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

func (e *ClassificationError) Is(target error) bool {
	return target == ErrClassification
}

// MalformedDistributionError reports a distribution that broke the classifier
// contract for the item at Position. It indicates an adapter bug rather than a
// transient failure.
type MalformedDistributionError struct {
	Position int
	Err      error
}

func (e *MalformedDistributionError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Position, e.Err)
}

func (e *MalformedDistributionError) Unwrap() error { return e.Err }

func (e *MalformedDistributionError) Is(target error) bool {
	return target == ErrMalformedDistribution
}
