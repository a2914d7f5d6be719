package classifier

import "errors"

var (
	// ErrClassification indicates the backend could not produce a distribution:
	// unreachable, timed out, or returned an undecodable response.
	ErrClassification = errors.New("classification failed")
	// ErrMalformedDistribution indicates a distribution that violates its invariants.
	ErrMalformedDistribution = errors.New("malformed score distribution")
	// ErrUnknownBackend indicates a backend name with no registered constructor.
	ErrUnknownBackend = errors.New("unknown classifier backend")
)
