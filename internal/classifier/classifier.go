// Package classifier defines the text classification contract consumed by the
// emotion pipeline and the backends that fulfil it.
//
// A Classifier maps one text to a ScoreDistribution: an ordered, non-empty set
// of (label, probability) pairs. Implementations must be safe for concurrent
// use; the pipeline shares a single instance across its workers.
package classifier

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// Classifier scores a single text against an emotion vocabulary.
// Backend failures return an error wrapping ErrClassification.
type Classifier interface {
	Classify(ctx context.Context, text string) (ScoreDistribution, error)
}

// Func adapts an ordinary function to the Classifier interface.
type Func func(ctx context.Context, text string) (ScoreDistribution, error)

// Classify calls f(ctx, text).
func (f Func) Classify(ctx context.Context, text string) (ScoreDistribution, error) {
	return f(ctx, text)
}

// Score is one (label, probability) pair of a distribution.
type Score struct {
	Label       string  `json:"label"`
	Probability float64 `json:"score"`
}

// ScoreDistribution is the classifier output for one text. Slice order is the
// backend's natural iteration order and is significant for tie-breaking.
type ScoreDistribution []Score

// Validate reports whether d is non-empty, carries each label at most once, and
// holds only finite probabilities within [0, 1]. Violations wrap
// ErrMalformedDistribution.
func (d ScoreDistribution) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("%w: empty distribution", ErrMalformedDistribution)
	}

	seen := make(map[string]struct{}, len(d))
	for i, s := range d {
		if s.Label == "" {
			return fmt.Errorf("%w: entry %d has empty label", ErrMalformedDistribution, i)
		}
		if _, dup := seen[s.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrMalformedDistribution, s.Label)
		}
		seen[s.Label] = struct{}{}

		p := s.Probability
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			return fmt.Errorf("%w: label %q has probability %v outside [0, 1]", ErrMalformedDistribution, s.Label, p)
		}
	}

	return nil
}

// ValidateVocabulary runs Validate and additionally rejects labels outside
// vocabulary. An empty vocabulary accepts any label.
func (d ScoreDistribution) ValidateVocabulary(vocabulary []string) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(vocabulary) == 0 {
		return nil
	}

	for _, s := range d {
		if !slices.Contains(vocabulary, s.Label) {
			return fmt.Errorf("%w: label %q not in vocabulary", ErrMalformedDistribution, s.Label)
		}
	}
	return nil
}
