package emotions

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/emotive/internal/classifier"
)

// AssignAll classifies every item and returns one Assignment per item in
// input order. The first classifier failure or malformed distribution aborts
// the batch. When ctx is cancelled the partial results are discarded and the
// context error is returned.
func AssignAll(ctx context.Context, items []Item, c classifier.Classifier, opts Options) ([]Assignment, error) {
	assignments := make([]Assignment, len(items))
	if len(items) == 0 {
		return assignments, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(opts.Workers, len(items)))

	for i := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			a, err := assign(gctx, items[i], c, opts)
			if err != nil {
				return err
			}
			assignments[i] = a
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func assign(ctx context.Context, item Item, c classifier.Classifier, opts Options) (Assignment, error) {
	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	dist, err := c.Classify(callCtx, item.Text)
	if err != nil {
		return Assignment{}, &ClassificationError{Position: item.Position, Err: err}
	}

	if err := dist.ValidateVocabulary(opts.Labels); err != nil {
		return Assignment{}, &MalformedDistributionError{Position: item.Position, Err: err}
	}

	best := ArgMax(dist)
	return Assignment{
		Item:        item,
		Label:       best.Label,
		Probability: best.Probability,
	}, nil
}

// ArgMax returns the highest-probability score. On exact ties the entry that
// appears first in d wins. d must be non-empty.
func ArgMax(d classifier.ScoreDistribution) classifier.Score {
	best := d[0]
	for _, s := range d[1:] {
		if s.Probability > best.Probability {
			best = s
		}
	}
	return best
}

func workerCount(workers, n int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, n))
}
