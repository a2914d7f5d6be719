package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/reports"
)

// ClassifyNode assigns an arg-max label to every item with bounded
// concurrency and stores the ordered assignments.
func ClassifyNode(rt *Runtime, exec *execution) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		items, err := get[[]emotions.Item](s, KeyItems)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrClassifyFailed, err))
		}

		assignments, err := emotions.AssignAll(ctx, items, rt.Classifier, rt.Options)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrClassifyFailed, err))
		}

		rt.Logger.InfoContext(ctx, "classify node complete", "item_count", len(assignments))

		return s.Set(KeyAssignments, assignments), nil
	})
}

// AggregateNode reduces the assignments into both reports.
func AggregateNode(rt *Runtime, exec *execution) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		assignments, err := get[[]emotions.Assignment](s, KeyAssignments)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrAggregateFailed, err))
		}

		declared, _ := get[[]string](s, KeyDeclared)

		unconditional, err := emotions.Unconditional(assignments)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrAggregateFailed, err))
		}

		conditional, err := emotions.Conditional(assignments, declared...)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrAggregateFailed, err))
		}

		rt.Logger.InfoContext(
			ctx, "aggregate node complete",
			"labels", len(unconditional.Rows),
			"categories", len(conditional.Groups),
			"absent", conditional.Absent,
		)

		s = s.Set(KeyUnconditional, unconditional)
		s = s.Set(KeyConditional, conditional)
		return s, nil
	})
}

// PublishNode renders and uploads the report artifacts.
func PublishNode(rt *Runtime, exec *execution) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		if rt.Sink == nil {
			rt.Logger.InfoContext(ctx, "publish skipped, no sink configured")
			return s, nil
		}

		unconditional, err := get[emotions.UnconditionalReport](s, KeyUnconditional)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrPublishFailed, err))
		}
		conditional, err := get[emotions.ConditionalReport](s, KeyConditional)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrPublishFailed, err))
		}

		prefix, _ := get[string](s, KeyPrefix)
		if prefix == "" {
			runID, _ := get[uuid.UUID](s, KeyRunID)
			prefix = ArtifactPrefix(runID)
		}

		artifacts, err := reports.Publish(ctx, rt.Sink, prefix, unconditional, conditional)
		if err != nil {
			return s, exec.fail(fmt.Errorf("%w: %w", ErrPublishFailed, err))
		}

		rt.Logger.InfoContext(ctx, "publish node complete", "prefix", prefix, "artifacts", len(artifacts))

		return s.Set(KeyArtifacts, artifacts), nil
	})
}

func get[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s is %T, want %T", key, val, zero)
	}
	return v, nil
}
