package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/reports"
)

// execution records the first node failure so the typed error chain reaches
// the caller intact.
type execution struct {
	mu  sync.Mutex
	err error
}

func (e *execution) fail(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
	return err
}

func (e *execution) failure() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Execute runs one pipeline pass: classify -> aggregate -> publish. Publishing
// only happens after every item is assigned and both reports are built, so a
// failed run never leaves artifacts behind.
func Execute(ctx context.Context, rt *Runtime, in Input) (*Result, error) {
	exec := &execution{}

	graph, err := buildGraph(rt, exec)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyRunID, in.RunID)
	initialState = initialState.Set(KeyItems, in.Items)
	initialState = initialState.Set(KeyDeclared, in.Categories)
	initialState = initialState.Set(KeyPrefix, in.Prefix)

	rt.Logger.InfoContext(ctx, "workflow started", "run_id", in.RunID, "item_count", len(in.Items))

	finalState, err := graph.Execute(ctx, initialState)
	if failure := exec.failure(); failure != nil {
		return nil, failure
	}
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(in, finalState)
}

func buildGraph(rt *Runtime, exec *execution) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("emotive-run")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", ClassifyNode(rt, exec)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("aggregate", AggregateNode(rt, exec)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("publish", PublishNode(rt, exec)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("classify", "aggregate", nil); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("aggregate", "publish", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("classify"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("publish"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractResult(in Input, s state.State) (*Result, error) {
	assignments, err := get[[]emotions.Assignment](s, KeyAssignments)
	if err != nil {
		return nil, err
	}
	unconditional, err := get[emotions.UnconditionalReport](s, KeyUnconditional)
	if err != nil {
		return nil, err
	}
	conditional, err := get[emotions.ConditionalReport](s, KeyConditional)
	if err != nil {
		return nil, err
	}

	artifacts, _ := get[[]reports.Artifact](s, KeyArtifacts)

	return &Result{
		RunID:         in.RunID,
		Assignments:   assignments,
		Unconditional: unconditional,
		Conditional:   conditional,
		Artifacts:     artifacts,
		CompletedAt:   time.Now(),
	}, nil
}
