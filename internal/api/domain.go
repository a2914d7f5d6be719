package api

import (
	"context"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/prompts"
	"github.com/JaimeStill/emotive/internal/runs"
	"github.com/JaimeStill/emotive/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Prompts prompts.System
	Runs    runs.System
}

// NewDomain creates all domain systems from the API runtime. The classifier
// reads its instructions from the prompt system, and prompt changes drop the
// cached distributions that were produced under the old instructions.
func NewDomain(runtime *Runtime, maxUploadSize int64) (*Domain, error) {
	promptsSystem := prompts.New(prompts.Deps{
		DB:         runtime.Database.Connection(),
		Logger:     runtime.Logger,
		Pagination: runtime.Pagination,
		Labels:     runtime.Classifier.Labels,
		OnChange: func(ctx context.Context) {
			if !classifier.UsesPrompts(runtime.Classifier.Backend) {
				return
			}
			if err := runtime.InvalidateClassifications(ctx); err != nil {
				runtime.Logger.Warn("prompt change not applied to cache", "error", err)
			}
		},
	})

	c, err := classifier.New(&runtime.Classifier, classifier.Deps{
		Agent:    runtime.Agent,
		Prompter: promptsSystem,
		Cache:    runtime.Cache,
		Logger:   runtime.Logger,
	})
	if err != nil {
		return nil, err
	}

	wf := &workflow.Runtime{
		Classifier: c,
		Sink:       runtime.Storage,
		Options: emotions.Options{
			Workers: runtime.Classifier.Workers,
			Timeout: runtime.Classifier.TimeoutDuration(),
			Labels:  runtime.Classifier.Labels,
		},
		Logger: runtime.Logger,
	}

	runsSystem := runs.New(runs.Deps{
		DB:            runtime.Database.Connection(),
		Storage:       runtime.Storage,
		Runtime:       wf,
		Backend:       runtime.Classifier.Backend,
		Logger:        runtime.Logger,
		Pagination:    runtime.Pagination,
		MaxUploadSize: maxUploadSize,
	})

	return &Domain{
		Prompts: promptsSystem,
		Runs:    runsSystem,
	}, nil
}
