package api

import (
	"context"
	"fmt"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/internal/config"
	"github.com/JaimeStill/emotive/internal/infrastructure"
	"github.com/JaimeStill/emotive/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent      gaconfig.AgentConfig
	Classifier classifier.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Cache:     infra.Cache,
		},
		Agent:      cfg.Agent,
		Classifier: cfg.Classifier,
		Pagination: cfg.API.Pagination,
	}
}

// InvalidateClassifications drops the cached distributions of the configured
// backend. A nil cache makes it a no-op.
func (r *Runtime) InvalidateClassifications(ctx context.Context) error {
	if r.Cache == nil {
		return nil
	}

	ns := classifier.Namespace(&r.Classifier, r.Agent)
	if err := r.Cache.DropPrefix(ctx, []byte(classifier.CachePrefix(ns))); err != nil {
		return fmt.Errorf("drop cached classifications: %w", err)
	}

	r.Logger.Info("classification cache invalidated", "namespace", ns)
	return nil
}
