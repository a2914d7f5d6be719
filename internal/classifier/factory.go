package classifier

import (
	"fmt"
	"log/slog"
	"net/http"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/emotive/pkg/cache"
)

// Deps carries the collaborators a backend may need. Cache and HTTPClient
// are optional.
type Deps struct {
	Agent      gaconfig.AgentConfig
	Prompter   Prompter
	Cache      cache.System
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New builds the backend named by cfg.Backend, wrapped in the cache
// decorator when deps.Cache is set.
func New(cfg *Config, deps Deps) (Classifier, error) {
	var c Classifier

	switch cfg.Backend {
	case BackendInference:
		c = NewInference(cfg.Inference, deps.HTTPClient)
	case BackendAgent:
		c = NewAgent(deps.Agent, deps.Prompter, cfg.Labels)
	case BackendAnthropic:
		c = NewAnthropic(cfg.Anthropic, deps.Prompter, cfg.Labels)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if deps.Cache != nil {
		var fp Fingerprint
		if UsesPrompts(cfg.Backend) {
			fp = PromptFingerprint(deps.Prompter, cfg.Labels)
		}
		c = Cached(c, deps.Cache, Namespace(cfg, deps.Agent), fp, logger)
	}

	logger.Info("classifier ready", "backend", cfg.Backend, "cached", deps.Cache != nil)
	return c, nil
}

// Namespace returns the cache namespace for cfg's backend and model.
func Namespace(cfg *Config, agentCfg gaconfig.AgentConfig) string {
	switch cfg.Backend {
	case BackendInference:
		return BackendInference + ":" + cfg.Inference.Model
	case BackendAgent:
		if agentCfg.Model != nil {
			return BackendAgent + ":" + agentCfg.Model.Name
		}
		return BackendAgent
	case BackendAnthropic:
		return BackendAnthropic + ":" + cfg.Anthropic.Model
	default:
		return cfg.Backend
	}
}

// UsesPrompts reports whether the backend reads instructions from a Prompter.
func UsesPrompts(backend string) bool {
	return backend == BackendAgent || backend == BackendAnthropic
}
