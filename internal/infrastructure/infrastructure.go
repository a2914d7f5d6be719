// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, cache) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/emotive/internal/config"
	"github.com/JaimeStill/emotive/pkg/cache"
	"github.com/JaimeStill/emotive/pkg/database"
	"github.com/JaimeStill/emotive/pkg/lifecycle"
	"github.com/JaimeStill/emotive/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Cache is nil when the classification cache is disabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System
}

// NewLogger returns the text logger used by the service and CLI.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// OpenCache opens the classification cache, or returns nil when cfg disables it.
func OpenCache(cfg *cache.Config, logger *slog.Logger) (cache.System, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}

	c, err := cache.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	return c, nil
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	c, err := OpenCache(&cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Cache:     c,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if i.Cache != nil {
		if err := i.Cache.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("cache start failed: %w", err)
		}
	}
	return nil
}
