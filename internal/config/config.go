// Package config loads the service and CLI configuration: a config.toml base,
// an optional config.<env>.toml overlay selected by EMOTIVE_ENV, environment
// variable overrides, and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/internal/dataset"
	"github.com/JaimeStill/emotive/pkg/cache"
	"github.com/JaimeStill/emotive/pkg/database"
	"github.com/JaimeStill/emotive/pkg/env"
	"github.com/JaimeStill/emotive/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvEmotiveEnv             = "EMOTIVE_ENV"
	EnvEmotiveShutdownTimeout = "EMOTIVE_SHUTDOWN_TIMEOUT"
	EnvEmotiveVersion         = "EMOTIVE_VERSION"

	EnvDatasetTextColumn     = "EMOTIVE_DATASET_TEXT_COLUMN"
	EnvDatasetCategoryColumn = "EMOTIVE_DATASET_CATEGORY_COLUMN"
)

var databaseEnv = &database.Env{
	Host:            "EMOTIVE_DB_HOST",
	Port:            "EMOTIVE_DB_PORT",
	Name:            "EMOTIVE_DB_NAME",
	User:            "EMOTIVE_DB_USER",
	Password:        "EMOTIVE_DB_PASSWORD",
	SSLMode:         "EMOTIVE_DB_SSL_MODE",
	MaxOpenConns:    "EMOTIVE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "EMOTIVE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "EMOTIVE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "EMOTIVE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "EMOTIVE_STORAGE_CONTAINER_NAME",
	ConnectionString: "EMOTIVE_STORAGE_CONNECTION_STRING",
	ServiceURL:       "EMOTIVE_STORAGE_SERVICE_URL",
	MaxListSize:      "EMOTIVE_STORAGE_MAX_LIST_SIZE",
}

var cacheEnv = &cache.Env{
	Enabled:    "EMOTIVE_CACHE_ENABLED",
	Path:       "EMOTIVE_CACHE_PATH",
	InMemory:   "EMOTIVE_CACHE_IN_MEMORY",
	TTL:        "EMOTIVE_CACHE_TTL",
	GCInterval: "EMOTIVE_CACHE_GC_INTERVAL",
}

// Config is the root configuration for the emotive service and CLI.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	Cache           cache.Config         `toml:"cache"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Classifier      classifier.Config    `toml:"classifier"`
	Dataset         dataset.Options      `toml:"dataset"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the EMOTIVE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEmotiveEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the configuration from the working directory and finalizes
// every section the service needs. If no config.toml exists, defaults and
// environment variables provide all configuration.
func Load() (*Config, error) {
	return LoadDir(".")
}

// LoadDir is Load with the config files read from dir.
func LoadDir(dir string) (*Config, error) {
	cfg, err := read(dir)
	if err != nil {
		return nil, err
	}

	if err := cfg.finalizePipeline(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	if err := cfg.finalizeService(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadPipeline reads the configuration from dir but finalizes only the
// sections an offline pipeline run needs: classifier, agent, cache, and
// dataset. Server, database, storage, and API sections are left unvalidated.
func LoadPipeline(dir string) (*Config, error) {
	cfg, err := read(dir)
	if err != nil {
		return nil, err
	}

	if err := cfg.finalizePipeline(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Dataset.TextColumn != "" {
		c.Dataset.TextColumn = overlay.Dataset.TextColumn
	}
	if overlay.Dataset.CategoryColumn != "" {
		c.Dataset.CategoryColumn = overlay.Dataset.CategoryColumn
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Classifier.Merge(&overlay.Classifier)
}

func (c *Config) finalizePipeline() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func (c *Config) finalizeService() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}

	d := dataset.DefaultOptions()
	if c.Dataset.TextColumn == "" {
		c.Dataset.TextColumn = d.TextColumn
	}
	if c.Dataset.CategoryColumn == "" {
		c.Dataset.CategoryColumn = d.CategoryColumn
	}
}

func (c *Config) loadEnv() {
	env.String(&c.ShutdownTimeout, EnvEmotiveShutdownTimeout)
	env.String(&c.Version, EnvEmotiveVersion)
	env.String(&c.Dataset.TextColumn, EnvDatasetTextColumn)
	env.String(&c.Dataset.CategoryColumn, EnvDatasetCategoryColumn)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func read(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvEmotiveEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
