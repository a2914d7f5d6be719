package config

import (
	"fmt"

	"github.com/JaimeStill/emotive/pkg/env"
	"github.com/JaimeStill/emotive/pkg/formatting"
	"github.com/JaimeStill/emotive/pkg/middleware"
	"github.com/JaimeStill/emotive/pkg/pagination"
)

const (
	EnvAPIBasePath      = "EMOTIVE_API_BASE_PATH"
	EnvAPIMaxUploadSize = "EMOTIVE_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "EMOTIVE_CORS_ENABLED",
	Origins:          "EMOTIVE_CORS_ORIGINS",
	AllowedMethods:   "EMOTIVE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "EMOTIVE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "EMOTIVE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "EMOTIVE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "EMOTIVE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "EMOTIVE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. The value is validated
// by Finalize.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if size, err := formatting.ParseBytes(c.MaxUploadSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_upload_size: %q", c.MaxUploadSize)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	env.String(&c.BasePath, EnvAPIBasePath)
	env.String(&c.MaxUploadSize, EnvAPIMaxUploadSize)
}
