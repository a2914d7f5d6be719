package storage

import (
	"errors"

	"github.com/JaimeStill/emotive/pkg/env"
)

// Config holds Azure Blob Storage connection parameters.
// Either ConnectionString (shared key, e.g. Azurite) or ServiceURL
// (resolved with the default Azure credential chain) must be set.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MaxListSize      string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(e *Env) error {
	c.loadDefaults()
	if e != nil {
		c.loadEnv(e)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "runs"
	}
	if c.MaxListSize <= 0 {
		c.MaxListSize = 50
	}
}

func (c *Config) loadEnv(e *Env) {
	env.String(&c.ContainerName, e.ContainerName)
	env.String(&c.ConnectionString, e.ConnectionString)
	env.String(&c.ServiceURL, e.ServiceURL)

	size := int(c.MaxListSize)
	env.Int(&size, e.MaxListSize)
	if size > 0 {
		c.MaxListSize = int32(size)
	}
}

func (c *Config) validate() error {
	c.MaxListSize = min(c.MaxListSize, MaxListCap)

	if c.ContainerName == "" {
		return errors.New("container_name required")
	}
	if c.ConnectionString == "" && c.ServiceURL == "" {
		return errors.New("connection_string or service_url required")
	}
	return nil
}
