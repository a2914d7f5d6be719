package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/JaimeStill/emotive/pkg/env"
)

// Config holds Badger key-value store settings. The boolean fields are
// pointers so an overlay can leave them unset.
type Config struct {
	Enabled    *bool  `toml:"enabled"`
	Path       string `toml:"path"`
	InMemory   *bool  `toml:"in_memory"`
	TTL        string `toml:"ttl"`
	GCInterval string `toml:"gc_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled    string
	Path       string
	InMemory   string
	TTL        string
	GCInterval string
}

// IsEnabled reports whether the cache is switched on.
func (c *Config) IsEnabled() bool {
	return lo.FromPtr(c.Enabled)
}

// IsInMemory reports whether the store lives in memory only.
func (c *Config) IsInMemory() bool {
	return lo.FromPtr(c.InMemory)
}

// TTLDuration returns TTL as a time.Duration. Zero means entries never expire.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// GCIntervalDuration returns GCInterval as a time.Duration.
func (c *Config) GCIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.GCInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(e *Env) error {
	if c.TTL == "" {
		c.TTL = "168h"
	}
	if c.GCInterval == "" {
		c.GCInterval = "10m"
	}

	enabled, inMemory := c.IsEnabled(), c.IsInMemory()
	if e != nil {
		env.Bool(&enabled, e.Enabled)
		env.String(&c.Path, e.Path)
		env.Bool(&inMemory, e.InMemory)
		env.String(&c.TTL, e.TTL)
		env.String(&c.GCInterval, e.GCInterval)
	}
	c.Enabled, c.InMemory = &enabled, &inMemory

	return c.validate()
}

// Merge overwrites fields that overlay sets.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled != nil {
		c.Enabled = lo.ToPtr(*overlay.Enabled)
	}
	if overlay.InMemory != nil {
		c.InMemory = lo.ToPtr(*overlay.InMemory)
	}

	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.GCInterval != "" {
		c.GCInterval = overlay.GCInterval
	}
}

func (c *Config) validate() error {
	if c.IsEnabled() && !c.IsInMemory() && c.Path == "" {
		return errors.New("path required when cache is enabled on disk")
	}
	if d, err := time.ParseDuration(c.TTL); err != nil || d < 0 {
		return fmt.Errorf("invalid ttl: %q", c.TTL)
	}
	if d, err := time.ParseDuration(c.GCInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid gc_interval: %q", c.GCInterval)
	}
	return nil
}
