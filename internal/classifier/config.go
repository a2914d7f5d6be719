package classifier

import (
	"fmt"
	"time"

	"github.com/JaimeStill/emotive/pkg/env"
)

// Backend names accepted by Config.Backend.
const (
	BackendInference = "inference"
	BackendAgent     = "agent"
	BackendAnthropic = "anthropic"
)

const (
	EnvBackend          = "EMOTIVE_CLASSIFIER_BACKEND"
	EnvLabels           = "EMOTIVE_CLASSIFIER_LABELS"
	EnvWorkers          = "EMOTIVE_CLASSIFIER_WORKERS"
	EnvTimeout          = "EMOTIVE_CLASSIFIER_TIMEOUT"
	EnvInferenceBaseURL = "EMOTIVE_INFERENCE_BASE_URL"
	EnvInferenceModel   = "EMOTIVE_INFERENCE_MODEL"
	EnvInferenceToken   = "EMOTIVE_INFERENCE_TOKEN"
	EnvAnthropicAPIKey  = "EMOTIVE_ANTHROPIC_API_KEY"
	EnvAnthropicBaseURL = "EMOTIVE_ANTHROPIC_BASE_URL"
	EnvAnthropicModel   = "EMOTIVE_ANTHROPIC_MODEL"
)

// DefaultLabels is the label set of the default inference model.
var DefaultLabels = []string{"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise"}

// Config selects and parameterizes a classifier backend.
type Config struct {
	Backend   string          `toml:"backend"`
	Labels    []string        `toml:"labels"`
	Workers   int             `toml:"workers"`
	Timeout   string          `toml:"timeout"`
	Inference InferenceConfig `toml:"inference"`
	Anthropic AnthropicConfig `toml:"anthropic"`
}

// InferenceConfig points at a Hugging Face style text-classification endpoint.
type InferenceConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	Token   string `toml:"token"`
}

// AnthropicConfig configures the Anthropic Messages API backend.
type AnthropicConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// TimeoutDuration parses Timeout. Zero means no per-call deadline.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.Validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if len(overlay.Labels) > 0 {
		c.Labels = overlay.Labels
	}
	if overlay.Workers > 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Inference.BaseURL != "" {
		c.Inference.BaseURL = overlay.Inference.BaseURL
	}
	if overlay.Inference.Model != "" {
		c.Inference.Model = overlay.Inference.Model
	}
	if overlay.Inference.Token != "" {
		c.Inference.Token = overlay.Inference.Token
	}
	if overlay.Anthropic.APIKey != "" {
		c.Anthropic.APIKey = overlay.Anthropic.APIKey
	}
	if overlay.Anthropic.BaseURL != "" {
		c.Anthropic.BaseURL = overlay.Anthropic.BaseURL
	}
	if overlay.Anthropic.Model != "" {
		c.Anthropic.Model = overlay.Anthropic.Model
	}
	if overlay.Anthropic.MaxTokens > 0 {
		c.Anthropic.MaxTokens = overlay.Anthropic.MaxTokens
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendInference
	}
	if len(c.Labels) == 0 {
		c.Labels = append([]string(nil), DefaultLabels...)
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Inference.BaseURL == "" {
		c.Inference.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if c.Inference.Model == "" {
		c.Inference.Model = "j-hartmann/emotion-english-distilroberta-base"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	}
	if c.Anthropic.MaxTokens <= 0 {
		c.Anthropic.MaxTokens = 1024
	}
}

func (c *Config) loadEnv() {
	env.String(&c.Backend, EnvBackend)
	env.List(&c.Labels, EnvLabels)
	env.Int(&c.Workers, EnvWorkers)
	env.String(&c.Timeout, EnvTimeout)
	env.String(&c.Inference.BaseURL, EnvInferenceBaseURL)
	env.String(&c.Inference.Model, EnvInferenceModel)
	env.String(&c.Inference.Token, EnvInferenceToken)
	env.String(&c.Anthropic.APIKey, EnvAnthropicAPIKey)
	env.String(&c.Anthropic.BaseURL, EnvAnthropicBaseURL)
	env.String(&c.Anthropic.Model, EnvAnthropicModel)
}

// Validate checks the selected backend's settings, workers, and timeout.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendInference:
		if c.Inference.BaseURL == "" || c.Inference.Model == "" {
			return fmt.Errorf("inference base_url and model required")
		}
	case BackendAgent:
	case BackendAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("anthropic api_key required")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
