package config

import (
	"errors"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/emotive/pkg/env"
)

const (
	EnvAgentProviderName = "EMOTIVE_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "EMOTIVE_AGENT_BASE_URL"
	EnvAgentToken        = "EMOTIVE_AGENT_TOKEN"
	EnvAgentDeployment   = "EMOTIVE_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "EMOTIVE_AGENT_API_VERSION"
	EnvAgentAuthType     = "EMOTIVE_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "EMOTIVE_AGENT_MODEL_NAME"
)

// FinalizeAgent applies the three-phase finalize pattern to a go-agents AgentConfig:
// defaults from go-agents DefaultAgentConfig, environment variable overrides, and validation.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}

	env.String(&c.Provider.Name, EnvAgentProviderName)
	env.String(&c.Provider.BaseURL, EnvAgentBaseURL)
	env.String(&c.Model.Name, EnvAgentModelName)

	setOption := func(name, key string) {
		var v string
		env.String(&v, name)
		if v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	switch {
	case c.Name == "":
		return errors.New("name required")
	case c.Provider == nil:
		return errors.New("provider required")
	case c.Provider.Name == "":
		return errors.New("provider name required")
	case c.Model == nil:
		return errors.New("model required")
	}
	return nil
}
