package classifier

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/emotive/pkg/formatting"
)

// Agent scores text with a go-agents chat model. A fresh agent is created
// per call so concurrent workers never share provider state.
type Agent struct {
	cfg      gaconfig.AgentConfig
	prompter Prompter
	labels   []string
}

// NewAgent creates an agent-backed classifier.
func NewAgent(cfg gaconfig.AgentConfig, prompter Prompter, labels []string) *Agent {
	return &Agent{cfg: cfg, prompter: prompter, labels: labels}
}

// Classify sends the composed prompt and parses the scored response.
func (b *Agent) Classify(ctx context.Context, text string) (ScoreDistribution, error) {
	system, err := ComposePrompt(ctx, b.prompter, b.labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	a, err := agent.New(&b.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrClassification, err)
	}

	resp, err := a.Chat(ctx, system+"\n\n"+userPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: chat call: %w", ErrClassification, err)
	}

	parsed, err := formatting.Parse[llmResponse](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", ErrClassification, err)
	}

	return parsed.Scores, nil
}
