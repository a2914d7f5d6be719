package classifier

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/JaimeStill/emotive/pkg/formatting"
)

// Anthropic scores text with the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	prompter  Prompter
	labels    []string
}

// NewAnthropic creates an Anthropic-backed classifier. Extra request options
// are appended after the configured key and base URL.
func NewAnthropic(cfg AnthropicConfig, prompter Prompter, labels []string, opts ...option.RequestOption) *Anthropic {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Anthropic{
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		prompter:  prompter,
		labels:    labels,
	}
}

// Classify sends the headline as the user turn with the composed system prompt.
func (b *Anthropic) Classify(ctx context.Context, text string) (ScoreDistribution, error) {
	system, err := ComposePrompt(ctx, b.prompter, b.labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	message, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: b.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt(text))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic api: %w", ErrClassification, err)
	}

	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		parsed, err := formatting.Parse[llmResponse](block.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: parse response: %w", ErrClassification, err)
		}
		return parsed.Scores, nil
	}

	return nil, fmt.Errorf("%w: no text content in anthropic response", ErrClassification)
}
