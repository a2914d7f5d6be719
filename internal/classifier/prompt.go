package classifier

import (
	"context"
	"fmt"
	"strings"
)

// DefaultInstructions are used by the LLM-backed backends when no prompt
// override is active.
const DefaultInstructions = `You are an emotion analyst scoring short news headlines.

Read the headline and estimate how strongly it expresses each emotion in the
provided vocabulary. Judge the emotion conveyed by the wording of the headline
itself, not the emotion a reader might feel about the underlying event.
Scores are probabilities: each is between 0 and 1 and together they should sum
to approximately 1.`

const responseSpec = `Respond with a JSON object matching this exact structure:

{
  "scores": [
    {"label": "<emotion>", "score": <probability>}
  ]
}

Field constraints:
- scores: One entry per emotion in the vocabulary, each label exactly once.
- label: An emotion from the vocabulary, spelled exactly as listed.
- score: A number between 0 and 1.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not include labels outside the vocabulary`

// Prompter supplies the tunable instructions for LLM-backed backends.
type Prompter interface {
	Instructions(ctx context.Context) (string, error)
}

// StaticPrompter returns fixed instructions.
type StaticPrompter string

// Instructions returns p, or DefaultInstructions when p is empty.
func (p StaticPrompter) Instructions(context.Context) (string, error) {
	if p == "" {
		return DefaultInstructions, nil
	}
	return string(p), nil
}

type llmResponse struct {
	Scores ScoreDistribution `json:"scores"`
}

// ComposePrompt builds the system prompt from the active instructions, the
// fixed response specification, and the label vocabulary.
func ComposePrompt(ctx context.Context, p Prompter, labels []string) (string, error) {
	if p == nil {
		p = StaticPrompter("")
	}

	instructions, err := p.Instructions(ctx)
	if err != nil {
		return "", fmt.Errorf("load instructions: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(responseSpec)

	if len(labels) > 0 {
		sb.WriteString("\n\nVocabulary: ")
		sb.WriteString(strings.Join(labels, ", "))
	}

	return sb.String(), nil
}

func userPrompt(text string) string {
	return "Headline:\n\n" + text
}

// PromptFingerprint fingerprints the system prompt composed from p and labels,
// so cached answers are only reused under the same prompt.
func PromptFingerprint(p Prompter, labels []string) Fingerprint {
	return func(ctx context.Context) (string, error) {
		return ComposePrompt(ctx, p, labels)
	}
}
