package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Inference calls a Hugging Face style text-classification endpoint:
// POST {base_url}/{model} with {"inputs": text}, answered by every label's
// score as [[{"label":..,"score":..}]] or [{"label":..,"score":..}].
type Inference struct {
	url    string
	token  string
	client *http.Client
}

// NewInference creates an inference backend. A nil client uses http.DefaultClient.
func NewInference(cfg InferenceConfig, client *http.Client) *Inference {
	if client == nil {
		client = http.DefaultClient
	}
	return &Inference{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(cfg.Model, "/"),
		token:  cfg.Token,
		client: client,
	}
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Classify scores text with the remote model.
func (b *Inference) Classify(ctx context.Context, text string) (ScoreDistribution, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:     text,
		Parameters: map[string]any{"top_k": nil},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrClassification, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrClassification, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrClassification, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrClassification, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	dist, err := decodeInference(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}
	return dist, nil
}

func decodeInference(payload []byte) (ScoreDistribution, error) {
	var nested []ScoreDistribution
	if err := json.Unmarshal(payload, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("empty response")
		}
		return nested[0], nil
	}

	var flat ScoreDistribution
	if err := json.Unmarshal(payload, &flat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return flat, nil
}
