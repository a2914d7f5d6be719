package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/pkg/cache"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInferenceClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"nested", `[[{"label":"joy","score":0.8},{"label":"sadness","score":0.2}]]`},
		{"flat", `[{"label":"joy","score":0.8},{"label":"sadness","score":0.2}]`},
	}

	want := classifier.ScoreDistribution{{"joy", 0.8}, {"sadness", 0.2}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotAuth, gotInput string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotAuth = r.Header.Get("Authorization")

				var req struct {
					Inputs string `json:"inputs"`
				}
				json.NewDecoder(r.Body).Decode(&req)
				gotInput = req.Inputs

				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			b := classifier.NewInference(classifier.InferenceConfig{
				BaseURL: srv.URL + "/models/",
				Model:   "org/emotion",
				Token:   "hf-token",
			}, srv.Client())

			dist, err := b.Classify(context.Background(), "Markets rally")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}

			if diff := cmp.Diff(want, dist); diff != "" {
				t.Errorf("distribution mismatch (-want +got):\n%s", diff)
			}
			if gotPath != "/models/org/emotion" {
				t.Errorf("path = %q", gotPath)
			}
			if gotAuth != "Bearer hf-token" {
				t.Errorf("Authorization = %q", gotAuth)
			}
			if gotInput != "Markets rally" {
				t.Errorf("inputs = %q", gotInput)
			}
		})
	}
}

func TestInferenceFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `{"error":"model loading"}`},
		{"undecodable", http.StatusOK, `{"error":"unexpected"}`},
		{"empty", http.StatusOK, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			b := classifier.NewInference(classifier.InferenceConfig{BaseURL: srv.URL, Model: "m"}, srv.Client())
			_, err := b.Classify(context.Background(), "text")
			if !errors.Is(err, classifier.ErrClassification) {
				t.Errorf("Classify() error = %v, want ErrClassification", err)
			}
		})
	}
}

func TestInferenceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	b := classifier.NewInference(classifier.InferenceConfig{BaseURL: url, Model: "m"}, nil)
	if _, err := b.Classify(context.Background(), "text"); !errors.Is(err, classifier.ErrClassification) {
		t.Errorf("Classify() error = %v, want ErrClassification", err)
	}
}

func TestAnthropicClassify(t *testing.T) {
	var gotSystem, gotUser string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}

		var req struct {
			System []struct {
				Text string `json:"text"`
			} `json:"system"`
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.System) > 0 {
			gotSystem = req.System[0].Text
		}
		if len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			gotUser = req.Messages[0].Content[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_01",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-test",
			"content": []map[string]any{{
				"type": "text",
				"text": "```json\n{\"scores\":[{\"label\":\"fear\",\"score\":0.7},{\"label\":\"joy\",\"score\":0.3}]}\n```",
			}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	defer srv.Close()

	b := classifier.NewAnthropic(
		classifier.AnthropicConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "claude-test", MaxTokens: 256},
		classifier.StaticPrompter("Score the mood."),
		[]string{"fear", "joy"},
		option.WithMaxRetries(0),
	)

	dist, err := b.Classify(context.Background(), "Storm approaches coast")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	want := classifier.ScoreDistribution{{"fear", 0.7}, {"joy", 0.3}}
	if diff := cmp.Diff(want, dist); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(gotSystem, "Score the mood.") || !strings.Contains(gotSystem, "fear, joy") {
		t.Errorf("system prompt = %q", gotSystem)
	}
	if !strings.Contains(gotUser, "Storm approaches coast") {
		t.Errorf("user prompt = %q", gotUser)
	}
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer srv.Close()

	b := classifier.NewAnthropic(
		classifier.AnthropicConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "claude-test", MaxTokens: 256},
		nil, nil, option.WithMaxRetries(0),
	)

	if _, err := b.Classify(context.Background(), "text"); !errors.Is(err, classifier.ErrClassification) {
		t.Errorf("Classify() error = %v, want ErrClassification", err)
	}
}

func newMemoryCache(t *testing.T) cache.System {
	t.Helper()

	cfg := cache.Config{Enabled: lo.ToPtr(true), InMemory: lo.ToPtr(true)}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	sys, err := cache.New(&cfg, discardLogger())
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	t.Cleanup(func() { sys.Close() })
	return sys
}

func TestCachedReadThrough(t *testing.T) {
	store := newMemoryCache(t)

	var calls atomic.Int32
	inner := classifier.Func(func(_ context.Context, text string) (classifier.ScoreDistribution, error) {
		calls.Add(1)
		return classifier.ScoreDistribution{{"joy", 0.6}, {"anger", 0.4}}, nil
	})

	c := classifier.Cached(inner, store, "test", nil, discardLogger())
	ctx := context.Background()

	first, err := c.Classify(ctx, "Team wins title")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	second, err := c.Classify(ctx, "Team wins title")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("inner calls = %d, want 1", calls.Load())
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached distribution differs (-first +second):\n%s", diff)
	}

	n, err := store.Count(ctx, classifier.CachePrefix("test"))
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want 1", n, err)
	}

	if err := store.DropPrefix(ctx, classifier.CachePrefix("test")); err != nil {
		t.Fatalf("DropPrefix() error = %v", err)
	}
	c.Classify(ctx, "Team wins title")
	if calls.Load() != 2 {
		t.Errorf("inner calls after drop = %d, want 2", calls.Load())
	}
}

func TestCachedSkipsErrorsAndInvalid(t *testing.T) {
	store := newMemoryCache(t)
	ctx := context.Background()

	errBackend := errors.New("backend down")
	failing := classifier.Cached(classifier.Func(func(context.Context, string) (classifier.ScoreDistribution, error) {
		return nil, errBackend
	}), store, "fail", nil, discardLogger())

	if _, err := failing.Classify(ctx, "x"); !errors.Is(err, errBackend) {
		t.Errorf("Classify() error = %v, want %v", err, errBackend)
	}

	invalid := classifier.Cached(classifier.Func(func(context.Context, string) (classifier.ScoreDistribution, error) {
		return classifier.ScoreDistribution{}, nil
	}), store, "invalid", nil, discardLogger())

	if _, err := invalid.Classify(ctx, "x"); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	for _, ns := range []string{"fail", "invalid"} {
		if n, _ := store.Count(ctx, classifier.CachePrefix(ns)); n != 0 {
			t.Errorf("namespace %s stored %d entries, want 0", ns, n)
		}
	}
}

func TestCachedSeparatesPrompts(t *testing.T) {
	store := newMemoryCache(t)
	ctx := context.Background()

	answer := func(labels ...string) classifier.Func {
		return func(context.Context, string) (classifier.ScoreDistribution, error) {
			return classifier.ScoreDistribution{{labels[0], 0.9}, {labels[1], 0.1}}, nil
		}
	}

	tests := []struct {
		name         string
		instructions classifier.StaticPrompter
		labels       []string
	}{
		{"default", "", []string{"joy", "anger"}},
		{"other labels", "", []string{"happy", "sad"}},
		{"other instructions", "Score only the verb.", []string{"joy", "anger"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := classifier.PromptFingerprint(tt.instructions, tt.labels)
			c := classifier.Cached(answer(tt.labels...), store, "agent", fp, discardLogger())

			dist, err := c.Classify(ctx, "Markets rally")
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if err := dist.ValidateVocabulary(tt.labels); err != nil {
				t.Errorf("answer from another prompt served: %v", err)
			}
			if dist[0].Label != tt.labels[0] {
				t.Errorf("top label = %q, want %q", dist[0].Label, tt.labels[0])
			}
		})
	}

	n, err := store.Count(ctx, classifier.CachePrefix("agent"))
	if err != nil || n != len(tests) {
		t.Errorf("Count() = %d, %v; want %d", n, err, len(tests))
	}
}

type fingerprintFailingPrompter struct{}

func (fingerprintFailingPrompter) Instructions(context.Context) (string, error) {
	return "", errors.New("prompt store down")
}

func TestCachedBypassesOnFingerprintFailure(t *testing.T) {
	store := newMemoryCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	inner := classifier.Func(func(context.Context, string) (classifier.ScoreDistribution, error) {
		calls.Add(1)
		return classifier.ScoreDistribution{{"joy", 1}}, nil
	})

	fp := classifier.PromptFingerprint(fingerprintFailingPrompter{}, nil)
	c := classifier.Cached(inner, store, "agent", fp, discardLogger())

	for range 2 {
		if _, err := c.Classify(ctx, "x"); err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("inner calls = %d, want 2", calls.Load())
	}
	if n, _ := store.Count(ctx, classifier.CachePrefix("agent")); n != 0 {
		t.Errorf("stored %d entries, want 0", n)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := classifier.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	c, err := classifier.New(&cfg, classifier.Deps{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := c.(*classifier.Inference); !ok {
		t.Errorf("New() = %T, want *Inference", c)
	}

	cfg.Backend = "oracle"
	if _, err := classifier.New(&cfg, classifier.Deps{}); !errors.Is(err, classifier.ErrUnknownBackend) {
		t.Errorf("New() error = %v, want ErrUnknownBackend", err)
	}
}
