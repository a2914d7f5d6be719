package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "emotive"
user = "emotive"
password = "emotive"
ssl_mode = "disable"

[storage]
container_name = "runs"
connection_string = "DefaultEndpointsProtocol=http;AccountName=emotivestore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/emotivestore;"

[cache]
enabled = true
path = "/var/lib/emotive/cache"

[api]
base_path = "/api"
max_upload_size = "10MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[classifier]
backend = "inference"
labels = ["joy", "sadness", "neutral"]
workers = 4
timeout = "10s"

[classifier.inference]
model = "j-hartmann/emotion-english-distilroberta-base"

[dataset]
text_column = "headline"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[cache]
enabled = true
in_memory = true

[classifier]
workers = 16
`

const pipelineOnly = `
[classifier]
backend = "inference"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "emotive" {
		t.Errorf("db name: got %s, want emotive", cfg.Database.Name)
	}
	if cfg.Storage.ContainerName != "runs" {
		t.Errorf("storage container: got %s, want runs", cfg.Storage.ContainerName)
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 25 || cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination: got %+v", cfg.API.Pagination)
	}
	if !cfg.Cache.IsEnabled() || cfg.Cache.Path != "/var/lib/emotive/cache" {
		t.Errorf("cache: got %+v", cfg.Cache)
	}
	if diff := cmp.Diff([]string{"joy", "sadness", "neutral"}, cfg.Classifier.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if cfg.Classifier.Workers != 4 || cfg.Classifier.TimeoutDuration() != 10*time.Second {
		t.Errorf("classifier: got %+v", cfg.Classifier)
	}
	if cfg.Dataset.TextColumn != "headline" || cfg.Dataset.CategoryColumn != "label" {
		t.Errorf("dataset: got %+v", cfg.Dataset)
	}
	if cfg.Agent.Name == "" || cfg.Agent.Provider == nil || cfg.Agent.Model == nil {
		t.Errorf("agent defaults not applied: %+v", cfg.Agent)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)

	t.Setenv("EMOTIVE_ENV", "staging")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Classifier.Workers != 16 || cfg.Classifier.Timeout != "10s" {
		t.Errorf("classifier: got workers %d timeout %s", cfg.Classifier.Workers, cfg.Classifier.Timeout)
	}
	if !cfg.Cache.IsInMemory() {
		t.Error("cache in_memory not applied from overlay")
	}
	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
}

func TestLoadOverlayWithoutCacheKeepsBase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", "[server]\nport = 9090\n")

	t.Setenv("EMOTIVE_ENV", "staging")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Cache.IsEnabled() || cfg.Cache.IsInMemory() {
		t.Errorf("cache: got enabled=%v in_memory=%v, want base values", cfg.Cache.IsEnabled(), cfg.Cache.IsInMemory())
	}
	if cfg.Cache.Path != "/var/lib/emotive/cache" {
		t.Errorf("cache path: got %s", cfg.Cache.Path)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)

	t.Setenv("EMOTIVE_VERSION", "2.0.0")
	t.Setenv("EMOTIVE_SERVER_PORT", "3000")
	t.Setenv("EMOTIVE_CLASSIFIER_BACKEND", "agent")
	t.Setenv("EMOTIVE_AGENT_MODEL_NAME", "llama3.1:8b")
	t.Setenv("EMOTIVE_AGENT_TOKEN", "secret")
	t.Setenv("EMOTIVE_DATASET_CATEGORY_COLUMN", "source")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Classifier.Backend != classifier.BackendAgent {
		t.Errorf("backend: got %s, want agent", cfg.Classifier.Backend)
	}
	if cfg.Agent.Model.Name != "llama3.1:8b" {
		t.Errorf("agent model: got %s", cfg.Agent.Model.Name)
	}
	if cfg.Agent.Provider.Options["token"] != "secret" {
		t.Errorf("agent token option: got %v", cfg.Agent.Provider.Options["token"])
	}
	if cfg.Dataset.CategoryColumn != "source" {
		t.Errorf("category column: got %s", cfg.Dataset.CategoryColumn)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("EMOTIVE_DB_NAME", "testdb")
	t.Setenv("EMOTIVE_DB_USER", "testuser")
	t.Setenv("EMOTIVE_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.LoadDir(dir)
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Classifier.Backend != classifier.BackendInference {
		t.Errorf("default backend: got %s", cfg.Classifier.Backend)
	}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestLoadPipelineSkipsServiceSections(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", pipelineOnly)

	if _, err := config.LoadDir(dir); err == nil {
		t.Fatal("LoadDir: expected database validation error")
	}

	cfg, err := config.LoadPipeline(dir)
	if err != nil {
		t.Fatalf("LoadPipeline failed: %v", err)
	}
	if len(cfg.Classifier.Labels) != len(classifier.DefaultLabels) {
		t.Errorf("labels: got %v", cfg.Classifier.Labels)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid toml", `shutdown_timeout = `, "parse config"},
		{"bad shutdown timeout", `shutdown_timeout = "soon"`, "invalid shutdown_timeout"},
		{"anthropic without key", "[classifier]\nbackend = \"anthropic\"", "classifier"},
		{"unknown backend", "[classifier]\nbackend = \"telepathy\"", "classifier"},
		{"cache on disk without path", "[cache]\nenabled = true", "cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)

			_, err := config.LoadPipeline(dir)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfigFinalize(t *testing.T) {
	t.Setenv("EMOTIVE_API_MAX_UPLOAD_SIZE", "nope")

	cfg := config.APIConfig{}
	if err := cfg.Finalize(); err == nil || !strings.Contains(err.Error(), "max_upload_size") {
		t.Errorf("error = %v, want invalid max_upload_size", err)
	}
}
