package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "env-key")
	path := writeConfig(t, "")

	cfg, resolvedPath, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolvedPath != path {
		t.Fatalf("expected existing config at %s, got %s (exists=%v)", path, resolvedPath, exists)
	}
	if cfg.Mistral.APIKey != "env-key" {
		t.Fatalf("expected API key from environment, got %q", cfg.Mistral.APIKey)
	}
	if cfg.Mistral.BaseURL != "https://api.mistral.ai" {
		t.Fatalf("unexpected base url %q", cfg.Mistral.BaseURL)
	}
	if cfg.Mistral.Model != "mistral-ocr-latest" {
		t.Fatalf("unexpected model %q", cfg.Mistral.Model)
	}
	if cfg.Batch.Concurrency != 4 || cfg.Batch.MaxAttempts != 3 {
		t.Fatalf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Batch.RetryBaseSeconds != 1 || cfg.Batch.RetryMaxSeconds != 30 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Batch)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := writeConfig(t, `
[mistral]
api_key = "file-key"
base_url = "https://ocr.internal/"
timeout_seconds = 45

[batch]
concurrency = 8
max_attempts = 5

[resolver]
recursive = true

[logging]
format = "json"
level = "debug"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mistral.APIKey != "file-key" {
		t.Fatalf("expected file API key, got %q", cfg.Mistral.APIKey)
	}
	if cfg.Mistral.BaseURL != "https://ocr.internal" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Mistral.BaseURL)
	}
	if cfg.Mistral.TimeoutSeconds != 45 {
		t.Fatalf("unexpected timeout %d", cfg.Mistral.TimeoutSeconds)
	}
	if cfg.Batch.Concurrency != 8 || cfg.Batch.MaxAttempts != 5 {
		t.Fatalf("unexpected batch overrides: %+v", cfg.Batch)
	}
	if !cfg.Resolver.Recursive {
		t.Fatal("expected resolver.recursive to be set")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging overrides: %+v", cfg.Logging)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("MISTRAL_API_KEY", "")
	path := writeConfig(t, "")

	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "mistral.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		fragment string
	}{
		{
			name:     "concurrency out of range",
			contents: "[mistral]\napi_key = \"k\"\n[batch]\nconcurrency = 100\n",
			fragment: "batch.concurrency",
		},
		{
			name:     "retry max below base",
			contents: "[mistral]\napi_key = \"k\"\n[batch]\nretry_base_seconds = 10\nretry_max_seconds = 5\n",
			fragment: "retry_max_seconds",
		},
		{
			name:     "bad log format",
			contents: "[mistral]\napi_key = \"k\"\n[logging]\nformat = \"xml\"\n",
			fragment: "logging.format",
		},
		{
			name:     "bad log level",
			contents: "[mistral]\napi_key = \"k\"\n[logging]\nlevel = \"verbose\"\n",
			fragment: "logging.level",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error mentioning %q, got %v", tc.fragment, err)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected second WriteSample to refuse overwrite")
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[mistral]") {
		t.Fatal("expected sample to document the mistral section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Mistral.APIKey = "k"
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}
