package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(output, target) {
		t.Fatalf("expected target path in output, got %q", output)
	}

	contents, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(contents), "[mistral]") {
		t.Fatal("expected sample config contents")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite init failed: %v", err)
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	contents := "[mistral]\napi_key = \"super-secret\"\n"
	if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output, err := runCommand(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(output, "super-secret") {
		t.Fatal("expected api key to be redacted")
	}
	if !strings.Contains(output, "<redacted>") {
		t.Fatalf("expected redaction marker in output %q", output)
	}
	if !strings.Contains(output, "[batch]") {
		t.Fatalf("expected batch section in output %q", output)
	}
}

func TestFormatsListsExtensions(t *testing.T) {
	output, err := runCommand(t, "formats")
	if err != nil {
		t.Fatalf("formats failed: %v", err)
	}
	for _, ext := range []string{".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".tif", ".bmp"} {
		if !strings.Contains(output, ext) {
			t.Fatalf("expected %s in output %q", ext, output)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(output) == "" {
		t.Fatal("expected version output")
	}
}
