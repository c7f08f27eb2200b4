package artifact_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/artifact"
)

func TestWriteJSONCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "result.json")

	payload := map[string]any{"succeeded": 2, "failed": 0}
	if err := artifact.WriteJSON(path, payload); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.HasSuffix(string(raw), "\n") {
		t.Fatal("expected trailing newline")
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("artifact is not valid json: %v", err)
	}
	if decoded["succeeded"] != float64(2) {
		t.Fatalf("unexpected payload: %#v", decoded)
	}
}

func TestWriteJSONReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	if err := artifact.WriteJSON(path, map[string]string{"state": "old"}); err != nil {
		t.Fatalf("first WriteJSON failed: %v", err)
	}
	if err := artifact.WriteJSON(path, map[string]string{"state": "new"}); err != nil {
		t.Fatalf("second WriteJSON failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !strings.Contains(string(raw), "new") {
		t.Fatalf("expected replacement content, got %s", raw)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestWriteJSONRejectsUnencodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	if err := artifact.WriteJSON(path, func() {}); err == nil {
		t.Fatal("expected error for unencodable value")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("expected no artifact written on encode failure")
	}
}
