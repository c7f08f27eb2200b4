package api_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"scribe/internal/api"
	"scribe/internal/ocr"
	"scribe/internal/testsupport"
)

// scriptedClient fails refs listed in failures with the given error and
// succeeds everywhere else.
type scriptedClient struct {
	mu       sync.Mutex
	failures map[string]*ocr.Error
	seen     []string
}

func (c *scriptedClient) Process(_ context.Context, doc ocr.Document, _ ocr.Options) (*ocr.Result, error) {
	c.mu.Lock()
	c.seen = append(c.seen, doc.Ref())
	c.mu.Unlock()
	if err, ok := c.failures[doc.Name]; ok {
		return nil, err
	}
	return &ocr.Result{Pages: []ocr.Page{{Markdown: "content of " + doc.Name}}}, nil
}

func TestRunBatchWritesArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.Documents(t, t.TempDir(), "b.pdf", "a.png", "skip.txt")

	service := api.NewService(cfg, &scriptedClient{}, nil)
	response, err := service.RunBatch(context.Background(), api.BatchParams{Input: dir})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if len(response.Items) != 2 || response.Succeeded != 2 || response.Failed != 0 {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Items[0].ID != "doc-001" || !strings.HasSuffix(response.Items[0].Source, "a.png") {
		t.Fatalf("expected a.png first, got %+v", response.Items[0])
	}
	if response.ArtifactPath == "" {
		t.Fatal("expected artifact path")
	}
	if !strings.HasPrefix(response.ArtifactPath, cfg.Paths.OutputDir) {
		t.Fatalf("expected artifact under output dir, got %s", response.ArtifactPath)
	}

	raw, err := os.ReadFile(response.ArtifactPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var persisted api.BatchResponse
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if len(persisted.Items) != 2 || persisted.Items[1].Result == nil {
		t.Fatalf("unexpected artifact contents: %+v", persisted)
	}
}

func TestRunBatchToleratesItemFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.Documents(t, t.TempDir(), "a.pdf", "b.pdf", "c.pdf")

	client := &scriptedClient{failures: map[string]*ocr.Error{
		"b.pdf": ocr.ClassifyStatus(400, "unreadable", 0),
	}}
	service := api.NewService(cfg, client, nil)

	response, err := service.RunBatch(context.Background(), api.BatchParams{Input: dir, SkipArtifact: true})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if response.Succeeded != 2 || response.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", response)
	}
	failed := response.Items[1]
	if failed.Error == nil || failed.Error.Kind != "invalid_request" {
		t.Fatalf("unexpected failed item: %+v", failed)
	}
	if response.ArtifactPath != "" {
		t.Fatal("expected no artifact when skipped")
	}
}

func TestRunBatchExplicitOutputPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.Documents(t, t.TempDir(), "a.pdf")
	target := filepath.Join(t.TempDir(), "custom.json")

	service := api.NewService(cfg, &scriptedClient{}, nil)
	response, err := service.RunBatch(context.Background(),
		api.BatchParams{Input: dir, OutputPath: target})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if response.ArtifactPath != target {
		t.Fatalf("expected artifact at %s, got %s", target, response.ArtifactPath)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected artifact file: %v", err)
	}
}

func TestRunBatchResolutionFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	service := api.NewService(cfg, &scriptedClient{}, nil)

	_, err := service.RunBatch(context.Background(),
		api.BatchParams{Input: filepath.Join(t.TempDir(), "missing.pdf")})
	classified, ok := ocr.AsError(err)
	if !ok || classified.Kind != ocr.KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRunBatchURLList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &scriptedClient{}
	service := api.NewService(cfg, client, nil)

	response, err := service.RunBatch(context.Background(), api.BatchParams{
		URLs:         []string{"https://example.com/a.pdf", "https://example.com/b.pdf"},
		SkipArtifact: true,
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if len(response.Items) != 2 || response.Succeeded != 2 {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Items[0].Source != "https://example.com/a.pdf" {
		t.Fatalf("expected submission order preserved, got %+v", response.Items[0])
	}
}

func TestRunBatchURLListValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	service := api.NewService(cfg, &scriptedClient{}, nil)

	urls := make([]string, api.MaxBatchURLs+1)
	for i := range urls {
		urls[i] = "https://example.com/doc.pdf"
	}
	_, err := service.RunBatch(context.Background(), api.BatchParams{URLs: urls, SkipArtifact: true})
	classified, ok := ocr.AsError(err)
	if !ok || classified.Kind != ocr.KindInvalidInput {
		t.Fatalf("expected invalid input for oversized batch, got %v", err)
	}

	_, err = service.RunBatch(context.Background(), api.BatchParams{
		URLs:         []string{"ftp://example.com/doc.pdf"},
		SkipArtifact: true,
	})
	classified, ok = ocr.AsError(err)
	if !ok || classified.Kind != ocr.KindInvalidInput {
		t.Fatalf("expected invalid input for non-http url, got %v", err)
	}
}
