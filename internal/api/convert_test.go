package api_test

import (
	"testing"
	"time"

	"scribe/internal/api"
	"scribe/internal/batch"
	"scribe/internal/jobs"
	"scribe/internal/ocr"
)

func TestFromBatchResult(t *testing.T) {
	failure := ocr.ClassifyStatus(500, "backend exploded", 0)
	result := batch.BatchResult{
		Items: []batch.ItemResult{
			{
				ID:           "doc-001",
				Source:       ocr.URLDocument("https://example.com/a.pdf"),
				Title:        "https://example.com/a.pdf",
				Status:       batch.StatusSucceeded,
				Payload:      &ocr.Result{Pages: []ocr.Page{{Markdown: "text"}, {Markdown: "more"}}},
				AttemptsUsed: 1,
			},
			{
				ID:           "doc-002",
				Source:       ocr.FileDocument("/tmp/b.pdf"),
				Title:        "B",
				Status:       batch.StatusFailed,
				Err:          failure,
				AttemptsUsed: 3,
			},
		},
		Succeeded: 1,
		Failed:    1,
		Elapsed:   1500 * time.Millisecond,
	}

	response := api.FromBatchResult("/tmp", result)
	if response.Input != "/tmp" || response.Succeeded != 1 || response.Failed != 1 {
		t.Fatalf("unexpected response header: %+v", response)
	}
	if response.ElapsedSeconds != 1.5 {
		t.Fatalf("unexpected elapsed %f", response.ElapsedSeconds)
	}
	if len(response.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(response.Items))
	}

	ok := response.Items[0]
	if ok.Status != "succeeded" || ok.Pages != 2 || ok.Result == nil || ok.Error != nil {
		t.Fatalf("unexpected first item: %+v", ok)
	}
	failed := response.Items[1]
	if failed.Status != "failed" || failed.Result != nil || failed.Error == nil {
		t.Fatalf("unexpected second item: %+v", failed)
	}
	if failed.Error.Kind != "backend_fault" || failed.Error.StatusCode != 500 || !failed.Error.Retryable {
		t.Fatalf("unexpected error payload: %+v", failed.Error)
	}
}

func TestFromJobFormatsTimestamps(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	job := &jobs.Job{
		ID:        "job-1",
		Input:     "/data",
		State:     jobs.StateCompleted,
		ItemCount: 3,
		Succeeded: 3,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}

	dto := api.FromJob(job)
	if dto.State != "completed" || dto.ItemCount != 3 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.CreatedAt != "2026-08-01T10:30:00.000Z" {
		t.Fatalf("unexpected created timestamp %q", dto.CreatedAt)
	}

	empty := api.FromJob(nil)
	if empty.ID != "" || empty.CreatedAt != "" {
		t.Fatalf("expected zero dto for nil job, got %+v", empty)
	}
}
