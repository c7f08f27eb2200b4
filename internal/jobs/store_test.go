package jobs_test

import (
	"context"
	"errors"
	"testing"

	"scribe/internal/jobs"
	"scribe/internal/testsupport"
)

func TestCreateAndFetchJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.Create(ctx, "/data/invoices")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected job ID to be assigned")
	}
	if job.State != jobs.StatePending {
		t.Fatalf("expected pending state, got %s", job.State)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Input != "/data/invoices" {
		t.Fatalf("unexpected input %q", fetched.Input)
	}
}

func TestCreateRequiresInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Create(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank input")
	}
}

func TestJobLifecycleTransitions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "/data/scans")

	if err := store.MarkRunning(ctx, job.ID); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	running, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if running.State != jobs.StateRunning {
		t.Fatalf("expected running, got %s", running.State)
	}

	if err := store.MarkCompleted(ctx, job.ID, 4, 1, "/out/scans.json"); err != nil {
		t.Fatalf("MarkCompleted failed: %v", err)
	}
	completed, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if completed.State != jobs.StateCompleted {
		t.Fatalf("expected completed, got %s", completed.State)
	}
	if completed.ItemCount != 5 || completed.Succeeded != 4 || completed.Failed != 1 {
		t.Fatalf("unexpected counts: %+v", completed)
	}
	if completed.ArtifactPath != "/out/scans.json" {
		t.Fatalf("unexpected artifact path %q", completed.ArtifactPath)
	}
	if !completed.State.Terminal() {
		t.Fatal("expected completed to be terminal")
	}
}

func TestMarkFailedRecordsMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job := testsupport.NewJob(t, store, "/data/missing")
	if err := store.MarkFailed(ctx, job.ID, "input not found"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	failed, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if failed.State != jobs.StateFailed || failed.ErrorMessage != "input not found" {
		t.Fatalf("unexpected job: %+v", failed)
	}
}

func TestGetByIDMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.GetByID(context.Background(), "nope")
	if !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMissingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if err := store.MarkRunning(context.Background(), "nope"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersByState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewJob(t, store, "/data/a")
	second := testsupport.NewJob(t, store, "/data/b")
	if err := store.MarkRunning(ctx, second.ID); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all))
	}

	pending, err := store.List(ctx, jobs.StatePending)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[jobs.StatePending] != 1 || stats[jobs.StateRunning] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
}
