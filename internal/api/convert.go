package api

import (
	"scribe/internal/batch"
	"scribe/internal/jobs"
	"scribe/internal/ocr"
)

// FromItemResult converts a terminal item result to its API representation.
func FromItemResult(result batch.ItemResult) BatchItem {
	dto := BatchItem{
		ID:           result.ID,
		Source:       result.Source.Ref(),
		Title:        result.Title,
		Status:       string(result.Status),
		AttemptsUsed: result.AttemptsUsed,
	}
	if result.Payload != nil {
		dto.Pages = len(result.Payload.Pages)
		dto.Result = result.Payload
	}
	if result.Err != nil {
		dto.Error = FromError(result.Err)
	}
	return dto
}

// FromError converts a classified OCR error to its API representation.
func FromError(err *ocr.Error) *ItemError {
	if err == nil {
		return nil
	}
	return &ItemError{
		Kind:       string(err.Kind),
		Message:    err.Error(),
		StatusCode: err.StatusCode,
		Retryable:  err.Retryable,
	}
}

// FromBatchResult converts an aggregated batch result to its API
// representation, preserving item order.
func FromBatchResult(input string, result batch.BatchResult) BatchResponse {
	items := make([]BatchItem, len(result.Items))
	for i, item := range result.Items {
		items[i] = FromItemResult(item)
	}
	return BatchResponse{
		Input:          input,
		Items:          items,
		Succeeded:      result.Succeeded,
		Failed:         result.Failed,
		ElapsedSeconds: result.Elapsed.Seconds(),
	}
}

// FromJob converts a job record to its API representation.
func FromJob(job *jobs.Job) JobSummary {
	if job == nil {
		return JobSummary{}
	}
	dto := JobSummary{
		ID:           job.ID,
		Input:        job.Input,
		State:        string(job.State),
		ItemCount:    job.ItemCount,
		Succeeded:    job.Succeeded,
		Failed:       job.Failed,
		ArtifactPath: job.ArtifactPath,
		ErrorMessage: job.ErrorMessage,
	}
	if !job.CreatedAt.IsZero() {
		dto.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		dto.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromJobs converts a job collection, preserving order.
func FromJobs(records []*jobs.Job) []JobSummary {
	if len(records) == 0 {
		return nil
	}
	converted := make([]JobSummary, 0, len(records))
	for _, record := range records {
		converted = append(converted, FromJob(record))
	}
	return converted
}
