package api

import "scribe/internal/ocr"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Version is reported by the health endpoint and the CLI version command.
const Version = "0.1.0"

// MaxBatchURLs bounds a single URL batch submission.
const MaxBatchURLs = 10

// ItemError describes a terminal item failure in a transport-friendly format.
type ItemError struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Retryable  bool   `json:"retryable"`
}

// BatchItem describes one processed document. Result carries the full OCR
// payload and is omitted for failed items.
type BatchItem struct {
	ID           string      `json:"id"`
	Source       string      `json:"source"`
	Title        string      `json:"title"`
	Status       string      `json:"status"`
	AttemptsUsed int         `json:"attemptsUsed"`
	Pages        int         `json:"pages,omitempty"`
	Result       *ocr.Result `json:"result,omitempty"`
	Error        *ItemError  `json:"error,omitempty"`
}

// BatchResponse aggregates a finished batch. Items appear in input order.
type BatchResponse struct {
	Input          string      `json:"input"`
	Items          []BatchItem `json:"items"`
	Succeeded      int         `json:"succeeded"`
	Failed         int         `json:"failed"`
	ElapsedSeconds float64     `json:"elapsedSeconds"`
	ArtifactPath   string      `json:"artifactPath,omitempty"`
	CompletedAt    string      `json:"completedAt,omitempty"`
}

// ProcessRequest submits a single remote document for synchronous processing.
type ProcessRequest struct {
	URL           string `json:"url"`
	IncludeImages *bool  `json:"includeImages,omitempty"`
}

// BatchRequest submits up to MaxBatchURLs remote documents in one call.
type BatchRequest struct {
	URLs          []string `json:"urls"`
	IncludeImages *bool    `json:"includeImages,omitempty"`
}

// JobRequest submits an asynchronous batch over a server-local input path or a
// document URL.
type JobRequest struct {
	Input         string `json:"input"`
	IncludeImages *bool  `json:"includeImages,omitempty"`
}

// JobSummary describes an asynchronous batch job.
type JobSummary struct {
	ID           string `json:"id"`
	Input        string `json:"input"`
	State        string `json:"state"`
	ItemCount    int    `json:"itemCount"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	ArtifactPath string `json:"artifactPath,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// JobResponse wraps a single job for API responses.
type JobResponse struct {
	Job JobSummary `json:"job"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
