package batch

import (
	"fmt"
	"time"

	"scribe/internal/ocr"
)

// Status represents the lifecycle of a work item inside the scheduler.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInFlight  Status = "in_flight"
	StatusRetryWait Status = "retry_wait"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends an item's processing.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// WorkItem is one document scheduled for OCR processing. Items are immutable
// once created and shared by reference; identity is the ID, and two items are
// never merged or deduplicated.
type WorkItem struct {
	ID      string
	Source  ocr.Document
	Title   string
	Options ocr.Options
}

// ItemID derives the stable identifier for the item at the given input
// position.
func ItemID(index int) string {
	return fmt.Sprintf("doc-%03d", index+1)
}

// Attempt records a single try at invoking the backend for an item.
type Attempt struct {
	ItemID    string
	Number    int
	StartedAt time.Time
	// Err is nil when the attempt succeeded.
	Err *ocr.Error
}

// ItemResult is the terminal state of one work item.
type ItemResult struct {
	ID           string
	Source       ocr.Document
	Title        string
	Status       Status
	Payload      *ocr.Result
	Err          *ocr.Error
	AttemptsUsed int
	Attempts     []Attempt
}

// Succeeded reports whether the item reached a successful terminal state.
func (r ItemResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// BatchResult aggregates the terminal results of a batch. Items appear in the
// same order as the input work items.
type BatchResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Aggregate merges terminal item results into a batch result, preserving the
// order the results were handed in (the scheduler hands them over in input
// order). It performs no I/O.
func Aggregate(results []ItemResult) BatchResult {
	aggregated := BatchResult{Items: results}
	for _, result := range results {
		if result.Succeeded() {
			aggregated.Succeeded++
		} else {
			aggregated.Failed++
		}
	}
	return aggregated
}
