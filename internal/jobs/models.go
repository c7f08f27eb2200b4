package jobs

import "time"

// State represents the lifecycle of a submitted batch job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the job has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job represents one asynchronous batch submission.
type Job struct {
	ID           string
	Input        string
	State        State
	ItemCount    int
	Succeeded    int
	Failed       int
	ArtifactPath string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
