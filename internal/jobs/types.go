// Package jobs runs advisory requests in the background so HTTP callers can
// poll for the result.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrJobNotFound is returned by a JobStore for an unknown id.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobInFlight is returned when a job of the same type is still active.
	ErrJobInFlight = errors.New("job of this type already in flight")
	// ErrQueueClosed is returned after Stop.
	ErrQueueClosed = errors.New("queue is closed")
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeFinances asks the advisor for a financial analysis.
	JobTypeAnalyzeFinances JobType = "analyze_finances"
	// JobTypeExtractReceipt reads a receipt image into a transaction draft.
	JobTypeExtractReceipt JobType = "extract_receipt"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	return t == JobTypeAnalyzeFinances || t == JobTypeExtractReceipt
}

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// Final reports whether no more work will happen for a job in status s.
func (s JobStatus) Final() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// AdvisoryJob is one queued call to the advisory service.
type AdvisoryJob struct {
	JobID string  `json:"job_id"`
	Type  JobType `json:"type"`

	// SavingsGoal is the monthly goal in UYU for analysis jobs.
	SavingsGoal float64 `json:"savings_goal,omitempty"`

	// Image holds the receipt bytes for extraction jobs. Stores drop it.
	Image []byte `json:"-"`

	// Result is the JSON-encoded outcome once the job completed.
	Result json.RawMessage `json:"result,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error is the user-facing message of the last failure.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *AdvisoryJob) GetID() string        { return j.JobID }
func (j *AdvisoryJob) GetType() JobType     { return j.Type }
func (j *AdvisoryJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs.
type Publisher interface {
	// Publish enqueues a job. It fails with ErrJobInFlight when a job of the
	// same type is still pending, running or retrying.
	Publish(ctx context.Context, job *AdvisoryJob) error

	Close() error
}

// Consumer runs queued jobs.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job and fills job.Result on success. A returned
// error marks the job failed or schedules a retry.
type JobHandler func(ctx context.Context, job *AdvisoryJob) error

// JobStore tracks job state for polling.
type JobStore interface {
	SaveJob(ctx context.Context, job *AdvisoryJob) error
	GetJob(ctx context.Context, jobID string) (*AdvisoryJob, error)
	// ListJobs returns matching jobs, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AdvisoryJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Type   JobType
	Status JobStatus
	Limit  int
	Offset int
}
