package jobs

import (
	"context"
	"time"

	"github.com/tigranv/moneta/internal/store"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeBulkDelete represents an asynchronous bulk transaction delete.
	JobTypeBulkDelete JobType = "bulk_delete"
)

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

// BulkDeleteJob deletes a batch of transactions from the hosted store.
// Deletes run sequentially and are never rolled back; the job records
// which ids succeeded and which failed so the caller can inspect the
// outcome after the fact.
type BulkDeleteJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// TransactionIDs are the ids to delete, in order.
	TransactionIDs []string `json:"transaction_ids"`

	// Policy controls whether the job stops on the first failed delete
	// or keeps going through the remaining ids.
	Policy store.BulkPolicy `json:"policy"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Deleted collects ids removed so far across attempts.
	Deleted []string `json:"deleted,omitempty"`

	// Failures collects per-id failure details from the last attempt.
	Failures []store.BulkFailure `json:"failures,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *BulkDeleteJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *BulkDeleteJob) GetType() JobType {
	return JobTypeBulkDelete
}

// GetStatus implements the Job interface.
func (j *BulkDeleteJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishBulkDelete publishes a bulk transaction delete job.
	PublishBulkDelete(ctx context.Context, job *BulkDeleteJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *BulkDeleteJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*BulkDeleteJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*BulkDeleteJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
