package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/applicant-screening/internal/domain"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeGroupTransfers groups and sums applicant transfers.
	JobTypeGroupTransfers JobType = "group_transfers"
	// JobTypeAggregatePayments aggregates weighted payment shares per currency.
	JobTypeAggregatePayments JobType = "aggregate_payments"
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

// BatchJob represents one asynchronous batch run of either pipeline. The job
// carries its input in memory and, once completed, its result. Jobs are as
// volatile as the rest of the system; nothing is persisted.
type BatchJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Type selects which pipeline the job runs.
	Type JobType `json:"type"`

	// TransferApplicants is the input for group_transfers jobs.
	TransferApplicants []domain.ApplicantTransfers `json:"transfer_applicants,omitempty"`

	// PaymentApplicants is the input for aggregate_payments jobs.
	PaymentApplicants []domain.ApplicantPayments `json:"payment_applicants,omitempty"`

	// TransferResults holds the output of a completed group_transfers job.
	TransferResults []domain.GroupedResult `json:"transfer_results,omitempty"`

	// PaymentTotals holds the output of a completed aggregate_payments job.
	PaymentTotals domain.CurrencyTotals `json:"payment_totals,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

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
func (j *BatchJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *BatchJob) GetType() JobType {
	return j.Type
}

// GetStatus implements the Job interface.
func (j *BatchJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction allows for different queue implementations.
type Publisher interface {
	// PublishBatch publishes a batch aggregation job.
	PublishBatch(ctx context.Context, job *BatchJob) error

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
	SaveJob(ctx context.Context, job *BatchJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*BatchJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*BatchJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Type filters jobs by job type.
	Type JobType

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

// Matches reports whether job passes the filter. Zero-valued criteria match
// everything.
func (f JobFilter) Matches(job *BatchJob) bool {
	if f.Type != "" && job.Type != f.Type {
		return false
	}
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	return true
}
