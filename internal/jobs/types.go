package jobs

import (
	"context"
	"errors"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeImportGCS imports a spreadsheet object from GCS.
	JobTypeImportGCS JobType = "import_gcs"
	// JobTypeImportSheet imports a Google Sheets range.
	JobTypeImportSheet JobType = "import_sheet"
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

// ImportJob represents an asynchronous spreadsheet import.
type ImportJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Type selects the source.
	Type JobType `json:"type"`

	// GCSURI is set for JobTypeImportGCS.
	GCSURI string `json:"gcs_uri,omitempty"`

	// SpreadsheetID and Range are set for JobTypeImportSheet.
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	Range         string `json:"range,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// RunID identifies the import run once the job completed.
	RunID string `json:"run_id,omitempty"`

	// SourceRowCount and RecordCount summarize a completed import.
	SourceRowCount int `json:"source_row_count,omitempty"`
	RecordCount    int `json:"record_count,omitempty"`

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

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishImport publishes an import job.
	PublishImport(ctx context.Context, job *ImportJob) error

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

// JobHandler is a function that processes a job. It may fill in the result
// fields of job. A returned error is retried unless it is Permanent.
type JobHandler func(ctx context.Context, job *ImportJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ImportJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ImportJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ImportJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Type filters jobs by source type.
	Type JobType

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}

// ErrJobNotFound is returned by JobStore lookups for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, e.g. a spreadsheet that will
// never parse.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
