// Package jobs defines the asynchronous work handed to the report
// worker: extract transactions from an uploaded document and run the
// derivation pipeline over them. Queue implementations are pluggable;
// the in-memory one lives in the inmemory subpackage.
package jobs

import (
	"context"
	"time"

	"github.com/mizanhq/mizan/internal/schema"
)

// JobType distinguishes the kinds of work the worker understands.
type JobType string

const (
	// JobTypeGenerateReport extracts a document's transactions and
	// produces a full financial report.
	JobTypeGenerateReport JobType = "generate_report"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// GenerateReportJob asks the worker to turn one uploaded document into a
// financial report. Payload carries the wire-schema job fields; ReportID
// is filled in once the report has been generated and persisted.
type GenerateReportJob struct {
	schema.Job

	// ReportID identifies the persisted report once the job completed.
	ReportID string `json:"reportId,omitempty"`

	// Currency overrides the report currency; empty means EUR.
	Currency string `json:"currency,omitempty"`

	Status JobStatus `json:"status"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Error carries failure details for failed or retrying jobs.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retryCount"`
	MaxRetries int `json:"maxRetries"`
}

// Job is the generic interface all job types satisfy.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *GenerateReportJob) GetID() string        { return j.JobID }
func (j *GenerateReportJob) GetType() JobType     { return JobTypeGenerateReport }
func (j *GenerateReportJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. Implementations may be in-memory or backed
// by an external queue.
type Publisher interface {
	PublishGenerateReport(ctx context.Context, job *GenerateReportJob) error
	Close() error
}

// Consumer drains the queue, invoking the handler per job.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to finish.
	Stop(ctx context.Context) error
}

// JobHandler processes one job; a returned error triggers a retry until
// the job's retry budget is exhausted.
type JobHandler func(ctx context.Context, job Job) error

// JobFilter narrows a job listing.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}

// JobStore tracks job state so callers can poll for completion.
type JobStore interface {
	SaveJob(ctx context.Context, job *GenerateReportJob) error
	GetJob(ctx context.Context, jobID string) (*GenerateReportJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*GenerateReportJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}
