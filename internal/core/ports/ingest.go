package ports

import (
	"context"
	"time"
)

// Ingestion job states, in pipeline order.
const (
	JobQueued             = "queued"
	JobCleaning           = "cleaning"
	JobPersistingMetadata = "persisting_metadata"
	JobParsing            = "parsing"
	JobPersistingEntries  = "persisting_entries"
	JobCompleted          = "completed"
	JobFailed             = "failed"
)

// IngestJob is the unit of background work created by an accepted upload.
type IngestJob struct {
	ID          string
	Name        string
	Description string
	DatasetType string
	FilePath    string
	Filename    string
	UploadedBy  string
}

// JobStatus is the externally observable state of an ingestion job.
type JobStatus struct {
	JobID        string    `json:"job_id"`
	State        string    `json:"state"`
	DatasetID    string    `json:"dataset_id,omitempty"`
	RowsInserted int       `json:"rows_inserted"`
	RowsFailed   int       `json:"rows_failed"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobStore tracks ingestion job status so the accept-then-process contract
// is observable by clients.
type JobStore interface {
	Set(ctx context.Context, st JobStatus) error
	// Get returns domain.ErrJobNotFound for unknown or expired job IDs.
	Get(ctx context.Context, jobID string) (*JobStatus, error)
}

// IngestService runs the upload pipeline for one job: clean, persist
// metadata, parse, persist entries.
type IngestService interface {
	Process(ctx context.Context, job IngestJob) error
}
