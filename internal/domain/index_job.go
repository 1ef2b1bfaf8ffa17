package domain

import "time"

// IndexJobStatus tracks the lifecycle of an index build job.
type IndexJobStatus string

const (
	IndexJobStatusPending    IndexJobStatus = "pending"
	IndexJobStatusProcessing IndexJobStatus = "processing"
	IndexJobStatusCompleted  IndexJobStatus = "completed"
	IndexJobStatusFailed     IndexJobStatus = "failed"
)

// IndexJob asks the background worker to embed and activate one staged
// generation of a domain's chunks.
type IndexJob struct {
	ID         string
	Domain     DomainKey
	Generation int64
	Status     IndexJobStatus
	Retries    int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
