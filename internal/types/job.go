package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shlior7/scenergy/internal/db/models"
)

// EnqueueRequest represents the request body for enqueueing a new job
type EnqueueRequest struct {
	Type         string          `json:"type"`                    // Job type tag, selects the payload variant
	Payload      json.RawMessage `json:"payload"`                 // Variant payload, validated against Type
	Priority     *int            `json:"priority,omitempty"`      // Lower dequeues first; defaults to mid-range
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"` // Earliest claim time; defaults to now
	FlowID       *string         `json:"flow_id,omitempty"`       // Optional back-reference to the requesting entity
	MaxAttempts  *int            `json:"max_attempts,omitempty"`  // Claim budget; defaults to 3
}

// Validate ensures the request is well formed and the payload matches the
// declared type. Returns the parsed job type on success.
func (r *EnqueueRequest) Validate() (models.JobType, error) {
	jobType, err := models.ParseJobType(r.Type)
	if err != nil {
		return "", err
	}
	if _, err := DecodeJobPayload(jobType, r.Payload); err != nil {
		return "", err
	}
	if r.MaxAttempts != nil && *r.MaxAttempts <= 0 {
		return "", fmt.Errorf("max_attempts must be greater than 0")
	}
	return jobType, nil
}

// EnqueueResponse represents the response after a job is enqueued
type EnqueueResponse struct {
	JobID string `json:"job_id"` // ID assigned to the new job
}

// JobResponse represents the queryable state of a job
type JobResponse struct {
	ID           string           `json:"id"`
	Type         models.JobType   `json:"type"`
	Status       models.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	Result       json.RawMessage  `json:"result,omitempty"`
	Error        string           `json:"error,omitempty"`
	Attempts     int              `json:"attempts"`
	MaxAttempts  int              `json:"max_attempts"`
	Priority     int              `json:"priority"`
	FlowID       *string          `json:"flow_id,omitempty"`
	ScheduledFor time.Time        `json:"scheduled_for"`
	CreatedAt    time.Time        `json:"created_at"`
	StartedAt    *time.Time       `json:"started_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// NewJobResponse builds the API view of a job row
func NewJobResponse(job *models.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		Type:         job.Type,
		Status:       job.Status,
		Progress:     job.Progress,
		Result:       job.Result,
		Error:        job.Error,
		Attempts:     job.Attempts,
		MaxAttempts:  job.MaxAttempts,
		Priority:     job.Priority,
		FlowID:       job.FlowID,
		ScheduledFor: job.ScheduledFor,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// ListJobsResponse represents the response from the list jobs endpoint
type ListJobsResponse struct {
	Jobs       []JobResponse      `json:"jobs"`       // List of jobs
	Pagination PaginationResponse `json:"pagination"` // Pagination information
}

// PaginationResponse represents pagination information for list endpoints
type PaginationResponse struct {
	Total  int64 `json:"total"`  // Total number of items available
	Limit  int   `json:"limit"`  // Maximum number of items per page
	Offset int   `json:"offset"` // Number of items skipped
}

// AssetRef points at a produced asset
type AssetRef struct {
	ID   string           `json:"id"`
	URL  string           `json:"url"`
	Kind models.AssetKind `json:"kind"`
}

// JobResult is the success outcome recorded on a completed job
type JobResult struct {
	Assets      []AssetRef `json:"assets,omitempty"`       // Produced assets, generation jobs
	Asset       *AssetRef  `json:"asset,omitempty"`        // Single produced asset, edit/preview jobs
	SyncedCount int        `json:"synced_count,omitempty"` // Imported products, sync jobs
	DurationMS  int64      `json:"duration_ms,omitempty"`  // Handler execution time
}

// Marshal serializes the result for storage on the job row
func (r *JobResult) Marshal() (json.RawMessage, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job result: %w", err)
	}
	return raw, nil
}
