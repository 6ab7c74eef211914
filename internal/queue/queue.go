// Package queue implements the generation job queue: a relationally-backed,
// crash-tolerant work queue executing expensive AI operations across a pool
// of worker processes. Jobs run at least once; the visible job state is
// effectively-once, enforced by row-level claim locking and lease-guarded
// finalization. Handlers must therefore tolerate duplicate execution, which
// the asset layer absorbs with deterministic overwrite-on-conflict ids.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/logger"
	"github.com/shlior7/scenergy/internal/types"
)

// Waker publishes a hint that new work may be available. Implementations
// are fire-and-forget; workers poll regardless, so a lost wake costs
// latency only.
type Waker interface {
	Wake(ctx context.Context, jobID string)
}

// EnqueueParams describes a job to insert
type EnqueueParams struct {
	TenantID     string
	Type         models.JobType
	Payload      json.RawMessage
	Priority     *int
	ScheduledFor *time.Time
	FlowID       *string
	MaxAttempts  *int
}

// Queue accepts jobs from request-handling code and answers status queries.
// The repository handle is injected; the queue owns no connection state.
type Queue struct {
	repo  *repos.JobRepository
	waker Waker
}

// New creates a queue over the given repository. waker may be nil when no
// notification transport is available; workers then rely on polling alone.
func New(repo *repos.JobRepository, waker Waker) *Queue {
	return &Queue{
		repo:  repo,
		waker: waker,
	}
}

// Enqueue validates the payload against its declared type and inserts the
// job in pending state, returning the assigned job id. Malformed payloads
// fail here, before any row is written.
func (q *Queue) Enqueue(ctx context.Context, params EnqueueParams) (string, error) {
	if params.TenantID == "" {
		return "", fmt.Errorf("tenant id is required")
	}
	if _, err := types.DecodeJobPayload(params.Type, params.Payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	job := &models.Job{
		TenantID: params.TenantID,
		FlowID:   params.FlowID,
		Type:     params.Type,
		Payload:  params.Payload,
		Status:   models.JobStatusPending,
		Priority: models.DefaultJobPriority,
	}
	if params.Priority != nil {
		job.Priority = *params.Priority
	}
	if params.MaxAttempts != nil {
		if *params.MaxAttempts <= 0 {
			return "", fmt.Errorf("max attempts must be positive")
		}
		job.MaxAttempts = *params.MaxAttempts
	}
	if params.ScheduledFor != nil {
		job.ScheduledFor = params.ScheduledFor.UTC()
	}

	if err := q.repo.Create(ctx, job); err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	if q.waker != nil {
		q.waker.Wake(ctx, job.ID)
	}

	logger.InfoWithFields("Job enqueued", map[string]interface{}{
		"job_id":    job.ID,
		"tenant_id": job.TenantID,
		"type":      job.Type.String(),
		"priority":  job.Priority,
	})
	return job.ID, nil
}

// Get returns the full job row for a tenant
func (q *Queue) Get(ctx context.Context, tenantID, jobID string) (*models.Job, error) {
	return q.repo.GetForTenant(ctx, tenantID, jobID)
}

// GetStatus returns the queryable view of a job: status, progress, and the
// terminal result or error once one is set
func (q *Queue) GetStatus(ctx context.Context, tenantID, jobID string) (*types.JobResponse, error) {
	job, err := q.repo.GetForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	resp := types.NewJobResponse(job)
	return &resp, nil
}

// ListJobs returns a page of the tenant's jobs plus the total count for the
// applied filters
func (q *Queue) ListJobs(ctx context.Context, tenantID string, opts *models.ListOptions) ([]types.JobResponse, int64, error) {
	jobs, total, err := q.repo.List(ctx, tenantID, opts)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]types.JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, types.NewJobResponse(&jobs[i]))
	}
	return responses, total, nil
}

// Cancel voids a job that has not started. Cancellation is guaranteed only
// while the job is pending; a job already claimed keeps running, at most
// interrupted cooperatively through its handler context, and side effects
// already underway are not undone. Callers get ErrJobNotCancellable once
// the job has left pending.
func (q *Queue) Cancel(ctx context.Context, tenantID, jobID string) error {
	if err := q.repo.Cancel(ctx, tenantID, jobID); err != nil {
		return err
	}
	logger.InfoWithFields("Job cancelled", map[string]interface{}{
		"job_id":    jobID,
		"tenant_id": tenantID,
	})
	return nil
}
