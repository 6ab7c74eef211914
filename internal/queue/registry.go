package queue

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/logger"
	"github.com/shlior7/scenergy/internal/types"
)

// Handler executes one claimed job. The queue core never interprets payload
// semantics; it routes by job type and records the outcome. A nil error with
// a result marshals onto the job as its success payload. Errors are retried
// with backoff unless wrapped with Permanent.
type Handler interface {
	Execute(ctx context.Context, job *JobContext) (json.RawMessage, error)
}

// HandlerFunc adapts a plain function to the Handler interface
type HandlerFunc func(ctx context.Context, job *JobContext) (json.RawMessage, error)

// Execute implements Handler
func (f HandlerFunc) Execute(ctx context.Context, job *JobContext) (json.RawMessage, error) {
	return f(ctx, job)
}

// JobContext is the handler-facing view of a claimed job: the row snapshot,
// its decoded payload, and a channel back to the queue for progress.
type JobContext struct {
	Job     *models.Job
	payload types.JobPayload

	repo     *repos.JobRepository
	workerID string
}

// NewJobContext builds a detached job context for invoking a handler outside
// a worker. Progress reports are dropped since no lease backs them.
func NewJobContext(job *models.Job, payload types.JobPayload) *JobContext {
	return &JobContext{Job: job, payload: payload}
}

// Payload returns the decoded payload variant for the job's type. Handlers
// assert it to their concrete payload struct.
func (c *JobContext) Payload() types.JobPayload {
	return c.payload
}

// TenantID returns the owning tenant of the job
func (c *JobContext) TenantID() string {
	return c.Job.TenantID
}

// ReportProgress raises the job's visible progress to the given percentage.
// Best-effort: reports after the lease was lost are dropped, and progress
// never moves backwards.
func (c *JobContext) ReportProgress(ctx context.Context, progress int) {
	if c.repo == nil {
		return
	}
	if err := c.repo.UpdateProgress(ctx, c.Job.ID, c.workerID, progress); err != nil {
		logger.Debugf("Failed to report progress for job %s: %v", c.Job.ID, err)
	}
}

// Cancelled reports whether this execution's outcome is already unwanted:
// the row was cancelled after a lease reclaim, or the lease moved to another
// worker. Each call re-reads the row, so handlers should consult it between
// expensive phases rather than in tight loops. Detached contexts always
// report false.
func (c *JobContext) Cancelled(ctx context.Context) bool {
	if c.repo == nil {
		return false
	}
	job, err := c.repo.GetByID(ctx, c.Job.ID)
	if err != nil {
		return false
	}
	if job.Status == models.JobStatusCancelled {
		return true
	}
	return job.Status != models.JobStatusProcessing || job.LockedBy == nil || *job.LockedBy != c.workerID
}

// Registry maps each job type to the handler that executes it
type Registry struct {
	mu       sync.RWMutex
	handlers map[models.JobType]Handler
}

// NewRegistry creates an empty handler registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[models.JobType]Handler),
	}
}

// Register binds a handler to a job type, replacing any previous binding
func (r *Registry) Register(jobType models.JobType, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

// Get returns the handler bound to a job type
func (r *Registry) Get(jobType models.JobType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[jobType]
	return handler, ok
}
