package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shlior7/scenergy/internal/db/models"
	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/logger"
	"github.com/shlior7/scenergy/internal/types"
)

// Worker tuning defaults
const (
	// DefaultPollInterval is the fallback claim cadence when no wake
	// notification arrives
	DefaultPollInterval = 5 * time.Second
	// DefaultHeartbeatInterval is how often a worker extends the lease of a
	// job it is executing
	DefaultHeartbeatInterval = 15 * time.Second
	// DefaultHandlerTimeout bounds a single handler execution
	DefaultHandlerTimeout = 10 * time.Minute
	// DefaultConcurrency is how many claimed jobs one worker executes at once
	DefaultConcurrency = 4

	// recordTimeout bounds outcome writes, which run on a detached context
	// so a shutdown mid-handler still records the failure promptly
	recordTimeout = 30 * time.Second
)

// WorkerOptions tunes a Worker. Zero values fall back to the defaults above.
type WorkerOptions struct {
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	HandlerTimeout    time.Duration
	Concurrency       int
	Backoff           Backoff
}

func (o WorkerOptions) withDefaults() WorkerOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = DefaultHandlerTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Worker drains the queue in a loop of wait, claim, dispatch, record.
// Claimed jobs execute on a bounded goroutine pool; each execution
// heartbeats its lease, runs under the handler timeout, and records its
// outcome through the lease-guarded repository so a worker that lost its
// lease cannot overwrite another's result.
type Worker struct {
	id       string
	repo     *repos.JobRepository
	registry *Registry
	wake     <-chan struct{}
	opts     WorkerOptions
	slots    chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a worker claiming under a fresh hostname-based identity.
// wake may be nil; the worker then relies on its poll interval alone.
func NewWorker(repo *repos.JobRepository, registry *Registry, wake <-chan struct{}, opts WorkerOptions) *Worker {
	opts = opts.withDefaults()
	return &Worker{
		id:       workerIdentity(),
		repo:     repo,
		registry: registry,
		wake:     wake,
		opts:     opts,
		slots:    make(chan struct{}, opts.Concurrency),
	}
}

func workerIdentity() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}

// ID returns the identity this worker claims leases under
func (w *Worker) ID() string {
	return w.id
}

// Run processes jobs until ctx is cancelled, then waits for in-flight
// handlers to record their outcomes
func (w *Worker) Run(ctx context.Context) {
	logger.InfoWithFields("Worker started", map[string]interface{}{
		"worker_id":   w.id,
		"concurrency": w.opts.Concurrency,
	})

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		w.drain(ctx)

		select {
		case <-ctx.Done():
			logger.Infof("Worker %s received shutdown signal, stopping...", w.id)
			w.wg.Wait()
			logger.Infof("Worker %s stopped", w.id)
			return
		case <-ticker.C:
		case <-w.wake:
		}
	}
}

// drain claims and dispatches jobs until the queue is empty, an infra error
// occurs, or ctx is cancelled. A concurrency slot is taken before each
// claim so a claimed job never sits waiting for an execution goroutine.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case w.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}

		job, err := w.repo.Claim(ctx, w.id)
		if err != nil {
			<-w.slots
			if ctx.Err() == nil {
				// Store unreachable; nothing committed. Sit out until the
				// next tick instead of hammering the database.
				logger.Errorf("Worker %s failed to claim job: %v", w.id, err)
			}
			return
		}
		if job == nil {
			<-w.slots
			return
		}

		w.wg.Add(1)
		go func(job *models.Job) {
			defer w.wg.Done()
			defer func() { <-w.slots }()
			w.process(ctx, job)
		}(job)
	}
}

// process executes one claimed job and records its outcome
func (w *Worker) process(ctx context.Context, job *models.Job) {
	logger.InfoWithFields("Job claimed", map[string]interface{}{
		"worker_id": w.id,
		"job_id":    job.ID,
		"type":      job.Type.String(),
		"attempt":   job.Attempts,
	})

	hctx, cancel := context.WithTimeout(ctx, w.opts.HandlerTimeout)
	defer cancel()

	stopHeartbeat := w.startHeartbeat(hctx, job.ID, cancel)
	defer stopHeartbeat()

	start := time.Now()
	result, err := w.execute(hctx, job)
	elapsed := time.Since(start)

	if err == nil {
		w.recordSuccess(job, result, elapsed)
		return
	}
	if hctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("handler exceeded %s execution limit", w.opts.HandlerTimeout)
	}
	w.recordFailure(job, err)
}

// execute routes the job to its handler. Missing handlers and payloads that
// no longer decode are permanent failures; handler panics are contained and
// retried like any transient fault.
func (w *Worker) execute(ctx context.Context, job *models.Job) (result json.RawMessage, err error) {
	handler, ok := w.registry.Get(job.Type)
	if !ok {
		return nil, Permanent(fmt.Errorf("no handler registered for job type %s", job.Type))
	}

	payload, err := types.DecodeJobPayload(job.Type, job.Payload)
	if err != nil {
		// Payloads are validated at enqueue; failing here means the stored
		// row no longer matches its declared type.
		return nil, Permanent(fmt.Errorf("stored payload invalid: %w", err))
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler.Execute(ctx, &JobContext{
		Job:      job,
		payload:  payload,
		repo:     w.repo,
		workerID: w.id,
	})
}

// startHeartbeat extends the job's lease on an interval while the handler
// runs. If the lease turns out to be lost (reclaimed after a stall), the
// handler's context is cancelled to stop work another worker will redo.
func (w *Worker) startHeartbeat(ctx context.Context, jobID string, lost context.CancelFunc) (stop func()) {
	hbCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				held, err := w.repo.Heartbeat(hbCtx, jobID, w.id)
				if err != nil {
					logger.Debugf("Worker %s heartbeat failed for job %s: %v", w.id, jobID, err)
					continue
				}
				if !held {
					logger.WarnWithFields("Lease lost mid-execution, interrupting handler", map[string]interface{}{
						"worker_id": w.id,
						"job_id":    jobID,
					})
					lost()
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// recordSuccess finalizes a completed job. Runs on a detached context so
// shutdown does not leave a finished job marked processing.
func (w *Worker) recordSuccess(job *models.Job, result json.RawMessage, elapsed time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	held, err := w.repo.Complete(ctx, job.ID, w.id, result)
	if err != nil {
		logger.Errorf("Worker %s failed to record completion of job %s: %v", w.id, job.ID, err)
		return
	}
	if !held {
		logger.WarnWithFields("Discarded late completion, lease no longer held", map[string]interface{}{
			"worker_id": w.id,
			"job_id":    job.ID,
		})
		return
	}
	logger.InfoWithFields("Job completed", map[string]interface{}{
		"worker_id":   w.id,
		"job_id":      job.ID,
		"type":        job.Type.String(),
		"attempt":     job.Attempts,
		"duration_ms": elapsed.Milliseconds(),
	})
}

// recordFailure decides between retry and terminal failure for a handler
// error. Retryable failures below the attempt budget requeue with backoff;
// everything else is final.
func (w *Worker) recordFailure(job *models.Job, handlerErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	msg := handlerErr.Error()

	if IsPermanent(handlerErr) || job.Attempts >= job.MaxAttempts {
		held, err := w.repo.Fail(ctx, job.ID, w.id, msg)
		if err != nil {
			logger.Errorf("Worker %s failed to record failure of job %s: %v", w.id, job.ID, err)
			return
		}
		if !held {
			logger.WarnWithFields("Discarded late failure, lease no longer held", map[string]interface{}{
				"worker_id": w.id,
				"job_id":    job.ID,
			})
			return
		}
		logger.ErrorWithFields("Job failed", map[string]interface{}{
			"worker_id": w.id,
			"job_id":    job.ID,
			"type":      job.Type.String(),
			"attempt":   job.Attempts,
			"permanent": IsPermanent(handlerErr),
			"error":     msg,
		})
		return
	}

	delay := w.opts.Backoff.Delay(job.Attempts)
	held, err := w.repo.Requeue(ctx, job.ID, w.id, msg, time.Now().UTC().Add(delay))
	if err != nil {
		logger.Errorf("Worker %s failed to requeue job %s: %v", w.id, job.ID, err)
		return
	}
	if !held {
		logger.WarnWithFields("Discarded late retry, lease no longer held", map[string]interface{}{
			"worker_id": w.id,
			"job_id":    job.ID,
		})
		return
	}
	logger.WarnWithFields("Job requeued after retryable failure", map[string]interface{}{
		"worker_id": w.id,
		"job_id":    job.ID,
		"type":      job.Type.String(),
		"attempt":   job.Attempts,
		"retry_in":  delay.String(),
		"error":     msg,
	})
}
