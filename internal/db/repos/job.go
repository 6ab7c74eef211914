package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shlior7/scenergy/internal/db/models"
)

// ErrJobNotFound is returned when a job id does not exist or is not visible
// to the requesting tenant
var ErrJobNotFound = errors.New("job not found")

// ErrJobNotCancellable is returned when cancellation is requested for a job
// that has already left the pending state
var ErrJobNotCancellable = errors.New("job is not cancellable")

// claimCandidates bounds how many rows a single claim call will try when
// guarded updates lose races to concurrent claimers
const claimCandidates = 3

// JobRepository handles database operations for jobs. Every lease-mutating
// operation (claim, heartbeat, finalize, reclaim) lives here so the locking
// strategy can change without touching the worker or service code.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository instance
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job in pending state
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by ID from the database
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// GetForTenant retrieves a job by ID scoped to its owning tenant
func (r *JobRepository) GetForTenant(ctx context.Context, tenantID, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// filtered builds a fresh tenant-scoped query with the listing filters applied
func (r *JobRepository) filtered(ctx context.Context, tenantID string, opts *models.ListOptions) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Job{}).Where("tenant_id = ?", tenantID)
	if opts != nil {
		if opts.Status != nil {
			query = query.Where("status = ?", *opts.Status)
		}
		if opts.Type != nil {
			query = query.Where("type = ?", *opts.Type)
		}
	}
	return query
}

// List retrieves a tenant's jobs newest-first with pagination, returning the
// total row count for the applied filters
func (r *JobRepository) List(ctx context.Context, tenantID string, opts *models.ListOptions) ([]models.Job, int64, error) {
	var total int64
	if err := r.filtered(ctx, tenantID, opts).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	listOpts := models.ListOptions{}
	if opts != nil {
		listOpts = *opts
	}
	listOpts.Normalize()

	var jobs []models.Job
	err := r.filtered(ctx, tenantID, opts).
		Order("created_at DESC").
		Limit(listOpts.Limit).
		Offset(listOpts.Offset).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// Claim atomically selects the next eligible pending job and transitions it
// to processing under workerID's lease. Returns (nil, nil) when no eligible
// job exists; it never blocks waiting for one.
//
// Eligible rows are pending with scheduled_for in the past, ordered by
// ascending priority then creation time. On postgres concurrent claimers
// skip rows locked by in-flight claim transactions instead of queueing
// behind them; everywhere the guarded update re-checks the row is still
// pending and moves to the next candidate if it lost the race.
func (r *JobRepository) Claim(ctx context.Context, workerID string) (*models.Job, error) {
	for i := 0; i < claimCandidates; i++ {
		job, claimed, err := r.claimNext(ctx, workerID)
		if err != nil {
			return nil, err
		}
		if claimed {
			return job, nil
		}
		if job == nil {
			return nil, nil
		}
	}
	return nil, nil
}

func (r *JobRepository) claimNext(ctx context.Context, workerID string) (job *models.Job, claimed bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidate models.Job
		query := tx.
			Where("status = ? AND scheduled_for <= ?", models.JobStatusPending, time.Now().UTC()).
			Order("priority ASC, created_at ASC")
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := query.First(&candidate).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":    models.JobStatusProcessing,
			"locked_by": workerID,
			"locked_at": now,
			"attempts":  gorm.Expr("attempts + 1"),
		}
		if candidate.StartedAt == nil {
			updates["started_at"] = now
		}

		res := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", candidate.ID, models.JobStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		job = &candidate
		if res.RowsAffected == 0 {
			// Row moved out of eligibility between select and update; the
			// caller retries against the next candidate.
			return nil
		}

		candidate.Status = models.JobStatusProcessing
		candidate.LockedBy = &workerID
		candidate.LockedAt = &now
		candidate.Attempts++
		if candidate.StartedAt == nil {
			candidate.StartedAt = &now
		}
		claimed = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim job: %w", err)
	}
	return job, claimed, nil
}

// leaseGuard scopes an update to a job still processing under workerID's
// lease. An update through this guard affecting zero rows means the lease
// was lost, and the caller's outcome must be discarded.
func (r *JobRepository) leaseGuard(ctx context.Context, id, workerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ? AND locked_by = ?", id, models.JobStatusProcessing, workerID)
}

// Heartbeat extends workerID's lease on a processing job. Returns false if
// the lease is no longer held.
func (r *JobRepository) Heartbeat(ctx context.Context, id, workerID string) (bool, error) {
	res := r.leaseGuard(ctx, id, workerID).Update("locked_at", time.Now().UTC())
	if res.Error != nil {
		return false, fmt.Errorf("failed to heartbeat job: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateProgress raises the progress of a processing job. Progress never
// moves backwards; stale or out-of-order reports are dropped silently.
func (r *JobRepository) UpdateProgress(ctx context.Context, id, workerID string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > models.MaxJobProgress {
		progress = models.MaxJobProgress
	}
	res := r.leaseGuard(ctx, id, workerID).
		Where("progress < ?", progress).
		Update("progress", progress)
	if res.Error != nil {
		return fmt.Errorf("failed to update job progress: %w", res.Error)
	}
	return nil
}

// Complete finalizes a successful job: terminal completed, full progress,
// result recorded, lease cleared. Returns false when the caller no longer
// holds the lease, in which case nothing was written.
func (r *JobRepository) Complete(ctx context.Context, id, workerID string, result json.RawMessage) (bool, error) {
	res := r.leaseGuard(ctx, id, workerID).Updates(map[string]interface{}{
		"status":       models.JobStatusCompleted,
		"progress":     models.MaxJobProgress,
		"result":       result,
		"error":        "",
		"locked_by":    nil,
		"locked_at":    nil,
		"completed_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to complete job: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Requeue returns a failed-but-retryable job to pending with a deferred
// eligibility time, recording the error for visibility. Attempts are not
// touched here; they increment on claim. Returns false when the caller no
// longer holds the lease.
func (r *JobRepository) Requeue(ctx context.Context, id, workerID, errMsg string, scheduledFor time.Time) (bool, error) {
	res := r.leaseGuard(ctx, id, workerID).Updates(map[string]interface{}{
		"status":        models.JobStatusPending,
		"error":         errMsg,
		"progress":      0,
		"scheduled_for": scheduledFor,
		"locked_by":     nil,
		"locked_at":     nil,
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to requeue job: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Fail finalizes a job as terminally failed with its last error message.
// Returns false when the caller no longer holds the lease.
func (r *JobRepository) Fail(ctx context.Context, id, workerID, errMsg string) (bool, error) {
	res := r.leaseGuard(ctx, id, workerID).Updates(map[string]interface{}{
		"status":       models.JobStatusFailed,
		"error":        errMsg,
		"locked_by":    nil,
		"locked_at":    nil,
		"completed_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark job failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReclaimExpired returns processing jobs whose lease expired before the
// cutoff back to pending so another worker can claim them. Attempts and
// scheduled_for are left untouched: a reclaim is crash recovery, not a
// failed execution. The expiry check runs inside the update itself so a
// worker that heartbeats at the last moment keeps its lease.
func (r *JobRepository) ReclaimExpired(ctx context.Context, leaseTimeout time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-leaseTimeout)
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND locked_at < ?", models.JobStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":    models.JobStatusPending,
			"locked_by": nil,
			"locked_at": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reclaim expired jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Cancel voids a pending job. Jobs that have already been claimed cannot be
// cancelled through this path; a processing handler may stop cooperatively
// but its transition is owned by the worker holding the lease.
func (r *JobRepository) Cancel(ctx context.Context, tenantID, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, models.JobStatusPending).
		Updates(map[string]interface{}{
			"status":       models.JobStatusCancelled,
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetForTenant(ctx, tenantID, id); err != nil {
			return err
		}
		return ErrJobNotCancellable
	}
	return nil
}
