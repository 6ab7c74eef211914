package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Defaults applied to new jobs when the enqueuer does not specify them
const (
	// DefaultJobPriority is the mid-range priority assigned when none is given
	DefaultJobPriority = 50
	// DefaultJobMaxAttempts is the number of claims a job is allowed before
	// a retryable failure becomes terminal
	DefaultJobMaxAttempts = 3
	// MaxJobProgress is the progress value of a finished job
	MaxJobProgress = 100
)

// JobStatus represents the current state of a generation job
type JobStatus string

// Job status constants
const (
	// JobStatusUnknown represents an unknown or invalid job status
	JobStatusUnknown JobStatus = "unknown"
	// JobStatusPending indicates the job is waiting to be claimed by a worker
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing indicates a worker holds the lease and is executing the job
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates the job finished successfully
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job exhausted its attempts or hit a permanent error
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates the job was cancelled before a worker picked it up
	JobStatusCancelled JobStatus = "cancelled"
)

// JobType identifies which handler executes a job and which payload shape it carries
type JobType string

// Job type constants
const (
	// JobTypeImageGeneration renders new product imagery from a prompt
	JobTypeImageGeneration JobType = "image_generation"
	// JobTypeImageEdit applies an edit instruction to an existing asset
	JobTypeImageEdit JobType = "image_edit"
	// JobTypeVideoGeneration renders a turntable video from a source image
	JobTypeVideoGeneration JobType = "video_generation"
	// JobTypeSyncProduct imports a subset of products from a store connection
	JobTypeSyncProduct JobType = "sync_product"
	// JobTypeSyncAllProducts imports the full catalog of a store connection
	JobTypeSyncAllProducts JobType = "sync_all_products"
)

// Job represents one unit of queued generation or sync work. The row is the
// single source of truth for the job's lifecycle; workers coordinate purely
// through its status and lease columns.
type Job struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	TenantID    string          `json:"tenant_id" gorm:"not null;size:64;index:idx_jobs_tenant_created,priority:1"`
	FlowID      *string         `json:"flow_id,omitempty" gorm:"size:36"`
	Type        JobType         `json:"type" gorm:"not null;size:32;index"`
	Payload     json.RawMessage `json:"payload" gorm:"type:jsonb"`
	Status      JobStatus       `json:"status" gorm:"not null;size:16;index"`
	Progress    int             `json:"progress" gorm:"not null;default:0"`
	Result      json.RawMessage `json:"result,omitempty" gorm:"type:jsonb"`
	Error       string          `json:"error,omitempty" gorm:"type:text"`
	Attempts    int             `json:"attempts" gorm:"not null;default:0"`
	MaxAttempts int             `json:"max_attempts" gorm:"not null;default:3"`
	// No default tag on Priority: GORM drops zero-valued fields that carry
	// one, and zero is a valid most-urgent priority. Enqueue applies
	// DefaultJobPriority instead.
	Priority     int        `json:"priority" gorm:"not null;index:idx_jobs_claim,priority:1"`
	ScheduledFor time.Time  `json:"scheduled_for" gorm:"not null;index"`
	LockedBy     *string    `json:"locked_by,omitempty" gorm:"size:128"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index:idx_jobs_tenant_created,priority:2;index:idx_jobs_claim,priority:2"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// String returns the string representation of the job status
func (s JobStatus) String() string {
	return string(s)
}

// Terminal reports whether the status is one a job can never leave
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseJobStatus converts a string to a JobStatus type
func ParseJobStatus(str string) (JobStatus, error) {
	switch str {
	case string(JobStatusPending):
		return JobStatusPending, nil
	case string(JobStatusProcessing):
		return JobStatusProcessing, nil
	case string(JobStatusCompleted):
		return JobStatusCompleted, nil
	case string(JobStatusFailed):
		return JobStatusFailed, nil
	case string(JobStatusCancelled):
		return JobStatusCancelled, nil
	default:
		return JobStatusUnknown, fmt.Errorf("invalid job status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for JobStatus
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseJobStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// MarshalJSON implements json.Marshaler for JobStatus
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// String returns the string representation of the job type
func (t JobType) String() string {
	return string(t)
}

// ParseJobType converts a string to a JobType type
func ParseJobType(str string) (JobType, error) {
	switch str {
	case string(JobTypeImageGeneration):
		return JobTypeImageGeneration, nil
	case string(JobTypeImageEdit):
		return JobTypeImageEdit, nil
	case string(JobTypeVideoGeneration):
		return JobTypeVideoGeneration, nil
	case string(JobTypeSyncProduct):
		return JobTypeSyncProduct, nil
	case string(JobTypeSyncAllProducts):
		return JobTypeSyncAllProducts, nil
	default:
		return "", fmt.Errorf("invalid job type: %s", str)
	}
}

// Validate ensures that the job data is valid
func (j *Job) Validate() error {
	if j.TenantID == "" {
		return fmt.Errorf("job tenant id cannot be empty")
	}
	if _, err := ParseJobType(string(j.Type)); err != nil {
		return err
	}
	if j.MaxAttempts <= 0 {
		return fmt.Errorf("job max attempts must be positive")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new job
func (j *Job) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.MaxAttempts == 0 {
		j.MaxAttempts = DefaultJobMaxAttempts
	}
	if j.ScheduledFor.IsZero() {
		j.ScheduledFor = time.Now().UTC()
	}
	return j.Validate()
}
