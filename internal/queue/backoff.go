package queue

import (
	"math"
	"math/rand"
	"time"
)

// Default backoff tuning
const (
	// DefaultBackoffBase is the deferral after the first failed attempt
	DefaultBackoffBase = 30 * time.Second
	// DefaultBackoffMax caps the deferral however many attempts have failed
	DefaultBackoffMax = 1 * time.Hour
)

// Backoff computes how long a retried job is deferred before it becomes
// eligible again. The delay doubles with each attempt and carries additive
// jitter in [1.0x, 1.5x) so jobs failing against the same provider outage
// do not requeue in lockstep. Jitter never shrinks the exponential step, so
// successive deferrals are non-decreasing until they reach the cap.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns the deferral for a job that has been attempted n times
func (b Backoff) Delay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	base := b.Base
	if base <= 0 {
		base = DefaultBackoffBase
	}
	maxDelay := b.Max
	if maxDelay <= 0 {
		maxDelay = DefaultBackoffMax
	}

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempts-1)) * (1 + rand.Float64()/2))
	if delay > maxDelay || delay < 0 {
		delay = maxDelay
	}
	return delay
}
