package queue

import (
	"context"
	"time"

	"github.com/shlior7/scenergy/internal/db/repos"
	"github.com/shlior7/scenergy/internal/logger"
)

// DefaultLeaseTimeout is how long a processing job may go without a
// heartbeat before the monitor hands it back to the queue
const DefaultLeaseTimeout = 5 * time.Minute

// LeaseMonitor periodically returns processing jobs with expired leases to
// pending so surviving workers can claim them. A reclaim is crash recovery
// for a worker that disappeared mid-execution; it does not consume an
// attempt and does not defer the job.
type LeaseMonitor struct {
	repo         *repos.JobRepository
	leaseTimeout time.Duration
	interval     time.Duration
}

// NewLeaseMonitor creates a monitor sweeping at half the lease timeout
func NewLeaseMonitor(repo *repos.JobRepository, leaseTimeout time.Duration) *LeaseMonitor {
	if leaseTimeout <= 0 {
		leaseTimeout = DefaultLeaseTimeout
	}
	return &LeaseMonitor{
		repo:         repo,
		leaseTimeout: leaseTimeout,
		interval:     leaseTimeout / 2,
	}
}

// Run sweeps for expired leases until ctx is cancelled
func (m *LeaseMonitor) Run(ctx context.Context) {
	logger.Infof("Lease monitor started, timeout %s, sweeping every %s", m.leaseTimeout, m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Lease monitor stopped")
			return
		case <-ticker.C:
			count, err := m.Sweep(ctx)
			if err != nil {
				logger.Errorf("Lease monitor sweep failed: %v", err)
				continue
			}
			if count > 0 {
				logger.Infof("Reclaimed %d jobs with expired leases", count)
			}
		}
	}
}

// Sweep runs a single reclaim pass and returns how many jobs it recovered
func (m *LeaseMonitor) Sweep(ctx context.Context) (int64, error) {
	return m.repo.ReclaimExpired(ctx, m.leaseTimeout)
}
