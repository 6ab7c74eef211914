package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"

	"github.com/shlior7/scenergy/internal/logger"
)

// WakeChannel is the postgres notification channel new jobs are announced on
const WakeChannel = "scenergy_jobs_wake"

// reconnectDelay is how long the listener waits before redialing a lost
// LISTEN connection
const reconnectDelay = 5 * time.Second

// NotifyWaker publishes wake notifications through the shared GORM handle.
// Notifications are fire-and-forget: workers poll on a fixed interval
// regardless, so a dropped or failed notify costs latency, not correctness.
type NotifyWaker struct {
	db *gorm.DB
}

// NewNotifyWaker creates a waker publishing on the jobs wake channel
func NewNotifyWaker(db *gorm.DB) *NotifyWaker {
	return &NotifyWaker{db: db}
}

// Wake announces that a job may be available to claim
func (w *NotifyWaker) Wake(ctx context.Context, jobID string) {
	if w.db.Dialector.Name() != "postgres" {
		return
	}
	if err := w.db.WithContext(ctx).
		Exec("SELECT pg_notify(?, ?)", WakeChannel, jobID).Error; err != nil {
		logger.Debugf("Failed to publish wake notification for job %s: %v", jobID, err)
	}
}

// WakeListener holds a dedicated postgres connection subscribed to the wake
// channel and fans notifications into a coalescing signal channel that
// workers select on alongside their poll timer.
type WakeListener struct {
	dsn string
	ch  chan struct{}
}

// NewWakeListener creates an unstarted listener for the given database
func NewWakeListener(opts Options) *WakeListener {
	return &WakeListener{
		dsn: opts.DSN(),
		ch:  make(chan struct{}, 1),
	}
}

// C returns the channel wake signals are delivered on. Signals are
// coalesced: one pending signal means "attempt a claim now", not
// one-delivery-per-job.
func (l *WakeListener) C() <-chan struct{} {
	return l.ch
}

// Listen blocks serving notifications until ctx is cancelled, redialing
// whenever the LISTEN connection is lost
func (l *WakeListener) Listen(ctx context.Context) {
	for {
		if err := l.listenOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Warnf("Wake channel connection lost, reconnecting: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *WakeListener) listenOnce(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect for LISTEN: %w", err)
	}
	defer func() {
		_ = conn.Close(context.Background())
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+WakeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", WakeChannel, err)
	}

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return err
		}
		select {
		case l.ch <- struct{}{}:
		default:
			// A wake is already pending; coalesce.
		}
	}
}
