package biz

import (
	"context"
	"fmt"
	"time"

	"HotelGateway/internal/conf"
	pkglog "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
)

const defaultJobLease = 15 * time.Second

// QueueMonitor publishes the loyalty queue depth and returns jobs stranded
// in flight to the queue. It is run periodically.
type QueueMonitor struct {
	queue    LoyaltyQueue
	observer QueueObserver
	logger   *pkglog.LogHelper
	lease    time.Duration
}

// NewQueueMonitor creates a QueueMonitor.
func NewQueueMonitor(c *conf.Queue, queue LoyaltyQueue, observer QueueObserver, logger log.Logger) *QueueMonitor {
	m := &QueueMonitor{
		queue:    queue,
		observer: observer,
		logger:   pkglog.NewLogHelper(logger),
		lease:    defaultJobLease,
	}
	if c != nil && c.Lease > 0 {
		m.lease = c.Lease
	}
	return m
}

// Report reads the pending job count and publishes it.
func (m *QueueMonitor) Report(ctx context.Context) (int64, error) {
	n, err := m.queue.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read loyalty queue depth: %w", err)
	}
	m.observer.SetQueueDepth(n)
	m.logger.Queue("loyalty queue depth", "pending", n)
	return n, nil
}

// Reap moves jobs whose worker failed to settle them back to pending, so
// they are retried or expire like any other job.
func (m *QueueMonitor) Reap(ctx context.Context) (int, error) {
	n, err := m.queue.Reap(ctx, m.lease)
	if err != nil {
		return 0, fmt.Errorf("failed to reap loyalty jobs: %w", err)
	}
	if n > 0 {
		m.logger.Queue("loyalty jobs returned to queue", "count", n)
	}
	return n, nil
}
