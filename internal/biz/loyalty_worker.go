package biz

import (
	"context"
	"sync"
	"time"

	"HotelGateway/internal/conf"
	"HotelGateway/internal/data"
	"HotelGateway/internal/model"
	pkglog "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultJobTTL      = 10 * time.Second
	defaultPollTimeout = time.Second
	maxRetryDelay      = time.Second
	retryDelayStep     = 200 * time.Millisecond

	// settleAttempts bounds the queue writes that finish a job.
	settleAttempts = 3
	settleBackoff  = 100 * time.Millisecond
)

// LoyaltyWorker drains the loyalty queue. Each job is retried until it
// succeeds or its TTL, measured from first enqueue, runs out.
type LoyaltyWorker struct {
	queue     LoyaltyQueue
	loyalty   LoyaltyRepo
	incidents IncidentRecorder
	observer  QueueObserver
	webhook   WebhookService
	logger    *pkglog.LogHelper

	ttl         time.Duration
	pollTimeout time.Duration
	workers     int
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration)
}

// NewLoyaltyWorker creates a LoyaltyWorker.
func NewLoyaltyWorker(
	c *conf.Queue,
	queue LoyaltyQueue,
	loyalty LoyaltyRepo,
	incidents IncidentRecorder,
	observer QueueObserver,
	webhook WebhookService,
	logger log.Logger,
) *LoyaltyWorker {
	w := &LoyaltyWorker{
		queue:       queue,
		loyalty:     loyalty,
		incidents:   incidents,
		observer:    observer,
		webhook:     webhook,
		logger:      pkglog.NewLogHelper(logger),
		ttl:         defaultJobTTL,
		pollTimeout: defaultPollTimeout,
		workers:     1,
		now:         time.Now,
		sleep:       sleepContext,
	}
	if c != nil {
		if c.TTL > 0 {
			w.ttl = c.TTL
		}
		if c.PollTimeout > 0 {
			w.pollTimeout = c.PollTimeout
		}
		if c.Workers > 0 {
			w.workers = c.Workers
		}
	}
	return w
}

// Run recovers jobs abandoned by a previous process and consumes the queue
// until ctx is canceled.
func (w *LoyaltyWorker) Run(ctx context.Context) error {
	moved, err := w.queue.Recover(ctx)
	if err != nil {
		w.logger.Errorw("msg", "failed to recover in-flight loyalty jobs", "error", err)
	} else if moved > 0 {
		w.logger.Queue("recovered in-flight loyalty jobs", "count", moved)
	}

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
	return nil
}

func (w *LoyaltyWorker) loop(ctx context.Context, id int) {
	w.logger.Queue("loyalty worker started", "worker", id)
	for ctx.Err() == nil {
		if _, err := w.ProcessNext(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			w.logger.Errorw("msg", "loyalty queue unavailable", "worker", id, "error", err)
			w.sleep(ctx, w.pollTimeout)
		}
	}
	w.logger.Queue("loyalty worker stopped", "worker", id)
}

// ProcessNext waits for one job and handles it. It reports whether a job
// was handled.
func (w *LoyaltyWorker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.Pop(ctx, w.pollTimeout)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	// A popped job is finished even if shutdown starts meanwhile.
	w.handle(context.WithoutCancel(ctx), job)
	return true, nil
}

func (w *LoyaltyWorker) handle(ctx context.Context, job *model.LoyaltyJob) {
	if job.Expired(w.now(), w.ttl) {
		w.drop(ctx, job)
		return
	}

	err := w.loyalty.UpdateCounter(ctx, job)
	if err == nil {
		ackErr := w.settle(ctx, "ack", job, func() error {
			return w.queue.Ack(ctx, job)
		})
		if ackErr != nil {
			w.logger.Errorw("msg", "failed to ack loyalty job", "token", job.Token, "error", ackErr)
		}
		w.observer.ObserveJob(data.JobSucceeded)
		w.logger.Queue("loyalty counter updated",
			"username", job.Username,
			"direction", job.Direction,
			"attempt", job.Attempt)
		return
	}

	next := job.Next()
	retryErr := w.settle(ctx, "requeue", job, func() error {
		return w.queue.Retry(ctx, job, next)
	})
	if retryErr != nil {
		// The job stays in flight until its lease runs out and it is reaped.
		w.logger.Errorw("msg", "failed to requeue loyalty job", "token", job.Token, "error", retryErr)
		return
	}
	w.observer.ObserveJob(data.JobRetried)
	w.logger.Queue("loyalty counter update failed, requeued",
		"username", job.Username,
		"direction", job.Direction,
		"attempt", next.Attempt,
		"error", err)

	w.sleep(ctx, retryDelay(job.Attempt))
}

// drop discards an expired job. Callers are never told; operators are
// alerted through the webhook.
func (w *LoyaltyWorker) drop(ctx context.Context, job *model.LoyaltyJob) {
	err := w.settle(ctx, "drop", job, func() error {
		return w.queue.Ack(ctx, job)
	})
	if err != nil {
		w.logger.Errorw("msg", "failed to drop expired loyalty job", "token", job.Token, "error", err)
	}
	w.observer.ObserveJob(data.JobExpired)
	inc := &model.Incident{
		Kind:     model.IncidentLoyaltyUpdateExpired,
		Username: job.Username,
		Details: map[string]interface{}{
			"direction":  job.Direction,
			"attempts":   job.Attempt - 1,
			"token":      job.Token,
			"created_at": job.CreatedTime().UTC().Format(time.RFC3339Nano),
		},
	}
	w.incidents.Record(ctx, inc)
	if w.webhook == nil {
		return
	}
	if err := w.webhook.NotifyIncident(ctx, inc); err != nil {
		w.logger.Errorw("msg", "failed to send incident notification", "kind", inc.Kind, "error", err)
	}
}

// settle runs write up to settleAttempts times with a growing pause.
func (w *LoyaltyWorker) settle(ctx context.Context, op string, job *model.LoyaltyJob, write func() error) error {
	var err error
	for i := 1; i <= settleAttempts; i++ {
		if err = write(); err == nil {
			return nil
		}
		if i < settleAttempts {
			w.logger.Warnw("msg", "loyalty queue write failed, retrying",
				"op", op, "token", job.Token, "try", i, "error", err)
			w.sleep(ctx, time.Duration(i)*settleBackoff)
		}
	}
	return err
}

func retryDelay(attempt int) time.Duration {
	d := time.Duration(attempt) * retryDelayStep
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
