package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"HotelGateway/internal/conf"
	"HotelGateway/internal/model"
	pkglog "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const defaultQueueKey = "gateway:loyalty:jobs"

// reapScript returns processing entries whose lease is older than ARGV[1]
// to the consumer end of the pending list. An entry seen without a lease
// is leased at ARGV[2], so it is reaped on a later run. Leases left without
// an entry are cleared.
var reapScript = redis.NewScript(`
local moved = 0
local entries = redis.call('LRANGE', KEYS[2], 0, -1)
for _, payload in ipairs(entries) do
  local leased = redis.call('ZSCORE', KEYS[3], payload)
  if not leased then
    redis.call('ZADD', KEYS[3], ARGV[2], payload)
  elseif tonumber(leased) <= tonumber(ARGV[1]) then
    redis.call('LREM', KEYS[2], 1, payload)
    redis.call('RPUSH', KEYS[1], payload)
    redis.call('ZREM', KEYS[3], payload)
    moved = moved + 1
  end
end
redis.call('ZREMRANGEBYSCORE', KEYS[3], '-inf', ARGV[1])
return moved
`)

// LoyaltyQueue is a reliable Redis list queue. Jobs are pushed on the left
// of the pending list and atomically moved from its right end into a
// processing list while a worker handles them. Every popped entry carries a
// lease in a sorted set, scored by pop time in milliseconds.
type LoyaltyQueue struct {
	rdb        *redis.Client
	pending    string
	processing string
	leases     string
	metrics    *Metrics
	logger     *pkglog.LogHelper
	now        func() time.Time
}

// NewLoyaltyQueue creates the queue on rdb.
func NewLoyaltyQueue(rdb *redis.Client, c *conf.Queue, metrics *Metrics, logger log.Logger) *LoyaltyQueue {
	key := defaultQueueKey
	if c != nil && c.Key != "" {
		key = c.Key
	}
	return &LoyaltyQueue{
		rdb:        rdb,
		pending:    key,
		processing: key + ":processing",
		leases:     key + ":leases",
		metrics:    metrics,
		logger:     pkglog.NewLogHelper(logger),
		now:        time.Now,
	}
}

// Push appends job to the pending list.
func (q *LoyaltyQueue) Push(ctx context.Context, job *model.LoyaltyJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal loyalty job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.pending, payload).Err(); err != nil {
		return fmt.Errorf("push loyalty job: %w", err)
	}

	q.metrics.ObserveJob(JobEnqueued)
	q.logger.Queue("loyalty job enqueued",
		"username", job.Username,
		"direction", job.Direction,
		"attempt", job.Attempt,
		"token", job.Token)
	return nil
}

// Pop waits up to timeout for the next job and moves it to the processing
// list. It returns nil, nil when no job arrived in time. Payloads that
// cannot be decoded are discarded.
func (q *LoyaltyQueue) Pop(ctx context.Context, timeout time.Duration) (*model.LoyaltyJob, error) {
	payload, err := q.rdb.BLMove(ctx, q.pending, q.processing, "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop loyalty job: %w", err)
	}

	var job model.LoyaltyJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		q.logger.Warnw("msg", "discarding malformed loyalty job", "payload", payload, "error", err)
		if rerr := q.rdb.LRem(ctx, q.processing, 1, payload).Err(); rerr != nil {
			return nil, fmt.Errorf("discard malformed loyalty job: %w", rerr)
		}
		return nil, nil
	}
	job.Raw = payload

	// Without a lease the entry is leased by the next Reap instead.
	lease := redis.Z{Score: float64(q.now().UnixMilli()), Member: payload}
	if err := q.rdb.ZAdd(ctx, q.leases, lease).Err(); err != nil {
		q.logger.Warnw("msg", "failed to lease loyalty job", "token", job.Token, "error", err)
	}
	return &job, nil
}

// Ack removes a handled job from the processing list.
func (q *LoyaltyQueue) Ack(ctx context.Context, job *model.LoyaltyJob) error {
	current, err := rawPayload(job)
	if err != nil {
		return err
	}

	var removed *redis.IntCmd
	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.LRem(ctx, q.processing, 1, current)
		pipe.ZRem(ctx, q.leases, current)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ack loyalty job: %w", err)
	}
	if removed.Val() == 0 {
		q.logger.Warnw("msg", "acked loyalty job was not in flight", "token", job.Token)
	}
	return nil
}

// Retry re-enqueues next and acknowledges job in one transaction.
func (q *LoyaltyQueue) Retry(ctx context.Context, job, next *model.LoyaltyJob) error {
	current, err := rawPayload(job)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal loyalty job: %w", err)
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, q.pending, payload)
		pipe.LRem(ctx, q.processing, 1, current)
		pipe.ZRem(ctx, q.leases, current)
		return nil
	})
	if err != nil {
		return fmt.Errorf("retry loyalty job: %w", err)
	}
	return nil
}

// Reap returns jobs held in flight for longer than lease to the consumer end
// of the pending list. It runs as one script, so a reaped job is never lost
// or duplicated. It returns how many were moved.
func (q *LoyaltyQueue) Reap(ctx context.Context, lease time.Duration) (int, error) {
	now := q.now()
	cutoff := now.Add(-lease).UnixMilli()
	moved, err := reapScript.Run(ctx, q.rdb,
		[]string{q.pending, q.processing, q.leases},
		cutoff, now.UnixMilli()).Int()
	if err != nil {
		return 0, fmt.Errorf("reap loyalty jobs: %w", err)
	}
	if moved > 0 {
		q.logger.Queue("reaped stranded loyalty jobs", "count", moved)
	}
	return moved, nil
}

// rawPayload returns the bytes job was popped from. Jobs built in memory
// fall back to their encoding.
func rawPayload(job *model.LoyaltyJob) (string, error) {
	if job.Raw != "" {
		return job.Raw, nil
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal loyalty job: %w", err)
	}
	return string(payload), nil
}

// Recover moves jobs left in the processing list by a stopped worker back
// to the consumer end of the pending list. It returns how many were moved.
func (q *LoyaltyQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.rdb.LMove(ctx, q.processing, q.pending, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			if err := q.rdb.Del(ctx, q.leases).Err(); err != nil {
				return moved, fmt.Errorf("clear loyalty leases: %w", err)
			}
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("recover loyalty jobs: %w", err)
		}
		moved++
	}
}

// Len returns the number of pending jobs.
func (q *LoyaltyQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.pending).Result()
	if err != nil {
		return 0, fmt.Errorf("loyalty queue length: %w", err)
	}
	return n, nil
}

// InFlight returns the number of jobs currently held by workers.
func (q *LoyaltyQueue) InFlight(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.processing).Result()
	if err != nil {
		return 0, fmt.Errorf("loyalty queue in flight: %w", err)
	}
	return n, nil
}
