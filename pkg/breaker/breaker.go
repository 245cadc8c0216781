// Package breaker implements the circuit breaker that guards every downstream
// call made by the gateway.
//
// A breaker starts in StateAllowing. The first failure opens a probing window;
// inside that window the breaker counts outcomes and, once FailureThreshold
// failures have been seen, either blocks calls for BlockDuration (failure rate
// at or above FailureRateThreshold) or starts a fresh window. While blocking,
// Fire rejects calls with ErrOpen without running the operation.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned by Fire when the breaker rejects a call without
// attempting it.
var ErrOpen = errors.New("circuit breaker is blocking calls")

// State is the breaker state.
type State int

const (
	// StateAllowing lets every call through.
	StateAllowing State = iota
	// StateProbing lets calls through while sampling their outcomes.
	StateProbing
	// StateBlocking rejects calls until the block window elapses.
	StateBlocking
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAllowing:
		return "allowing"
	case StateProbing:
		return "probing"
	case StateBlocking:
		return "blocking"
	default:
		return "unknown"
	}
}

// Config holds the fixed thresholds of a breaker.
type Config struct {
	ProbeWindow          time.Duration // length of a probing window
	BlockDuration        time.Duration // how long calls are rejected once tripped
	FailureThreshold     int           // failures needed inside a window before a verdict
	FailureRateThreshold int           // failure percentage that trips the breaker
}

// DefaultConfig returns the thresholds used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		ProbeWindow:          10 * time.Second,
		BlockDuration:        5 * time.Second,
		FailureThreshold:     15,
		FailureRateThreshold: 50,
	}
}

// StateChangeFunc is notified after a breaker changes state. Transitions of
// one breaker are delivered one at a time, in the order they happened. The
// listener must not call Fire on the same breaker.
type StateChangeFunc func(name string, from, to State)

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

// WithStateChange registers a listener for state transitions.
func WithStateChange(fn StateChangeFunc) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

// Snapshot is a point-in-time copy of the breaker's internal model.
type Snapshot struct {
	State         State
	FailureCount  int
	SuccessCount  int
	BlockUntil    time.Time
	ProbeDeadline time.Time
}

// Breaker guards a single downstream operation kind. It is safe for
// concurrent use.
type Breaker struct {
	name     string
	cfg      Config
	now      func() time.Time
	onChange StateChangeFunc

	mu            sync.Mutex
	state         State
	blockUntil    time.Time
	probeDeadline time.Time
	failureCount  int
	successCount  int
	issued        uint64 // transitions numbered under mu

	notifyMu  sync.Mutex
	turn      *sync.Cond
	delivered uint64 // guarded by notifyMu
}

// New creates a breaker in StateAllowing.
func New(name string, cfg Config, opts ...Option) *Breaker {
	b := &Breaker{
		name:  name,
		cfg:   cfg,
		now:   time.Now,
		state: StateAllowing,
	}
	b.turn = sync.NewCond(&b.notifyMu)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the name the breaker was created with.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns a copy of the current state and counters.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		State:         b.state,
		FailureCount:  b.failureCount,
		SuccessCount:  b.successCount,
		BlockUntil:    b.blockUntil,
		ProbeDeadline: b.probeDeadline,
	}
}

// Fire runs op unless the breaker is blocking. The outcome of op, including a
// recovered panic, is recorded and returned as an error value; Fire itself
// never panics on behalf of op.
func (b *Breaker) Fire(ctx context.Context, op func(context.Context) error) error {
	if !b.allow() {
		return fmt.Errorf("%s: %w", b.name, ErrOpen)
	}

	if err := invoke(ctx, op); err != nil {
		b.onFailure()
		return err
	}

	b.onSuccess()
	return nil
}

// Call is Fire for operations that produce a value.
func Call[T any](ctx context.Context, b *Breaker, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := b.Fire(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func invoke(ctx context.Context, op func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state != StateBlocking || !b.now().Before(b.blockUntil)
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	from := b.state
	now := b.now()

	switch b.state {
	case StateProbing:
		b.successCount++
		if !now.Before(b.probeDeadline) {
			b.state = StateAllowing
			b.resetLocked()
		}
	case StateBlocking:
		b.state = StateAllowing
		b.resetLocked()
	}

	to := b.state
	seq := b.sequenceLocked(from, to)
	b.mu.Unlock()
	b.notify(seq, from, to)
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	from := b.state
	now := b.now()

	switch b.state {
	case StateBlocking:
		b.blockUntil = now.Add(b.cfg.BlockDuration)

	case StateAllowing:
		b.state = StateProbing
		b.startProbingLocked(now)

	case StateProbing:
		b.failureCount++
		switch {
		case now.After(b.probeDeadline):
			b.startProbingLocked(now)
		case b.failureCount >= b.cfg.FailureThreshold:
			rate := b.failureCount * 100 / (b.failureCount + b.successCount)
			if rate >= b.cfg.FailureRateThreshold {
				b.state = StateBlocking
				b.resetLocked()
				b.blockUntil = now.Add(b.cfg.BlockDuration)
			} else {
				b.startProbingLocked(now)
			}
		}
	}

	to := b.state
	seq := b.sequenceLocked(from, to)
	b.mu.Unlock()
	b.notify(seq, from, to)
}

// startProbingLocked opens a fresh probing window that already counts the
// failure that opened it.
func (b *Breaker) startProbingLocked(now time.Time) {
	b.resetLocked()
	b.failureCount = 1
	b.probeDeadline = now.Add(b.cfg.ProbeWindow)
}

// resetLocked zeroes the statistics window. Must be called with mu held.
func (b *Breaker) resetLocked() {
	b.failureCount = 0
	b.successCount = 0
	b.probeDeadline = time.Time{}
	b.blockUntil = time.Time{}
}

// sequenceLocked numbers a transition from -> to. It returns 0 when there
// is nothing to deliver. Must be called with mu held.
func (b *Breaker) sequenceLocked(from, to State) uint64 {
	if from == to || b.onChange == nil {
		return 0
	}
	b.issued++
	return b.issued
}

// notify delivers transition seq once every earlier one has been delivered.
func (b *Breaker) notify(seq uint64, from, to State) {
	if seq == 0 {
		return
	}
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	for b.delivered+1 != seq {
		b.turn.Wait()
	}
	defer func() {
		b.delivered = seq
		b.turn.Broadcast()
	}()
	b.onChange(b.name, from, to)
}
