package breaker

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func drawConfig(t *rapid.T) Config {
	return Config{
		ProbeWindow:          time.Duration(rapid.IntRange(1, 60).Draw(t, "probeWindowSec")) * time.Second,
		BlockDuration:        time.Duration(rapid.IntRange(1, 60).Draw(t, "blockSec")) * time.Second,
		FailureThreshold:     rapid.IntRange(1, 20).Draw(t, "failureThreshold"),
		FailureRateThreshold: rapid.IntRange(1, 100).Draw(t, "failureRateThreshold"),
	}
}

// Only successes never leave StateAllowing and every call reaches the operation.
func TestProperty_SuccessesNeverBlock(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b, clock := newTestBreaker(drawConfig(t))
		calls := rapid.IntRange(1, 200).Draw(t, "calls")

		invoked := 0
		for i := 0; i < calls; i++ {
			err := b.Fire(context.Background(), func(context.Context) error {
				invoked++
				return nil
			})
			if err != nil {
				t.Fatalf("call %d failed: %v", i, err)
			}
			clock.Advance(time.Duration(rapid.IntRange(0, 5000).Draw(t, "stepMs")) * time.Millisecond)
		}

		if b.State() != StateAllowing {
			t.Fatalf("state = %s, want allowing", b.State())
		}
		if invoked != calls {
			t.Fatalf("invoked %d of %d calls", invoked, calls)
		}
	})
}

// A single failure from StateAllowing always starts probing and never blocks.
func TestProperty_FirstFailureStartsProbing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		cfg.FailureThreshold = rapid.IntRange(2, 20).Draw(t, "threshold")
		b, _ := newTestBreaker(cfg)

		successes := rapid.IntRange(0, 50).Draw(t, "successes")
		for i := 0; i < successes; i++ {
			_ = b.Fire(context.Background(), succeed)
		}
		_ = b.Fire(context.Background(), fail)

		if got := b.State(); got != StateProbing {
			t.Fatalf("state = %s, want probing", got)
		}
	})
}

// Reaching the threshold inside one window trips the breaker exactly when the
// failure rate is at or above the configured rate.
func TestProperty_ThresholdVerdict(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		b, _ := newTestBreaker(cfg)
		ctx := context.Background()

		// Opening failure, then interleave successes before the remaining failures
		_ = b.Fire(ctx, fail)
		successes := 0
		if cfg.FailureThreshold > 1 {
			successes = rapid.IntRange(0, 40).Draw(t, "successes")
			for i := 0; i < successes; i++ {
				_ = b.Fire(ctx, succeed)
			}
		}
		for i := 1; i < cfg.FailureThreshold; i++ {
			_ = b.Fire(ctx, fail)
		}

		rate := cfg.FailureThreshold * 100 / (cfg.FailureThreshold + successes)
		snap := b.Snapshot()

		if cfg.FailureThreshold == 1 {
			// The opening failure only starts probing; it never reaches a verdict.
			if snap.State != StateProbing {
				t.Fatalf("state = %s, want probing", snap.State)
			}
			return
		}
		if rate >= cfg.FailureRateThreshold {
			if snap.State != StateBlocking {
				t.Fatalf("rate %d%% >= %d%%: state = %s, want blocking", rate, cfg.FailureRateThreshold, snap.State)
			}
			return
		}
		if snap.State != StateProbing || snap.FailureCount != 1 || snap.SuccessCount != 0 {
			t.Fatalf("rate %d%% < %d%%: got %+v, want fresh probing window", rate, cfg.FailureRateThreshold, snap)
		}
	})
}

// While blocking, no call reaches the operation before the window elapses.
func TestProperty_BlockingNeverInvokes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		cfg.FailureThreshold = 1 + rapid.IntRange(1, 10).Draw(t, "threshold")
		b, clock := newTestBreaker(cfg)
		ctx := context.Background()
		for i := 0; i < cfg.FailureThreshold; i++ {
			_ = b.Fire(ctx, fail)
		}
		if b.State() != StateBlocking {
			t.Fatalf("state = %s, want blocking", b.State())
		}
		until := b.Snapshot().BlockUntil

		invoked := 0
		attempts := rapid.IntRange(1, 50).Draw(t, "attempts")
		for i := 0; i < attempts; i++ {
			step := time.Duration(rapid.IntRange(0, 1000).Draw(t, "stepMs")) * time.Millisecond
			if !clock.Now().Add(step).Before(until) {
				break
			}
			clock.Advance(step)
			_ = b.Fire(ctx, func(context.Context) error {
				invoked++
				return nil
			})
		}
		if invoked != 0 {
			t.Fatalf("operation invoked %d times while blocking", invoked)
		}
	})
}

// A success that ends a block or a probing window returns to StateAllowing
// with every statistic zeroed.
func TestProperty_SuccessClearsToAllowing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := drawConfig(t)
		cfg.FailureThreshold = rapid.IntRange(1, 10).Draw(t, "threshold")
		cfg.FailureRateThreshold = 1
		b, clock := newTestBreaker(cfg)
		ctx := context.Background()

		failures := rapid.IntRange(1, 30).Draw(t, "failures")
		for i := 0; i < failures; i++ {
			_ = b.Fire(ctx, fail)
		}

		// Past both windows, so the next call is attempted in either state
		clock.Advance(cfg.ProbeWindow + cfg.BlockDuration)
		if err := b.Fire(ctx, succeed); err != nil {
			t.Fatalf("success rejected: %v", err)
		}

		if snap := b.Snapshot(); snap != (Snapshot{State: StateAllowing}) {
			t.Fatalf("got %+v, want zeroed allowing snapshot", snap)
		}
	})
}
