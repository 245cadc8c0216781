package data

import (
	"context"
	"errors"
	"sync"
	"time"

	"HotelGateway/internal/conf"
	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"
	pkglog "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
)

// Breaker names, one per downstream operation kind.
const (
	BreakerHotelsList        = "hotels.list"
	BreakerHotelsGet         = "hotels.get"
	BreakerReservationCreate = "reservation.create"
	BreakerReservationList   = "reservation.list"
	BreakerReservationGet    = "reservation.get"
	BreakerReservationUpdate = "reservation.update"
	BreakerPaymentCreate     = "payment.create"
	BreakerPaymentGet        = "payment.get"
	BreakerPaymentUpdate     = "payment.update"
	BreakerLoyaltyGet        = "loyalty.get"
	BreakerLoyaltyCreate     = "loyalty.create"
	BreakerLoyaltyUpdate     = "loyalty.update"
)

// NewBreakerGroup builds the breaker group shared by every downstream repo.
// Transitions are logged and exported as metrics; trips and recoveries are
// also sent to the webhook.
func NewBreakerGroup(c *conf.Breaker, metrics *Metrics, webhook *NoopWebhookService, logger log.Logger) *breaker.Group {
	return breaker.NewGroup(breakerConfig(c), breaker.WithStateChange(breakerListener(metrics, webhook, logger, time.Now)))
}

// circuitNotifier is the part of the webhook the breaker listener uses.
type circuitNotifier interface {
	NotifyCircuitBroken(ctx context.Context, event *model.CircuitBrokenEvent) error
	NotifyCircuitRecovered(ctx context.Context, event *model.CircuitRecoveredEvent) error
}

func breakerListener(metrics *Metrics, notifier circuitNotifier, logger log.Logger, now func() time.Time) breaker.StateChangeFunc {
	helper := pkglog.NewLogHelper(logger)
	var (
		mu      sync.Mutex
		tripped = map[string]time.Time{}
	)

	return func(name string, from, to breaker.State) {
		helper.Breaker(name, from.String(), to.String())
		metrics.ObserveBreaker(name, to)

		ctx := context.Background()
		at := now()
		switch {
		case to == breaker.StateBlocking:
			mu.Lock()
			tripped[name] = at
			mu.Unlock()
			if err := notifier.NotifyCircuitBroken(ctx, &model.CircuitBrokenEvent{
				Breaker:  name,
				From:     from.String(),
				BrokenAt: at,
			}); err != nil {
				helper.Errorw("msg", "failed to send circuit broken notification", "breaker", name, "error", err)
			}
		case from == breaker.StateBlocking:
			mu.Lock()
			since, ok := tripped[name]
			delete(tripped, name)
			mu.Unlock()
			event := &model.CircuitRecoveredEvent{Breaker: name, RecoveredAt: at}
			if ok {
				event.BlockedFor = at.Sub(since)
			}
			if err := notifier.NotifyCircuitRecovered(ctx, event); err != nil {
				helper.Errorw("msg", "failed to send circuit recovered notification", "breaker", name, "error", err)
			}
		}
	}
}

func breakerConfig(c *conf.Breaker) breaker.Config {
	cfg := breaker.DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.ProbeWindow > 0 {
		cfg.ProbeWindow = c.ProbeWindow
	}
	if c.BlockDuration > 0 {
		cfg.BlockDuration = c.BlockDuration
	}
	if c.FailureThreshold > 0 {
		cfg.FailureThreshold = c.FailureThreshold
	}
	if c.FailureRateThreshold > 0 {
		cfg.FailureRateThreshold = c.FailureRateThreshold
	}
	return cfg
}

func isBreakerOpen(err error) bool {
	return errors.Is(err, breaker.ErrOpen)
}
