package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier keeps every circuit event it receives.
type recordingNotifier struct {
	broken    []*model.CircuitBrokenEvent
	recovered []*model.CircuitRecoveredEvent
	err       error
}

func (n *recordingNotifier) NotifyCircuitBroken(_ context.Context, event *model.CircuitBrokenEvent) error {
	n.broken = append(n.broken, event)
	return n.err
}

func (n *recordingNotifier) NotifyCircuitRecovered(_ context.Context, event *model.CircuitRecoveredEvent) error {
	n.recovered = append(n.recovered, event)
	return n.err
}

func TestBreakerListener_NotifiesTripAndRecovery(t *testing.T) {
	metrics := NewMetrics()
	notifier := &recordingNotifier{}
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	listen := breakerListener(metrics, notifier, log.DefaultLogger, func() time.Time { return clock })

	listen(BreakerPaymentCreate, breaker.StateAllowing, breaker.StateProbing)
	assert.Empty(t, notifier.broken)

	listen(BreakerPaymentCreate, breaker.StateProbing, breaker.StateBlocking)
	require.Len(t, notifier.broken, 1)
	assert.Equal(t, BreakerPaymentCreate, notifier.broken[0].Breaker)
	assert.Equal(t, "probing", notifier.broken[0].From)
	assert.Equal(t, clock, notifier.broken[0].BrokenAt)

	clock = clock.Add(7 * time.Second)
	listen(BreakerPaymentCreate, breaker.StateBlocking, breaker.StateAllowing)
	require.Len(t, notifier.recovered, 1)
	assert.Equal(t, 7*time.Second, notifier.recovered[0].BlockedFor)
	assert.Equal(t, clock, notifier.recovered[0].RecoveredAt)

	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.BreakerState.WithLabelValues(BreakerPaymentCreate)))
}

func TestBreakerListener_RecoveryWithoutObservedTrip(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	listen := breakerListener(NewMetrics(), notifier, log.DefaultLogger, time.Now)

	listen(BreakerLoyaltyGet, breaker.StateBlocking, breaker.StateAllowing)
	require.Len(t, notifier.recovered, 1)
	assert.Zero(t, notifier.recovered[0].BlockedFor)
}

func TestNewBreakerGroup_TripIsObserved(t *testing.T) {
	metrics := NewMetrics()
	group := NewBreakerGroup(nil, metrics, NewNoopWebhookService(log.DefaultLogger), log.DefaultLogger)
	b := group.Get(BreakerHotelsGet)

	for i := 0; i < 15; i++ {
		_ = b.Fire(context.Background(), func(context.Context) error { return errors.New("boom") })
	}
	assert.Equal(t, breaker.StateBlocking, b.State())
	assert.Equal(t, float64(breaker.StateBlocking), testutil.ToFloat64(metrics.BreakerState.WithLabelValues(BreakerHotelsGet)))
}

func TestNoopWebhookService(t *testing.T) {
	s := NewNoopWebhookService(log.DefaultLogger)
	ctx := context.Background()

	assert.NoError(t, s.NotifyCircuitBroken(ctx, &model.CircuitBrokenEvent{Breaker: BreakerHotelsList}))
	assert.NoError(t, s.NotifyCircuitRecovered(ctx, &model.CircuitRecoveredEvent{Breaker: BreakerHotelsList}))
	assert.NoError(t, s.NotifyIncident(ctx, &model.Incident{Kind: model.IncidentLoyaltyUpdateExpired}))
}
