package data

import (
	"context"

	"HotelGateway/internal/model"

	"github.com/go-kratos/kratos/v2/log"
)

// NoopWebhookService only logs events. An HTTP implementation can replace it
// without touching callers.
type NoopWebhookService struct {
	logger *log.Helper
}

// NewNoopWebhookService creates a new noop webhook service
func NewNoopWebhookService(logger log.Logger) *NoopWebhookService {
	return &NoopWebhookService{
		logger: log.NewHelper(logger),
	}
}

// NotifyCircuitBroken logs a breaker trip.
func (s *NoopWebhookService) NotifyCircuitBroken(ctx context.Context, event *model.CircuitBrokenEvent) error {
	s.logger.WithContext(ctx).Warnw("msg", "circuit broken (webhook disabled)",
		"breaker", event.Breaker,
		"from", event.From,
		"broken_at", event.BrokenAt)
	return nil
}

// NotifyCircuitRecovered logs a breaker recovery.
func (s *NoopWebhookService) NotifyCircuitRecovered(ctx context.Context, event *model.CircuitRecoveredEvent) error {
	s.logger.WithContext(ctx).Infow("msg", "circuit recovered (webhook disabled)",
		"breaker", event.Breaker,
		"recovered_at", event.RecoveredAt,
		"blocked_for", event.BlockedFor)
	return nil
}

// NotifyIncident logs an incident that needs an operator.
func (s *NoopWebhookService) NotifyIncident(ctx context.Context, inc *model.Incident) error {
	s.logger.WithContext(ctx).Warnw("msg", "incident raised (webhook disabled)",
		"kind", inc.Kind,
		"username", inc.Username,
		"details", inc.Details)
	return nil
}
