package biz

import (
	"context"

	"HotelGateway/internal/model"
)

// WebhookService defines the interface for operator notifications
type WebhookService interface {
	// NotifyCircuitBroken sends notification when a downstream breaker trips
	NotifyCircuitBroken(ctx context.Context, event *model.CircuitBrokenEvent) error

	// NotifyCircuitRecovered sends notification when a tripped breaker recovers
	NotifyCircuitRecovered(ctx context.Context, event *model.CircuitRecoveredEvent) error

	// NotifyIncident sends notification for an inconsistency nobody else is told about
	NotifyIncident(ctx context.Context, inc *model.Incident) error
}
