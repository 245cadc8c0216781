// Package biz contains the gateway's business logic: the reservation sagas,
// the read-side views and the loyalty counter worker.
package biz

import (
	"HotelGateway/internal/data"

	"github.com/google/wire"
)

// ProviderSet is biz providers.
var ProviderSet = wire.NewSet(
	NewReservationUsecase,
	NewLoyaltyWorker,
	NewQueueMonitor,
	// Bind data layer implementations to biz layer interfaces
	wire.Bind(new(CatalogRepo), new(*data.CatalogRepo)),
	wire.Bind(new(PaymentRepo), new(*data.PaymentRepo)),
	wire.Bind(new(LoyaltyRepo), new(*data.LoyaltyRepo)),
	wire.Bind(new(LoyaltyQueue), new(*data.LoyaltyQueue)),
	wire.Bind(new(IncidentRecorder), new(*data.IncidentLog)),
	wire.Bind(new(QueueObserver), new(*data.Metrics)),
	wire.Bind(new(WebhookService), new(*data.NoopWebhookService)),
)
