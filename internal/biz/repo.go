package biz

import (
	"context"
	"time"

	"HotelGateway/internal/model"
)

// Repositories are defined here and implemented in the data layer. Every
// downstream call runs behind a circuit breaker; a missing record is
// reported as model.ErrNotFound. The caller identity travels in ctx.

// CatalogRepo reaches the reservation service, which owns hotels and
// reservations.
type CatalogRepo interface {
	ListHotels(ctx context.Context, page, size int) (*model.HotelPage, error)
	GetHotel(ctx context.Context, hotelUID string) (*model.Hotel, error)
	CreateReservation(ctx context.Context, r *model.Reservation) (*model.Reservation, error)
	ListReservations(ctx context.Context) ([]*model.Reservation, error)
	GetReservation(ctx context.Context, reservationUID string) (*model.Reservation, error)
	SetReservationStatus(ctx context.Context, reservationUID, status string) (*model.Reservation, error)
}

// PaymentRepo reaches the payment service.
type PaymentRepo interface {
	CreatePayment(ctx context.Context, p *model.Payment) (*model.Payment, error)
	GetPayment(ctx context.Context, paymentUID string) (*model.Payment, error)
	SetPaymentStatus(ctx context.Context, paymentUID, status string) error
}

// LoyaltyRepo reaches the loyalty service.
type LoyaltyRepo interface {
	// GetLoyalty returns nil, nil when the caller has no record yet.
	GetLoyalty(ctx context.Context) (*model.Loyalty, error)
	CreateLoyalty(ctx context.Context) (*model.Loyalty, error)
	UpdateCounter(ctx context.Context, job *model.LoyaltyJob) error
}

// LoyaltyQueue stores pending loyalty counter updates.
type LoyaltyQueue interface {
	Push(ctx context.Context, job *model.LoyaltyJob) error
	// Pop returns nil, nil when nothing arrived within timeout.
	Pop(ctx context.Context, timeout time.Duration) (*model.LoyaltyJob, error)
	Ack(ctx context.Context, job *model.LoyaltyJob) error
	// Retry enqueues next and acknowledges job atomically.
	Retry(ctx context.Context, job, next *model.LoyaltyJob) error
	Recover(ctx context.Context) (int, error)
	// Reap returns jobs held in flight for longer than lease to pending.
	Reap(ctx context.Context, lease time.Duration) (int, error)
	Len(ctx context.Context) (int64, error)
}

// IncidentRecorder keeps an audit trail of inconsistencies the sagas leave
// in place. Record never blocks the caller and never fails.
type IncidentRecorder interface {
	Record(ctx context.Context, inc *model.Incident)
}

// QueueObserver receives loyalty queue statistics.
type QueueObserver interface {
	ObserveJob(outcome string)
	SetQueueDepth(n int64)
}
