package data

import (
	"context"
	"net/http"
	"net/url"

	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"
)

// PaymentRepo talks to the payment service.
type PaymentRepo struct {
	downstream
}

// NewPaymentRepo creates a PaymentRepo.
func NewPaymentRepo(clients *DownstreamClients, breakers *breaker.Group, metrics *Metrics) *PaymentRepo {
	return &PaymentRepo{
		downstream: downstream{client: clients.Payment, breakers: breakers, metrics: metrics},
	}
}

// CreatePayment stores p. The caller chooses the payment uid.
func (r *PaymentRepo) CreatePayment(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	var out model.Payment
	if err := r.call(ctx, BreakerPaymentCreate, http.MethodPost, "/payment", p, &out); err != nil {
		return nil, err
	}
	if out.PaymentUID == "" {
		out = *p
	}
	return &out, nil
}

// GetPayment returns a payment by uid.
func (r *PaymentRepo) GetPayment(ctx context.Context, paymentUID string) (*model.Payment, error) {
	var out model.Payment
	if err := r.call(ctx, BreakerPaymentGet, http.MethodGet, "/payment/"+url.PathEscape(paymentUID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPaymentStatus updates a payment's status.
func (r *PaymentRepo) SetPaymentStatus(ctx context.Context, paymentUID, status string) error {
	body := map[string]string{"status": status}
	return r.call(ctx, BreakerPaymentUpdate, http.MethodPatch, "/payment/"+url.PathEscape(paymentUID), body, nil)
}
