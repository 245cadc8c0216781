package data

import (
	"context"
	"errors"
	"net/http"

	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"
	"HotelGateway/pkg/metadata"
)

// LoyaltyRepo talks to the loyalty service. The caller is identified by the
// username in ctx.
type LoyaltyRepo struct {
	downstream
}

// NewLoyaltyRepo creates a LoyaltyRepo.
func NewLoyaltyRepo(clients *DownstreamClients, breakers *breaker.Group, metrics *Metrics) *LoyaltyRepo {
	return &LoyaltyRepo{
		downstream: downstream{client: clients.Loyalty, breakers: breakers, metrics: metrics},
	}
}

// GetLoyalty returns the caller's loyalty record, or nil when the user has
// none yet.
func (r *LoyaltyRepo) GetLoyalty(ctx context.Context) (*model.Loyalty, error) {
	var out model.Loyalty
	err := r.call(ctx, BreakerLoyaltyGet, http.MethodGet, "/loyalty", nil, &out)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLoyalty creates the caller's loyalty record.
func (r *LoyaltyRepo) CreateLoyalty(ctx context.Context) (*model.Loyalty, error) {
	var out model.Loyalty
	if err := r.call(ctx, BreakerLoyaltyCreate, http.MethodPost, "/loyalty", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCounter applies one reservation counter change for job.Username.
// The job token travels as the idempotency key.
func (r *LoyaltyRepo) UpdateCounter(ctx context.Context, job *model.LoyaltyJob) error {
	ctx = metadata.WithUsername(ctx, job.Username)
	ctx = metadata.WithIdempotencyKey(ctx, job.Token)

	body := map[string]string{"type": job.Direction}
	return r.call(ctx, BreakerLoyaltyUpdate, http.MethodPatch, "/loyalty", body, nil)
}
