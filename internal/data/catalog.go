package data

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"HotelGateway/internal/model"
	"HotelGateway/pkg/breaker"
)

// CatalogRepo talks to the reservation service, which owns both the hotel
// catalog and the reservations.
type CatalogRepo struct {
	downstream
	cache *HotelCache
}

// NewCatalogRepo creates a CatalogRepo.
func NewCatalogRepo(clients *DownstreamClients, breakers *breaker.Group, metrics *Metrics, cache *HotelCache) *CatalogRepo {
	return &CatalogRepo{
		downstream: downstream{client: clients.Reservation, breakers: breakers, metrics: metrics},
		cache:      cache,
	}
}

// ListHotels returns one page of the catalog.
func (r *CatalogRepo) ListHotels(ctx context.Context, page, size int) (*model.HotelPage, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("size", fmt.Sprint(size))

	var out model.HotelPage
	if err := r.call(ctx, BreakerHotelsList, http.MethodGet, "/hotels?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	for _, h := range out.Items {
		r.cache.Add(h)
	}
	return &out, nil
}

// GetHotel returns the hotel, from cache when possible.
func (r *CatalogRepo) GetHotel(ctx context.Context, hotelUID string) (*model.Hotel, error) {
	if h, ok := r.cache.Get(hotelUID); ok {
		return h, nil
	}

	var out model.Hotel
	if err := r.call(ctx, BreakerHotelsGet, http.MethodGet, "/hotels/"+url.PathEscape(hotelUID), nil, &out); err != nil {
		return nil, err
	}
	r.cache.Add(&out)
	return &out, nil
}

// CreateReservation stores a new reservation.
func (r *CatalogRepo) CreateReservation(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	var out model.Reservation
	if err := r.call(ctx, BreakerReservationCreate, http.MethodPost, "/reservations", res, &out); err != nil {
		return nil, err
	}
	if out.ReservationUID == "" {
		// Some deployments answer 201 with an empty body
		out = *res
	}
	return &out, nil
}

// ListReservations returns the caller's reservations.
func (r *CatalogRepo) ListReservations(ctx context.Context) ([]*model.Reservation, error) {
	var out []*model.Reservation
	if err := r.call(ctx, BreakerReservationList, http.MethodGet, "/reservations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReservation returns one of the caller's reservations.
func (r *CatalogRepo) GetReservation(ctx context.Context, reservationUID string) (*model.Reservation, error) {
	var out model.Reservation
	if err := r.call(ctx, BreakerReservationGet, http.MethodGet, "/reservations/"+url.PathEscape(reservationUID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetReservationStatus updates a reservation's status and returns the
// record the service answered with, which is empty when it replies with no
// body.
func (r *CatalogRepo) SetReservationStatus(ctx context.Context, reservationUID, status string) (*model.Reservation, error) {
	body := map[string]string{"status": status}
	var out model.Reservation
	if err := r.call(ctx, BreakerReservationUpdate, http.MethodPatch, "/reservations/"+url.PathEscape(reservationUID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
