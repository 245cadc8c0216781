package service

import (
	"context"

	"HotelGateway/internal/biz"
	"HotelGateway/internal/model"
	"HotelGateway/pkg/metadata"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// ListHotelsRequest is the hotel catalog query. Zero values select the
// first page of ten.
type ListHotelsRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// ReservationRequest addresses one reservation by uid.
type ReservationRequest struct {
	ReservationUID string `json:"uid"`
}

// Empty is the reply of operations without a body.
type Empty struct{}

// GatewayService implements the public gateway API. The caller identity is
// read from the request context, where the identity middleware stores the
// X-User-Name header.
type GatewayService struct {
	uc     *biz.ReservationUsecase
	logger *log.Helper
}

// NewGatewayService creates a new GatewayService.
func NewGatewayService(uc *biz.ReservationUsecase, logger log.Logger) *GatewayService {
	return &GatewayService{
		uc:     uc,
		logger: log.NewHelper(logger),
	}
}

// ListHotels returns one page of the hotel catalog.
func (s *GatewayService) ListHotels(ctx context.Context, req *ListHotelsRequest) (*model.HotelPage, error) {
	page, size := req.Page, req.Size
	if page == 0 {
		page = defaultPage
	}
	if size == 0 {
		size = defaultPageSize
	}
	s.logger.Debugw("msg", "ListHotels called", "page", page, "size", size)

	return s.uc.ListHotels(ctx, page, size)
}

// CreateReservation books a hotel stay.
func (s *GatewayService) CreateReservation(ctx context.Context, req *biz.CreateReservationRequest) (*biz.ReservationView, error) {
	username := metadata.Username(ctx)
	s.logger.Infow("msg", "CreateReservation called", "username", username, "hotel_uid", req.HotelUID)

	view, err := s.uc.CreateReservation(ctx, username, req)
	if err != nil {
		s.logger.Errorw("msg", "failed to create reservation", "username", username, "error", err)
		return nil, err
	}
	return view, nil
}

// ListReservations returns the caller's reservations.
func (s *GatewayService) ListReservations(ctx context.Context, _ *Empty) ([]*biz.ReservationView, error) {
	return s.uc.ListReservations(ctx, metadata.Username(ctx))
}

// GetReservation returns one of the caller's reservations.
func (s *GatewayService) GetReservation(ctx context.Context, req *ReservationRequest) (*biz.ReservationView, error) {
	return s.uc.GetReservation(ctx, metadata.Username(ctx), req.ReservationUID)
}

// CancelReservation cancels a reservation and refunds its payment.
func (s *GatewayService) CancelReservation(ctx context.Context, req *ReservationRequest) (*Empty, error) {
	username := metadata.Username(ctx)
	s.logger.Infow("msg", "CancelReservation called", "username", username, "reservation_uid", req.ReservationUID)

	if err := s.uc.CancelReservation(ctx, username, req.ReservationUID); err != nil {
		s.logger.Errorw("msg", "failed to cancel reservation", "reservation_uid", req.ReservationUID, "error", err)
		return nil, err
	}
	return &Empty{}, nil
}

// GetLoyalty returns the caller's loyalty record.
func (s *GatewayService) GetLoyalty(ctx context.Context, _ *Empty) (*model.Loyalty, error) {
	return s.uc.GetLoyalty(ctx, metadata.Username(ctx))
}

// Me returns the caller's reservations and loyalty summary.
func (s *GatewayService) Me(ctx context.Context, _ *Empty) (*biz.UserInfo, error) {
	return s.uc.Me(ctx, metadata.Username(ctx))
}
