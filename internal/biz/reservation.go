package biz

import (
	"context"
	"errors"
	"time"

	"HotelGateway/internal/model"
	pkglog "HotelGateway/pkg/log"
	"HotelGateway/pkg/metadata"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// CreateReservationRequest is the booking request body.
type CreateReservationRequest struct {
	HotelUID  string `json:"hotelUid"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// PaymentInfo is the payment summary shown with a reservation.
type PaymentInfo struct {
	Status string  `json:"status"`
	Price  float64 `json:"price"`
}

// ReservationView is a reservation as the gateway presents it: the payment
// uid is replaced by the payment summary.
type ReservationView struct {
	ReservationUID string      `json:"reservationUid"`
	HotelUID       string      `json:"hotelUid"`
	StartDate      string      `json:"startDate"`
	EndDate        string      `json:"endDate"`
	Status         string      `json:"status"`
	Discount       *int        `json:"discount,omitempty"`
	Payment        PaymentInfo `json:"payment"`
}

// LoyaltyInfo is the loyalty summary in the user view. Both fields are
// omitted when the loyalty service could not provide a record.
type LoyaltyInfo struct {
	Status   string `json:"status,omitempty"`
	Discount int    `json:"discount,omitempty"`
}

// UserInfo aggregates a user's reservations and loyalty.
type UserInfo struct {
	Reservations []*ReservationView `json:"reservations"`
	Loyalty      LoyaltyInfo        `json:"loyalty"`
}

// ReservationUsecase orchestrates the reservation, payment and loyalty
// services. Saga steps run strictly in order and are never compensated;
// inconsistencies left behind are recorded as incidents.
type ReservationUsecase struct {
	catalog   CatalogRepo
	payments  PaymentRepo
	loyalty   LoyaltyRepo
	queue     LoyaltyQueue
	incidents IncidentRecorder
	logger    *pkglog.LogHelper

	now    func() time.Time
	newUID func() string
}

// NewReservationUsecase creates a ReservationUsecase.
func NewReservationUsecase(
	catalog CatalogRepo,
	payments PaymentRepo,
	loyalty LoyaltyRepo,
	queue LoyaltyQueue,
	incidents IncidentRecorder,
	logger log.Logger,
) *ReservationUsecase {
	return &ReservationUsecase{
		catalog:   catalog,
		payments:  payments,
		loyalty:   loyalty,
		queue:     queue,
		incidents: incidents,
		logger:    pkglog.NewLogHelper(logger),
		now:       time.Now,
		newUID:    uuid.NewString,
	}
}

// ListHotels returns one catalog page with totalElements set to the number
// of items on it.
func (uc *ReservationUsecase) ListHotels(ctx context.Context, page, size int) (*model.HotelPage, error) {
	if page < 1 || size < 1 {
		return nil, invalidArgument("page and size must be positive")
	}

	out, err := uc.catalog.ListHotels(ctx, page, size)
	if err != nil {
		return nil, unavailable(ServiceReservation, err)
	}
	if out.Items == nil {
		out.Items = []*model.Hotel{}
	}
	out.TotalElements = len(out.Items)
	return out, nil
}

// CreateReservation books a stay: hotel lookup, loyalty lookup or creation,
// payment, loyalty increment, reservation.
func (uc *ReservationUsecase) CreateReservation(ctx context.Context, username string, req *CreateReservationRequest) (*ReservationView, error) {
	if username == "" {
		return nil, ErrMissingUser
	}
	nights, err := validateStay(req)
	if err != nil {
		return nil, err
	}
	ctx = metadata.WithUsername(ctx, username)

	hotel, err := uc.catalog.GetHotel(ctx, req.HotelUID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, hotelNotFound(req.HotelUID)
	}
	if err != nil {
		uc.logger.SagaFailure(ctx, "hotel lookup failed", err, "hotel_uid", req.HotelUID)
		return nil, unavailable(ServiceReservation, err)
	}

	loyalty, err := uc.getOrCreateLoyalty(ctx)
	if err != nil {
		uc.logger.SagaFailure(ctx, "loyalty lookup failed", err, "username", username)
		return nil, unavailable(ServiceLoyalty, err)
	}

	discount := DiscountFor(loyalty.Status)
	payment := &model.Payment{
		PaymentUID: uc.newUID(),
		Status:     model.StatusPaid,
		Price:      TotalPrice(hotel.Price, nights, discount),
	}
	if _, err := uc.payments.CreatePayment(ctx, payment); err != nil {
		uc.logger.SagaFailure(ctx, "payment creation failed", err, "username", username)
		return nil, unavailable(ServicePayment, err)
	}
	uc.logger.Saga(ctx, "payment created", "payment_uid", payment.PaymentUID, "price", payment.Price)

	uc.enqueueLoyalty(ctx, username, model.DirectionInc)

	reservation := &model.Reservation{
		ReservationUID: uc.newUID(),
		HotelUID:       req.HotelUID,
		PaymentUID:     payment.PaymentUID,
		Status:         model.StatusPaid,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Username:       username,
	}
	created, err := uc.catalog.CreateReservation(ctx, reservation)
	if err != nil {
		uc.logger.SagaFailure(ctx, "reservation creation failed after payment", err, "payment_uid", payment.PaymentUID)
		uc.incidents.Record(ctx, &model.Incident{
			Kind:           model.IncidentOrphanPayment,
			Username:       username,
			ReservationUID: reservation.ReservationUID,
			PaymentUID:     payment.PaymentUID,
			Details: map[string]interface{}{
				"hotel_uid": req.HotelUID,
				"price":     payment.Price,
				"error":     err.Error(),
			},
		})
		return nil, unavailable(ServiceReservation, err)
	}
	uc.logger.Saga(ctx, "reservation created", "reservation_uid", created.ReservationUID)

	view := newReservationView(created, payment)
	view.Discount = &discount
	return view, nil
}

// CancelReservation cancels a reservation, then its payment, then queues
// the loyalty decrement.
func (uc *ReservationUsecase) CancelReservation(ctx context.Context, username, reservationUID string) error {
	if username == "" {
		return ErrMissingUser
	}
	ctx = metadata.WithUsername(ctx, username)

	reservation, err := uc.catalog.SetReservationStatus(ctx, reservationUID, model.StatusCanceled)
	if errors.Is(err, model.ErrNotFound) {
		return reservationNotFound(reservationUID)
	}
	if err != nil {
		uc.logger.SagaFailure(ctx, "reservation cancel failed", err, "reservation_uid", reservationUID)
		return unavailable(ServiceReservation, err)
	}
	uc.logger.Saga(ctx, "reservation canceled", "reservation_uid", reservationUID)

	paymentUID := reservation.PaymentUID
	if paymentUID == "" {
		// The service answered without a body; read the record back.
		stored, err := uc.catalog.GetReservation(ctx, reservationUID)
		if err != nil {
			uc.recordUnrefunded(ctx, username, reservationUID, "", err)
			return unavailable(ServiceReservation, err)
		}
		paymentUID = stored.PaymentUID
	}

	if err := uc.payments.SetPaymentStatus(ctx, paymentUID, model.StatusCanceled); err != nil {
		uc.logger.SagaFailure(ctx, "payment cancel failed", err, "payment_uid", paymentUID)
		uc.recordUnrefunded(ctx, username, reservationUID, paymentUID, err)
		return unavailable(ServicePayment, err)
	}

	uc.enqueueLoyalty(ctx, username, model.DirectionDec)
	return nil
}

// ListReservations returns the user's reservations with payment summaries.
func (uc *ReservationUsecase) ListReservations(ctx context.Context, username string) ([]*ReservationView, error) {
	if username == "" {
		return nil, ErrMissingUser
	}
	ctx = metadata.WithUsername(ctx, username)

	reservations, err := uc.catalog.ListReservations(ctx)
	if err != nil {
		return nil, unavailable(ServiceReservation, err)
	}

	views := make([]*ReservationView, 0, len(reservations))
	for _, r := range reservations {
		view, err := uc.enrich(ctx, r)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetReservation returns one of the user's reservations.
func (uc *ReservationUsecase) GetReservation(ctx context.Context, username, reservationUID string) (*ReservationView, error) {
	if username == "" {
		return nil, ErrMissingUser
	}
	ctx = metadata.WithUsername(ctx, username)

	r, err := uc.catalog.GetReservation(ctx, reservationUID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, reservationNotFound(reservationUID)
	}
	if err != nil {
		return nil, unavailable(ServiceReservation, err)
	}
	return uc.enrich(ctx, r)
}

// GetLoyalty returns the user's loyalty record.
func (uc *ReservationUsecase) GetLoyalty(ctx context.Context, username string) (*model.Loyalty, error) {
	if username == "" {
		return nil, ErrMissingUser
	}
	ctx = metadata.WithUsername(ctx, username)

	l, err := uc.loyalty.GetLoyalty(ctx)
	if err != nil {
		return nil, unavailable(ServiceLoyalty, err)
	}
	if l == nil {
		return nil, unavailable(ServiceLoyalty, model.ErrNotFound)
	}
	return l, nil
}

// Me returns the user's reservations and loyalty summary. A loyalty record
// that can be neither read nor created yields an empty summary.
func (uc *ReservationUsecase) Me(ctx context.Context, username string) (*UserInfo, error) {
	reservations, err := uc.ListReservations(ctx, username)
	if err != nil {
		return nil, err
	}

	info := &UserInfo{Reservations: reservations}
	loyalty, err := uc.getOrCreateLoyalty(metadata.WithUsername(ctx, username))
	if err != nil {
		uc.logger.Warnw("msg", "loyalty unavailable for user view", "username", username, "error", err)
		return info, nil
	}
	info.Loyalty = LoyaltyInfo{Status: loyalty.Status, Discount: loyalty.Discount}
	return info, nil
}

func (uc *ReservationUsecase) getOrCreateLoyalty(ctx context.Context) (*model.Loyalty, error) {
	l, getErr := uc.loyalty.GetLoyalty(ctx)
	if getErr == nil && l != nil {
		return l, nil
	}

	l, createErr := uc.loyalty.CreateLoyalty(ctx)
	if createErr != nil {
		return nil, errors.Join(getErr, createErr)
	}
	return l, nil
}

// enqueueLoyalty queues a counter update. Failures are logged only: the
// booking itself has already succeeded.
func (uc *ReservationUsecase) enqueueLoyalty(ctx context.Context, username, direction string) {
	job := &model.LoyaltyJob{
		Token:     uc.newUID(),
		Username:  username,
		Direction: direction,
		Attempt:   1,
		CreatedAt: uc.now().UnixMilli(),
	}
	if err := uc.queue.Push(ctx, job); err != nil {
		uc.logger.SagaFailure(ctx, "loyalty update not queued", err, "username", username, "direction", direction)
	}
}

func (uc *ReservationUsecase) recordUnrefunded(ctx context.Context, username, reservationUID, paymentUID string, cause error) {
	uc.incidents.Record(ctx, &model.Incident{
		Kind:           model.IncidentUnrefundedCancellation,
		Username:       username,
		ReservationUID: reservationUID,
		PaymentUID:     paymentUID,
		Details:        map[string]interface{}{"error": cause.Error()},
	})
}

func (uc *ReservationUsecase) enrich(ctx context.Context, r *model.Reservation) (*ReservationView, error) {
	p, err := uc.payments.GetPayment(ctx, r.PaymentUID)
	if err != nil {
		return nil, unavailable(ServicePayment, err)
	}
	return newReservationView(r, p), nil
}

func newReservationView(r *model.Reservation, p *model.Payment) *ReservationView {
	return &ReservationView{
		ReservationUID: r.ReservationUID,
		HotelUID:       r.HotelUID,
		StartDate:      model.FormatDate(r.StartDate),
		EndDate:        model.FormatDate(r.EndDate),
		Status:         r.Status,
		Payment:        PaymentInfo{Status: p.Status, Price: p.Price},
	}
}

const secondsPerDay = 24 * 60 * 60

// validateStay checks the request and returns the number of nights.
func validateStay(req *CreateReservationRequest) (int, error) {
	if req == nil || req.HotelUID == "" || req.StartDate == "" || req.EndDate == "" {
		return 0, invalidArgument("hotelUid, startDate and endDate are required")
	}
	start, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		return 0, invalidArgument("startDate %q is not a YYYY-MM-DD date", req.StartDate)
	}
	end, err := time.Parse(model.DateLayout, req.EndDate)
	if err != nil {
		return 0, invalidArgument("endDate %q is not a YYYY-MM-DD date", req.EndDate)
	}
	if !end.After(start) {
		return 0, invalidArgument("endDate must be after startDate")
	}
	// Both dates are UTC midnights. time.Duration saturates near 292 years.
	return int((end.Unix() - start.Unix()) / secondsPerDay), nil
}
