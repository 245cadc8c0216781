package biz

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// Error reasons returned to gateway clients.
const (
	ReasonMissingUser         = "MISSING_USER"
	ReasonInvalidArgument     = "INVALID_ARGUMENT"
	ReasonServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ReasonHotelNotFound       = "HOTEL_NOT_FOUND"
	ReasonReservationNotFound = "RESERVATION_NOT_FOUND"
)

// Downstream service names as they appear in unavailable messages.
const (
	ServiceReservation = "Reservation"
	ServicePayment     = "Payment"
	ServiceLoyalty     = "Loyalty"
)

// ErrMissingUser is returned when the request carries no X-User-Name.
var ErrMissingUser = errors.BadRequest(ReasonMissingUser, "X-User-Name header is required")

func invalidArgument(format string, args ...interface{}) error {
	return errors.BadRequest(ReasonInvalidArgument, fmt.Sprintf(format, args...))
}

// unavailable reports a failed downstream step, e.g. "Payment Service
// unavailable". The cause stays reachable through errors.Is.
func unavailable(service string, cause error) error {
	return errors.ServiceUnavailable(ReasonServiceUnavailable, service+" Service unavailable").WithCause(cause)
}

func hotelNotFound(hotelUID string) error {
	return errors.NotFound(ReasonHotelNotFound, fmt.Sprintf("hotel %s not found", hotelUID))
}

func reservationNotFound(reservationUID string) error {
	return errors.NotFound(ReasonReservationNotFound, fmt.Sprintf("reservation %s not found", reservationUID))
}
