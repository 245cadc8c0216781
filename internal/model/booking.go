// Package model holds the records exchanged between the gateway and the
// downstream reservation, payment and loyalty services.
package model

import (
	"errors"
	"time"
)

// Reservation and payment statuses.
const (
	StatusPaid     = "PAID"
	StatusCanceled = "CANCELED"
)

// Loyalty tiers.
const (
	LoyaltyBronze = "BRONZE"
	LoyaltySilver = "SILVER"
	LoyaltyGold   = "GOLD"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Hotel is a catalog entry served by the reservation service.
type Hotel struct {
	HotelUID string  `json:"hotelUid"`
	Name     string  `json:"name,omitempty"`
	Country  string  `json:"country,omitempty"`
	City     string  `json:"city,omitempty"`
	Address  string  `json:"address,omitempty"`
	Stars    int     `json:"stars,omitempty"`
	Price    float64 `json:"price"`
}

// HotelPage is one page of the hotel catalog.
type HotelPage struct {
	Page          int      `json:"page"`
	PageSize      int      `json:"pageSize"`
	TotalElements int      `json:"totalElements"`
	Items         []*Hotel `json:"items"`
}

// Reservation is the record stored by the reservation service.
type Reservation struct {
	ReservationUID string `json:"reservationUid"`
	HotelUID       string `json:"hotelUid"`
	PaymentUID     string `json:"paymentUid"`
	Status         string `json:"status"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	Username       string `json:"username,omitempty"`
}

// Payment is the record stored by the payment service.
type Payment struct {
	PaymentUID string  `json:"paymentUid"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
}

// Loyalty is a user's loyalty record.
type Loyalty struct {
	Status           string `json:"status"`
	Discount         int    `json:"discount"`
	ReservationCount int    `json:"reservationCount"`
}

// FormatDate renders a downstream timestamp or date as YYYY-MM-DD. Values
// that cannot be parsed are returned unchanged.
func FormatDate(s string) string {
	for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}

// ErrNotFound is returned when a downstream service reports that the
// requested record does not exist.
var ErrNotFound = errors.New("resource not found")
