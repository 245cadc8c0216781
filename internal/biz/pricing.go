package biz

import (
	"HotelGateway/internal/model"

	"github.com/shopspring/decimal"
)

// DiscountFor returns the loyalty discount percent for a tier.
func DiscountFor(status string) int {
	switch status {
	case model.LoyaltyBronze:
		return 5
	case model.LoyaltySilver:
		return 7
	case model.LoyaltyGold:
		return 10
	default:
		return 0
	}
}

// TotalPrice is nights × nightly price reduced by discount percent, rounded
// to cents.
func TotalPrice(nightly float64, nights, discount int) float64 {
	base := decimal.NewFromFloat(nightly).Mul(decimal.NewFromInt(int64(nights)))
	total := base.Mul(decimal.NewFromInt(int64(100 - discount))).Div(decimal.NewFromInt(100))
	return total.Round(2).InexactFloat64()
}
