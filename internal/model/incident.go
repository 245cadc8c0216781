package model

// Incident kinds recorded when the gateway leaves state it cannot repair.
const (
	// IncidentOrphanPayment: payment committed, reservation creation failed.
	IncidentOrphanPayment = "ORPHAN_PAYMENT"
	// IncidentUnrefundedCancellation: reservation canceled, payment still PAID.
	IncidentUnrefundedCancellation = "UNREFUNDED_CANCELLATION"
	// IncidentLoyaltyUpdateExpired: a loyalty counter update ran out of TTL.
	IncidentLoyaltyUpdateExpired = "LOYALTY_UPDATE_EXPIRED"
)

// Incident describes one acknowledged inconsistency.
type Incident struct {
	Kind           string
	Username       string
	ReservationUID string
	PaymentUID     string
	Details        map[string]interface{}
}
