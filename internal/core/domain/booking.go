package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingPaymentStatus string

const (
	BookingPending         BookingPaymentStatus = "pending"
	BookingPendingApproval BookingPaymentStatus = "pending_approval"
	BookingSuccess         BookingPaymentStatus = "success"
	BookingFailed          BookingPaymentStatus = "failed"
)

// Booking is the landlord-visible projection of a purchase. Its payment
// status vocabulary is distinct from PurchaseStatus and the two move in
// lockstep through the reconciliation engine only.
type Booking struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	RoomID        uuid.UUID
	PurchaseID    uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	PaymentStatus BookingPaymentStatus
	GatewayRefID  *string
	Period        Period
	TenantName    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (b *Booking) AwaitingCashApproval() bool {
	return b.PaymentMethod == MethodCash && b.PaymentStatus == BookingPendingApproval
}
