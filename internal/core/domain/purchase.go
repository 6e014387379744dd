package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodCash  PaymentMethod = "cash"
	MethodEsewa PaymentMethod = "esewa"
)

type PurchaseStatus string

const (
	PurchasePending          PurchaseStatus = "pending"
	PurchaseAwaitingApproval PurchaseStatus = "awaiting_approval"
	PurchaseCompleted        PurchaseStatus = "completed"
	PurchaseFailed           PurchaseStatus = "failed"
)

// PurchasedItem is the tenant-facing record of intent to rent a room for a
// period. It is the dedup key: at most one active entry may exist per
// (tenant, room) pair at any time.
type PurchasedItem struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	RoomID        uuid.UUID
	PaymentMethod PaymentMethod
	TotalPrice    decimal.Decimal
	Status        PurchaseStatus
	Period        Period
	TenantName    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Active reports whether this entry still blocks a new booking of the same
// room by the same tenant: any non-failed status whose period has not elapsed.
func (p *PurchasedItem) Active(now time.Time) bool {
	if p.Status == PurchaseFailed {
		return false
	}
	return !p.Period.EndedBy(now)
}
