package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RoomApprovalStatus string

const (
	RoomPending  RoomApprovalStatus = "pending"
	RoomApproved RoomApprovalStatus = "approved"
	RoomRejected RoomApprovalStatus = "rejected"
)

type Room struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Lat            float64
	Lon            float64
	City           string
	District       string
	Ward           string
	Description    string
	PricePerDay    decimal.Decimal
	Images         []string
	MerchantCode   string
	ApprovalStatus RoomApprovalStatus
	IsAvailable    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *Room) Bookable() bool {
	return r.IsAvailable
}

// ExpectedTotal is the authoritative charge for renting this room over the
// given period: per-day price times the day count, with partial days rounded
// up. Caller-supplied totals must match this exactly.
func (r *Room) ExpectedTotal(p Period) decimal.Decimal {
	return r.PricePerDay.Mul(decimal.NewFromInt(int64(p.Days())))
}
