package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment logs one gateway round-trip attempt. Entries are append-mostly:
// the pending entry written at initiation is finalized once, and replayed
// callbacks are detected by the unique pidx.
type Payment struct {
	ID               uuid.UUID
	TransactionID    string
	Pidx             string
	PurchaseID       uuid.UUID
	Amount           decimal.Decimal
	VerificationData json.RawMessage
	Gateway          string
	Status           PaymentStatus
	PaymentDate      time.Time
}
