package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors, matched with errors.Is. Handlers map these onto HTTP
// status codes; services and repositories wrap them with context.
var (
	// Validation failures (user-correctable).
	ErrInvalidPeriod = errors.New("invalid booking period: end must be after start")
	ErrPriceMismatch = errors.New("quoted price does not match room rate")
	ErrMissingFields = errors.New("required fields missing")

	// Conflicts (retry with fresh state).
	ErrRoomUnavailable        = errors.New("room is not available")
	ErrDuplicateActiveBooking = errors.New("an active booking already exists for this tenant and room")
	ErrDuplicatePayment       = errors.New("payment with this idempotency token already recorded")
	ErrStaleAvailability      = errors.New("room availability changed concurrently")
	ErrInvalidState           = errors.New("record is not in a state permitting this transition")

	// Not found.
	ErrRoomNotFound     = errors.New("room not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrPurchaseNotFound = errors.New("purchased item not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUserNotFound     = errors.New("user not found")

	// Authorization.
	ErrForbidden = errors.New("principal not permitted to perform this operation")

	// Gateway verification (security-relevant, never downgraded).
	ErrInvalidSignature    = errors.New("gateway callback signature mismatch")
	ErrTransactionMismatch = errors.New("gateway status confirmation does not match callback")

	// Upstream (retryable by the client).
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
)

// PriceMismatchError carries both sides of a failed price check so the
// tenant can be told the authoritative total.
type PriceMismatchError struct {
	Quoted   decimal.Decimal
	Expected decimal.Decimal
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("quoted price %s does not match expected %s", e.Quoted, e.Expected)
}

func (e *PriceMismatchError) Unwrap() error { return ErrPriceMismatch }

// VerificationError wraps a gateway verification failure with the stage at
// which it was rejected. The raw payload is deliberately not included.
type VerificationError struct {
	Stage string // "signature" or "status_confirmation"
	Err   error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("gateway verification failed at %s: %v", e.Stage, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }
