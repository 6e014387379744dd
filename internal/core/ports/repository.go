package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sujanms/gharbhada/internal/core/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Room, error)
	ListUnavailable(ctx context.Context) ([]domain.Room, error)

	// SetAvailability flips is_available only when the row currently holds
	// expectedPrior. Returns domain.ErrStaleAvailability when no row matched.
	SetAvailability(ctx context.Context, roomID uuid.UUID, available, expectedPrior bool) error

	UpdateApproval(ctx context.Context, roomID uuid.UUID, status domain.RoomApprovalStatus) error
}

type PurchaseRepository interface {
	// CreateWithBooking atomically checks for an active purchase by the same
	// (tenant, room) pair and, absent one, inserts the purchase and its
	// booking projection in a single transaction. Returns
	// domain.ErrDuplicateActiveBooking when the check fails.
	CreateWithBooking(ctx context.Context, item *domain.PurchasedItem, booking *domain.Booking) error

	GetByID(ctx context.Context, purchaseID uuid.UUID) (*domain.PurchasedItem, error)
	UpdateStatus(ctx context.Context, purchaseID uuid.UUID, status domain.PurchaseStatus) error

	// FailIfPending marks the purchase failed only while it still sits in
	// pending or awaiting_approval. Returns domain.ErrInvalidState when the
	// purchase settled in the meantime.
	FailIfPending(ctx context.Context, purchaseID uuid.UUID) error
	FindCompletedByRoom(ctx context.Context, roomID uuid.UUID) (*domain.PurchasedItem, error)
	ListCompletedByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.PurchasedItem, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.PurchasedItem, error)
}

type BookingRepository interface {
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingPaymentStatus) error

	// FinalizeGatewaySuccess marks the booking for the purchase as paid and
	// records the external reference id. Idempotent: finalizing an already
	// successful booking is a no-op.
	FinalizeGatewaySuccess(ctx context.Context, purchaseID uuid.UUID, refID string) error

	ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]domain.Booking, error)
	ListPendingCashByLandlord(ctx context.Context, landlordID uuid.UUID) ([]domain.Booking, error)
}

type PaymentRepository interface {
	// Create inserts a payment attempt. The pidx column is unique; inserting
	// a duplicate returns domain.ErrDuplicatePayment.
	Create(ctx context.Context, payment *domain.Payment) error

	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	MarkStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateContact is best-effort profile maintenance during booking; it is
	// not transactional with booking creation.
	UpdateContact(ctx context.Context, userID uuid.UUID, name, phone string) error
}
