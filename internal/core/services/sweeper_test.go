package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/ports/mocks"
	"github.com/sujanms/gharbhada/internal/core/services"
)

func newSweeper(t *testing.T) (*services.Sweeper, *engineMocks) {
	m := &engineMocks{
		rooms:     mocks.NewRoomRepository(t),
		purchases: mocks.NewPurchaseRepository(t),
		bookings:  mocks.NewBookingRepository(t),
		payments:  mocks.NewPaymentRepository(t),
		users:     mocks.NewUserRepository(t),
		gateway:   mocks.NewGatewayVerifier(t),
	}

	db, redisMock := redismock.NewClientMock()
	m.redis = redisMock

	svc := services.NewBookingService(m.rooms, m.purchases, m.bookings, m.payments, m.users, m.gateway, db)
	return services.NewSweeper(svc, time.Minute, 24*time.Hour), m
}

func heldRoom() domain.Room {
	return domain.Room{ID: uuid.New(), IsAvailable: false}
}

func TestReleaseExpired_ReleasesElapsedBooking(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	room := heldRoom()
	purchase := &domain.PurchasedItem{
		ID:     uuid.New(),
		RoomID: room.ID,
		Status: domain.PurchaseCompleted,
		Period: domain.Period{
			StartDate: time.Now().Add(-96 * time.Hour),
			EndDate:   time.Now().Add(-1 * time.Hour),
		},
	}

	m.rooms.On("ListUnavailable", ctx).Return([]domain.Room{room}, nil)
	m.purchases.On("FindCompletedByRoom", ctx, room.ID).Return(purchase, nil)
	m.rooms.On("SetAvailability", ctx, room.ID, true, false).Return(nil)
	m.redis.ExpectDel("rooms:all").SetVal(1)

	released, err := sweeper.ReleaseExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, released)

	if err := m.redis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestReleaseExpired_KeepsRoomDuringActivePeriod(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	room := heldRoom()
	purchase := &domain.PurchasedItem{
		ID:     uuid.New(),
		RoomID: room.ID,
		Status: domain.PurchaseCompleted,
		Period: domain.Period{
			StartDate: time.Now().Add(-24 * time.Hour),
			EndDate:   time.Now().Add(48 * time.Hour),
		},
	}

	m.rooms.On("ListUnavailable", ctx).Return([]domain.Room{room}, nil)
	m.purchases.On("FindCompletedByRoom", ctx, room.ID).Return(purchase, nil)

	released, err := sweeper.ReleaseExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, released)
	m.rooms.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReleaseExpired_SkipsRoomWithoutCompletedPurchase(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	room := heldRoom()

	m.rooms.On("ListUnavailable", ctx).Return([]domain.Room{room}, nil)
	m.purchases.On("FindCompletedByRoom", ctx, room.ID).Return(nil, domain.ErrPurchaseNotFound)

	released, err := sweeper.ReleaseExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, released)
}

// Losing the conditional flip to a concurrent writer is not an error; the
// next pass picks the room up again.
func TestReleaseExpired_ToleratesConcurrentFlip(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	room := heldRoom()
	purchase := &domain.PurchasedItem{
		ID:     uuid.New(),
		RoomID: room.ID,
		Status: domain.PurchaseCompleted,
		Period: domain.Period{
			StartDate: time.Now().Add(-96 * time.Hour),
			EndDate:   time.Now().Add(-1 * time.Hour),
		},
	}

	m.rooms.On("ListUnavailable", ctx).Return([]domain.Room{room}, nil)
	m.purchases.On("FindCompletedByRoom", ctx, room.ID).Return(purchase, nil)
	m.rooms.On("SetAvailability", ctx, room.ID, true, false).Return(domain.ErrStaleAvailability)

	released, err := sweeper.ReleaseExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, released)
}

func TestExpireStalePending_FailsAbandonedEsewaPurchase(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	purchase := domain.PurchasedItem{
		ID:            uuid.New(),
		PaymentMethod: domain.MethodEsewa,
		Status:        domain.PurchasePending,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	}
	booking := &domain.Booking{ID: uuid.New(), PurchaseID: purchase.ID}
	payment := &domain.Payment{ID: uuid.New(), Status: domain.PaymentPending}

	m.purchases.On("ListStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.PurchasedItem{purchase}, nil)
	m.purchases.On("FailIfPending", ctx, purchase.ID).Return(nil)
	m.bookings.On("GetByPurchaseID", ctx, purchase.ID).Return(booking, nil)
	m.bookings.On("UpdatePaymentStatus", ctx, booking.ID, domain.BookingFailed).Return(nil)
	m.payments.On("GetByTransactionID", ctx, purchase.ID.String()).Return(payment, nil)
	m.payments.On("MarkStatus", ctx, payment.ID, domain.PaymentFailed).Return(nil)

	expired, err := sweeper.ExpireStalePending(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
}

func TestExpireStalePending_CashBookingSkipsPaymentLookup(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	purchase := domain.PurchasedItem{
		ID:            uuid.New(),
		PaymentMethod: domain.MethodCash,
		Status:        domain.PurchaseAwaitingApproval,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	}
	booking := &domain.Booking{ID: uuid.New(), PurchaseID: purchase.ID}

	m.purchases.On("ListStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.PurchasedItem{purchase}, nil)
	m.purchases.On("FailIfPending", ctx, purchase.ID).Return(nil)
	m.bookings.On("GetByPurchaseID", ctx, purchase.ID).Return(booking, nil)
	m.bookings.On("UpdatePaymentStatus", ctx, booking.ID, domain.BookingFailed).Return(nil)

	expired, err := sweeper.ExpireStalePending(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, expired)
	m.payments.AssertNotCalled(t, "GetByTransactionID", mock.Anything, mock.Anything)
}

// A purchase that a concurrent callback or approval settled between the
// stale listing and the fail transition must be left untouched.
func TestExpireStalePending_SkipsConcurrentlySettled(t *testing.T) {
	sweeper, m := newSweeper(t)

	ctx := context.Background()
	purchase := domain.PurchasedItem{
		ID:            uuid.New(),
		PaymentMethod: domain.MethodEsewa,
		Status:        domain.PurchasePending,
		CreatedAt:     time.Now().Add(-48 * time.Hour),
	}

	m.purchases.On("ListStalePending", ctx, mock.AnythingOfType("time.Time")).
		Return([]domain.PurchasedItem{purchase}, nil)
	m.purchases.On("FailIfPending", ctx, purchase.ID).Return(domain.ErrInvalidState)

	expired, err := sweeper.ExpireStalePending(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, expired)
	m.bookings.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	m.payments.AssertNotCalled(t, "MarkStatus", mock.Anything, mock.Anything, mock.Anything)
}
