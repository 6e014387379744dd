package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/ports"
	"github.com/sujanms/gharbhada/internal/core/ports/mocks"
	"github.com/sujanms/gharbhada/internal/core/services"
)

type engineMocks struct {
	rooms     *mocks.RoomRepository
	purchases *mocks.PurchaseRepository
	bookings  *mocks.BookingRepository
	payments  *mocks.PaymentRepository
	users     *mocks.UserRepository
	gateway   *mocks.GatewayVerifier
	redis     redismock.ClientMock
}

func newEngine(t *testing.T) (*services.BookingService, *engineMocks) {
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
	return svc, m
}

func availableRoom(ownerID uuid.UUID, pricePerDay int64) *domain.Room {
	return &domain.Room{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        "Sunny room in Baneshwor",
		PricePerDay: decimal.NewFromInt(pricePerDay),
		IsAvailable: true,
	}
}

// Three full days at 1000/day must cost exactly 3000.
func threeDayRequest(roomID uuid.UUID, total string) services.InitiateBookingRequest {
	return services.InitiateBookingRequest{
		RoomID:     roomID.String(),
		TotalPrice: total,
		StartDate:  "2026-10-01T00:00:00Z",
		EndDate:    "2026-10-04T00:00:00Z",
	}
}

func TestInitiateBooking_Cash_Success(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	tenant := domain.Principal{UserID: uuid.New(), Role: domain.RoleTenant}
	room := availableRoom(uuid.New(), 1000)

	req := threeDayRequest(room.ID, "3000")
	req.PaymentMethod = "cash"
	req.TenantName = "Ramita"
	req.Phone = "9841000000"

	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.users.On("UpdateContact", ctx, tenant.UserID, "Ramita", "9841000000").Return(nil)
	m.purchases.On("CreateWithBooking", ctx,
		mock.MatchedBy(func(p *domain.PurchasedItem) bool {
			return p.Status == domain.PurchaseAwaitingApproval &&
				p.TenantID == tenant.UserID &&
				p.TotalPrice.Equal(decimal.NewFromInt(3000))
		}),
		mock.MatchedBy(func(b *domain.Booking) bool {
			return b.PaymentStatus == domain.BookingPendingApproval &&
				b.PaymentMethod == domain.MethodCash
		}),
	).Return(nil)

	resp, err := svc.InitiateBooking(ctx, tenant, req)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, "awaiting_approval", resp.PurchaseState)
		assert.Equal(t, "pending_approval", resp.BookingState)
		assert.Equal(t, "3000", resp.TotalPrice)
		assert.Nil(t, resp.Redirect)
	}
}

func TestInitiateBooking_Esewa_Success(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	tenant := domain.Principal{UserID: uuid.New(), Role: domain.RoleTenant}
	room := availableRoom(uuid.New(), 1000)

	req := threeDayRequest(room.ID, "3000")
	req.PaymentMethod = "esewa"

	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.purchases.On("CreateWithBooking", ctx,
		mock.MatchedBy(func(p *domain.PurchasedItem) bool {
			return p.Status == domain.PurchasePending
		}),
		mock.MatchedBy(func(b *domain.Booking) bool {
			return b.PaymentStatus == domain.BookingPending
		}),
	).Return(nil)
	m.payments.On("Create", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentPending && p.Pidx != "" && p.Gateway == "esewa"
	})).Return(nil)
	m.gateway.On("SignRedirect", mock.Anything, mock.AnythingOfType("string")).
		Return(&ports.RedirectParams{Signature: "sig", SignedFieldNames: "total_amount,transaction_uuid,product_code"}, nil)

	resp, err := svc.InitiateBooking(ctx, tenant, req)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, "pending", resp.PurchaseState)
		if assert.NotNil(t, resp.Redirect) {
			assert.Equal(t, "sig", resp.Redirect.Signature)
		}
	}
}

func TestInitiateBooking_PriceMismatch(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	tenant := domain.Principal{UserID: uuid.New(), Role: domain.RoleTenant}
	room := availableRoom(uuid.New(), 1000)

	req := threeDayRequest(room.ID, "2999")
	req.PaymentMethod = "cash"

	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)

	resp, err := svc.InitiateBooking(ctx, tenant, req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrPriceMismatch)

	var mismatch *domain.PriceMismatchError
	if assert.ErrorAs(t, err, &mismatch) {
		assert.True(t, mismatch.Expected.Equal(decimal.NewFromInt(3000)))
	}
}

func TestInitiateBooking_InvalidPeriod(t *testing.T) {
	svc, _ := newEngine(t)

	ctx := context.Background()
	tenant := domain.Principal{UserID: uuid.New(), Role: domain.RoleTenant}

	req := services.InitiateBookingRequest{
		RoomID:        uuid.New().String(),
		TotalPrice:    "1000",
		PaymentMethod: "cash",
		StartDate:     "2026-10-04T00:00:00Z",
		EndDate:       "2026-10-01T00:00:00Z",
	}

	resp, err := svc.InitiateBooking(ctx, tenant, req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestInitiateBooking_RoomUnavailable(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	tenant := domain.Principal{UserID: uuid.New(), Role: domain.RoleTenant}
	room := availableRoom(uuid.New(), 1000)
	room.IsAvailable = false

	req := threeDayRequest(room.ID, "3000")
	req.PaymentMethod = "cash"

	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)

	resp, err := svc.InitiateBooking(ctx, tenant, req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrRoomUnavailable)
}

func TestInitiateBooking_DuplicateActive(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	tenant := domain.Principal{UserID: uuid.New(), Role: domain.RoleTenant}
	room := availableRoom(uuid.New(), 1000)

	req := threeDayRequest(room.ID, "3000")
	req.PaymentMethod = "cash"

	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.purchases.On("CreateWithBooking", ctx, mock.Anything, mock.Anything).
		Return(domain.ErrDuplicateActiveBooking)

	resp, err := svc.InitiateBooking(ctx, tenant, req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveBooking)
}

func pendingCashBooking(tenantID, roomID uuid.UUID) *domain.Booking {
	return &domain.Booking{
		ID:            uuid.New(),
		TenantID:      tenantID,
		RoomID:        roomID,
		PurchaseID:    uuid.New(),
		Amount:        decimal.NewFromInt(3000),
		PaymentMethod: domain.MethodCash,
		PaymentStatus: domain.BookingPendingApproval,
	}
}

func TestApproveCashBooking_Success(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	landlord := domain.Principal{UserID: uuid.New(), Role: domain.RoleLandlord}
	room := availableRoom(landlord.UserID, 1000)
	booking := pendingCashBooking(uuid.New(), room.ID)

	m.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.rooms.On("SetAvailability", ctx, room.ID, false, true).Return(nil)
	m.bookings.On("UpdatePaymentStatus", ctx, booking.ID, domain.BookingSuccess).Return(nil)
	m.purchases.On("UpdateStatus", ctx, booking.PurchaseID, domain.PurchaseCompleted).Return(nil)
	m.redis.ExpectDel("rooms:all").SetVal(1)

	updated, err := svc.ApproveCashBooking(ctx, landlord, booking.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, updated) {
		assert.Equal(t, domain.BookingSuccess, updated.PaymentStatus)
	}

	if err := m.redis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestApproveCashBooking_NotOwner(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	landlord := domain.Principal{UserID: uuid.New(), Role: domain.RoleLandlord}
	room := availableRoom(uuid.New(), 1000) // a different owner
	booking := pendingCashBooking(uuid.New(), room.ID)

	m.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)

	updated, err := svc.ApproveCashBooking(ctx, landlord, booking.ID)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApproveCashBooking_ConcurrentFlipLoses(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	landlord := domain.Principal{UserID: uuid.New(), Role: domain.RoleLandlord}
	room := availableRoom(landlord.UserID, 1000)
	booking := pendingCashBooking(uuid.New(), room.ID)

	m.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.rooms.On("SetAvailability", ctx, room.ID, false, true).Return(domain.ErrStaleAvailability)
	m.purchases.On("GetByID", ctx, booking.PurchaseID).
		Return(&domain.PurchasedItem{ID: booking.PurchaseID, Status: domain.PurchaseAwaitingApproval}, nil)

	updated, err := svc.ApproveCashBooking(ctx, landlord, booking.ID)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrStaleAvailability)
	m.bookings.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	m.purchases.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// A stale flip whose purchase already completed is a retry of this same
// approval, not a conflict; the remaining writes must be re-driven.
func TestApproveCashBooking_RetryAfterPartialFailure(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	landlord := domain.Principal{UserID: uuid.New(), Role: domain.RoleLandlord}
	room := availableRoom(landlord.UserID, 1000)
	booking := pendingCashBooking(uuid.New(), room.ID)

	m.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.rooms.On("SetAvailability", ctx, room.ID, false, true).Return(domain.ErrStaleAvailability)
	m.purchases.On("GetByID", ctx, booking.PurchaseID).
		Return(&domain.PurchasedItem{ID: booking.PurchaseID, Status: domain.PurchaseCompleted}, nil)
	m.purchases.On("UpdateStatus", ctx, booking.PurchaseID, domain.PurchaseCompleted).Return(nil)
	m.bookings.On("UpdatePaymentStatus", ctx, booking.ID, domain.BookingSuccess).Return(nil)
	m.redis.ExpectDel("rooms:all").SetVal(1)

	updated, err := svc.ApproveCashBooking(ctx, landlord, booking.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, updated) {
		assert.Equal(t, domain.BookingSuccess, updated.PaymentStatus)
	}
}

func TestRejectCashBooking_Success(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	landlord := domain.Principal{UserID: uuid.New(), Role: domain.RoleLandlord}
	room := availableRoom(landlord.UserID, 1000)
	booking := pendingCashBooking(uuid.New(), room.ID)

	m.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)
	m.bookings.On("UpdatePaymentStatus", ctx, booking.ID, domain.BookingFailed).Return(nil)
	m.purchases.On("UpdateStatus", ctx, booking.PurchaseID, domain.PurchaseFailed).Return(nil)

	updated, err := svc.RejectCashBooking(ctx, landlord, booking.ID)

	assert.NoError(t, err)
	if assert.NotNil(t, updated) {
		assert.Equal(t, domain.BookingFailed, updated.PaymentStatus)
	}
	m.rooms.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Rejecting a booking the landlord already approved must not mutate anything.
func TestRejectCashBooking_AlreadySettled(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	landlord := domain.Principal{UserID: uuid.New(), Role: domain.RoleLandlord}
	room := availableRoom(landlord.UserID, 1000)
	booking := pendingCashBooking(uuid.New(), room.ID)
	booking.PaymentStatus = domain.BookingSuccess

	m.bookings.On("GetByID", ctx, booking.ID).Return(booking, nil)
	m.rooms.On("GetByID", ctx, room.ID).Return(room, nil)

	updated, err := svc.RejectCashBooking(ctx, landlord, booking.ID)

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	m.bookings.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	m.purchases.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func verifiedTx(purchaseID uuid.UUID) *ports.VerifiedTransaction {
	return &ports.VerifiedTransaction{
		TransactionUUID: purchaseID.String(),
		TransactionCode: "0001TX",
		RefID:           "REF-1",
		Amount:          decimal.NewFromInt(3000),
		Status:          "COMPLETE",
		Raw:             json.RawMessage(`{"status":"COMPLETE"}`),
	}
}

func TestCompleteGatewayBooking_Success(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	roomID := uuid.New()
	purchase := &domain.PurchasedItem{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		RoomID:        roomID,
		PaymentMethod: domain.MethodEsewa,
		TotalPrice:    decimal.NewFromInt(3000),
		Status:        domain.PurchasePending,
		Period: domain.Period{
			StartDate: time.Now().Add(24 * time.Hour),
			EndDate:   time.Now().Add(96 * time.Hour),
		},
	}
	booking := &domain.Booking{ID: uuid.New(), PurchaseID: purchase.ID, RoomID: roomID}

	m.gateway.On("VerifyCallback", ctx, "encoded-payload").Return(verifiedTx(purchase.ID), nil)
	m.purchases.On("GetByID", ctx, purchase.ID).Return(purchase, nil)
	m.payments.On("Create", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.Status == domain.PaymentSuccess &&
			p.Pidx == "0001TX" &&
			len(p.VerificationData) > 0
	})).Return(nil)
	m.purchases.On("UpdateStatus", ctx, purchase.ID, domain.PurchaseCompleted).Return(nil)
	m.bookings.On("FinalizeGatewaySuccess", ctx, purchase.ID, "REF-1").Return(nil)
	m.rooms.On("SetAvailability", ctx, roomID, false, true).Return(nil)
	m.bookings.On("GetByPurchaseID", ctx, purchase.ID).Return(booking, nil)
	m.redis.ExpectDel("rooms:all").SetVal(1)

	resp, err := svc.CompleteGatewayBooking(ctx, "encoded-payload")

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.False(t, resp.Replayed)
		assert.Equal(t, "0001TX", resp.TransactionID)
	}
}

// A replayed callback with the same transaction code must converge on the
// already-final state without double-creating anything.
func TestCompleteGatewayBooking_ReplayIsIdempotent(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	roomID := uuid.New()
	purchase := &domain.PurchasedItem{
		ID:         uuid.New(),
		RoomID:     roomID,
		TotalPrice: decimal.NewFromInt(3000),
		Status:     domain.PurchaseCompleted,
	}
	booking := &domain.Booking{ID: uuid.New(), PurchaseID: purchase.ID, RoomID: roomID}

	m.gateway.On("VerifyCallback", ctx, "encoded-payload").Return(verifiedTx(purchase.ID), nil)
	m.purchases.On("GetByID", ctx, purchase.ID).Return(purchase, nil)
	m.payments.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicatePayment)
	m.purchases.On("UpdateStatus", ctx, purchase.ID, domain.PurchaseCompleted).Return(nil)
	m.bookings.On("FinalizeGatewaySuccess", ctx, purchase.ID, "REF-1").Return(nil)
	m.rooms.On("SetAvailability", ctx, roomID, false, true).Return(domain.ErrStaleAvailability)
	m.bookings.On("GetByPurchaseID", ctx, purchase.ID).Return(booking, nil)
	m.redis.ExpectDel("rooms:all").SetVal(1)

	resp, err := svc.CompleteGatewayBooking(ctx, "encoded-payload")

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.True(t, resp.Replayed)
	}
}

func TestCompleteGatewayBooking_VerificationFailure(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()

	m.gateway.On("VerifyCallback", ctx, "tampered").
		Return(nil, &domain.VerificationError{Stage: "signature", Err: domain.ErrInvalidSignature})

	resp, err := svc.CompleteGatewayBooking(ctx, "tampered")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	m.purchases.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	m.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// A callback arriving after the sweeper expired the purchase must not
// resurrect it; the room may belong to someone else by now.
func TestCompleteGatewayBooking_FailedPurchaseStaysFailed(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	purchase := &domain.PurchasedItem{
		ID:         uuid.New(),
		RoomID:     uuid.New(),
		TotalPrice: decimal.NewFromInt(3000),
		Status:     domain.PurchaseFailed,
	}

	m.gateway.On("VerifyCallback", ctx, "encoded-payload").Return(verifiedTx(purchase.ID), nil)
	m.purchases.On("GetByID", ctx, purchase.ID).Return(purchase, nil)

	resp, err := svc.CompleteGatewayBooking(ctx, "encoded-payload")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	m.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.purchases.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	m.rooms.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteGatewayBooking_PurchaseNotFound(t *testing.T) {
	svc, m := newEngine(t)

	ctx := context.Background()
	purchaseID := uuid.New()

	m.gateway.On("VerifyCallback", ctx, "encoded-payload").Return(verifiedTx(purchaseID), nil)
	m.purchases.On("GetByID", ctx, purchaseID).Return(nil, domain.ErrPurchaseNotFound)

	resp, err := svc.CompleteGatewayBooking(ctx, "encoded-payload")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)
}
