package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/ports"
)

// roomsCacheKey is the redis key holding the cached room listing. It is
// deleted whenever room state changes so readers never see a stale listing.
const roomsCacheKey = "rooms:all"

type InitiateBookingRequest struct {
	RoomID        string `json:"room_id"`
	TotalPrice    string `json:"total_price"`
	PaymentMethod string `json:"payment_method"`
	TenantName    string `json:"tenant_name"`
	Phone         string `json:"phone"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type InitiateBookingResponse struct {
	PurchaseID    string                `json:"purchase_id"`
	BookingID     string                `json:"booking_id"`
	PurchaseState string                `json:"purchase_status"`
	BookingState  string                `json:"booking_status"`
	TotalPrice    string                `json:"total_price"`
	Redirect      *ports.RedirectParams `json:"redirect,omitempty"`
}

type CompleteGatewayResponse struct {
	PurchaseID    string `json:"purchase_id"`
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Replayed      bool   `json:"replayed"`
}

// BookingService is the reconciliation engine: the only writer allowed to
// transition purchases, bookings, payments and room availability after
// creation.
type BookingService struct {
	roomRepo     ports.RoomRepository
	purchaseRepo ports.PurchaseRepository
	bookingRepo  ports.BookingRepository
	paymentRepo  ports.PaymentRepository
	userRepo     ports.UserRepository
	gateway      ports.GatewayVerifier
	cache        *redis.Client
}

func NewBookingService(
	roomRepo ports.RoomRepository,
	purchaseRepo ports.PurchaseRepository,
	bookingRepo ports.BookingRepository,
	paymentRepo ports.PaymentRepository,
	userRepo ports.UserRepository,
	gateway ports.GatewayVerifier,
	cache *redis.Client,
) *BookingService {
	return &BookingService{
		roomRepo:     roomRepo,
		purchaseRepo: purchaseRepo,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		gateway:      gateway,
		cache:        cache,
	}
}

// InitiateBooking validates a booking request against the room registry and
// the purchase ledger, then creates the purchase and booking records. The
// dedup check and the inserts run atomically per (tenant, room) inside the
// repository. The room is never released or claimed at this stage.
func (s *BookingService) InitiateBooking(ctx context.Context, principal domain.Principal, req InitiateBookingRequest) (*InitiateBookingResponse, error) {
	method := domain.PaymentMethod(req.PaymentMethod)
	if method != domain.MethodCash && method != domain.MethodEsewa {
		return nil, fmt.Errorf("%w: payment_method must be cash or esewa", domain.ErrMissingFields)
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid room id", domain.ErrMissingFields)
	}

	period, err := parsePeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	quoted, err := decimal.NewFromString(req.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid total_price", domain.ErrMissingFields)
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.Bookable() {
		return nil, domain.ErrRoomUnavailable
	}

	// The quoted price is advisory only; the charge is always recomputed
	// from the room's per-day rate.
	expected := room.ExpectedTotal(period)
	if !quoted.Equal(expected) {
		return nil, &domain.PriceMismatchError{Quoted: quoted, Expected: expected}
	}

	// Best-effort contact refresh, deliberately outside the booking
	// transaction.
	if req.TenantName != "" && req.Phone != "" {
		if err := s.userRepo.UpdateContact(ctx, principal.UserID, req.TenantName, req.Phone); err != nil {
			log.Printf("contact update for user %s failed: %v", principal.UserID, err)
		}
	}

	purchaseStatus := domain.PurchasePending
	bookingStatus := domain.BookingPending
	if method == domain.MethodCash {
		purchaseStatus = domain.PurchaseAwaitingApproval
		bookingStatus = domain.BookingPendingApproval
	}

	now := time.Now()
	purchase := &domain.PurchasedItem{
		ID:            uuid.New(),
		TenantID:      principal.UserID,
		RoomID:        roomID,
		PaymentMethod: method,
		TotalPrice:    expected,
		Status:        purchaseStatus,
		Period:        period,
		TenantName:    req.TenantName,
		CreatedAt:     now,
	}

	booking := &domain.Booking{
		ID:            uuid.New(),
		TenantID:      principal.UserID,
		RoomID:        roomID,
		PurchaseID:    purchase.ID,
		Amount:        expected,
		PaymentMethod: method,
		PaymentStatus: bookingStatus,
		Period:        period,
		TenantName:    req.TenantName,
		CreatedAt:     now,
	}

	if err := s.purchaseRepo.CreateWithBooking(ctx, purchase, booking); err != nil {
		return nil, err
	}

	resp := &InitiateBookingResponse{
		PurchaseID:    purchase.ID.String(),
		BookingID:     booking.ID.String(),
		PurchaseState: string(purchase.Status),
		BookingState:  string(booking.PaymentStatus),
		TotalPrice:    expected.String(),
	}

	if method == domain.MethodEsewa {
		// The purchase id doubles as the gateway transaction uuid so the
		// callback can be traced back to exactly one ledger entry.
		txUUID := purchase.ID.String()
		payment := &domain.Payment{
			ID:            uuid.New(),
			TransactionID: txUUID,
			Pidx:          txUUID,
			PurchaseID:    purchase.ID,
			Amount:        expected,
			Gateway:       "esewa",
			Status:        domain.PaymentPending,
			PaymentDate:   now,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return nil, err
		}

		redirect, err := s.gateway.SignRedirect(expected, txUUID)
		if err != nil {
			return nil, err
		}
		resp.Redirect = redirect
	}

	return resp, nil
}

// ApproveCashBooking settles a cash booking in the landlord's favor: the room
// is claimed, the booking succeeds and the purchase completes. Only the
// owning landlord may approve, and only from pending_approval.
func (s *BookingService) ApproveCashBooking(ctx context.Context, principal domain.Principal, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, room, err := s.cashBookingForLandlord(ctx, principal, bookingID)
	if err != nil {
		return nil, err
	}

	// Claim the room first with a conditional flip so two concurrent
	// settlements for the same room cannot both win.
	if err := s.roomRepo.SetAvailability(ctx, room.ID, false, true); err != nil {
		if !errors.Is(err, domain.ErrStaleAvailability) {
			return nil, err
		}
		// A lost flip is tolerable only when this booking's own purchase
		// already completed. The purchase completes strictly after a won
		// flip, so that state can only mean a retry after a partial
		// failure; anything else is a real conflict.
		current, perr := s.purchaseRepo.GetByID(ctx, booking.PurchaseID)
		if perr != nil {
			return nil, perr
		}
		if current.Status != domain.PurchaseCompleted {
			return nil, err
		}
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, booking.PurchaseID, domain.PurchaseCompleted); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdatePaymentStatus(ctx, booking.ID, domain.BookingSuccess); err != nil {
		return nil, err
	}

	s.invalidateRoomCache(ctx)

	booking.PaymentStatus = domain.BookingSuccess
	return booking, nil
}

// RejectCashBooking is the terminal alternative to approval. The room is
// untouched.
func (s *BookingService) RejectCashBooking(ctx context.Context, principal domain.Principal, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, _, err := s.cashBookingForLandlord(ctx, principal, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.bookingRepo.UpdatePaymentStatus(ctx, booking.ID, domain.BookingFailed); err != nil {
		return nil, err
	}
	if err := s.purchaseRepo.UpdateStatus(ctx, booking.PurchaseID, domain.PurchaseFailed); err != nil {
		return nil, err
	}

	booking.PaymentStatus = domain.BookingFailed
	return booking, nil
}

func (s *BookingService) cashBookingForLandlord(ctx context.Context, principal domain.Principal, bookingID uuid.UUID) (*domain.Booking, *domain.Room, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, booking.RoomID)
	if err != nil {
		return nil, nil, err
	}
	if room.OwnerID != principal.UserID {
		return nil, nil, domain.ErrForbidden
	}

	if !booking.AwaitingCashApproval() {
		return nil, nil, fmt.Errorf("%w: booking is %s/%s", domain.ErrInvalidState, booking.PaymentMethod, booking.PaymentStatus)
	}

	return booking, room, nil
}

// CompleteGatewayBooking finalizes a booking from a verified gateway
// callback. Every step after verification is idempotent, so a retry after a
// partial failure reconverges on the same final state, and a replayed
// callback (same transaction code) cannot double-complete anything.
func (s *BookingService) CompleteGatewayBooking(ctx context.Context, encoded string) (*CompleteGatewayResponse, error) {
	verified, err := s.gateway.VerifyCallback(ctx, encoded)
	if err != nil {
		return nil, err
	}

	purchaseID, err := uuid.Parse(verified.TransactionUUID)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction uuid %q", domain.ErrPurchaseNotFound, verified.TransactionUUID)
	}

	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	// A failed purchase stays failed: the sweeper expired it or the landlord
	// rejected it, and a late callback must not resurrect it against a room
	// someone else may hold by now.
	if purchase.Status == domain.PurchaseFailed {
		return nil, fmt.Errorf("%w: purchase %s already failed", domain.ErrInvalidState, purchase.ID)
	}
	alreadyCompleted := purchase.Status == domain.PurchaseCompleted

	payment := &domain.Payment{
		ID:               uuid.New(),
		TransactionID:    verified.TransactionCode,
		Pidx:             verified.TransactionCode,
		PurchaseID:       purchase.ID,
		Amount:           verified.Amount,
		VerificationData: verified.Raw,
		Gateway:          "esewa",
		Status:           domain.PaymentSuccess,
		PaymentDate:      time.Now(),
	}

	replayed := false
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if !errors.Is(err, domain.ErrDuplicatePayment) {
			return nil, err
		}
		// Same transaction code seen before: either a replayed redirect or a
		// retry after a partial failure. Re-drive the remaining steps, all of
		// which are no-ops once applied.
		replayed = true
	}

	if err := s.purchaseRepo.UpdateStatus(ctx, purchase.ID, domain.PurchaseCompleted); err != nil {
		return nil, err
	}

	refID := verified.RefID
	if refID == "" {
		refID = verified.TransactionCode
	}
	if err := s.bookingRepo.FinalizeGatewaySuccess(ctx, purchase.ID, refID); err != nil {
		return nil, err
	}

	if err := s.roomRepo.SetAvailability(ctx, purchase.RoomID, false, true); err != nil {
		// On a retry the room was already claimed by this same purchase;
		// that is convergence, not a conflict.
		if !(errors.Is(err, domain.ErrStaleAvailability) && alreadyCompleted) {
			return nil, err
		}
	}

	s.invalidateRoomCache(ctx)

	booking, err := s.bookingRepo.GetByPurchaseID(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}

	return &CompleteGatewayResponse{
		PurchaseID:    purchase.ID.String(),
		BookingID:     booking.ID.String(),
		TransactionID: verified.TransactionCode,
		Amount:        verified.Amount.String(),
		Replayed:      replayed,
	}, nil
}

// ListLandlordBookings returns bookings on the landlord's rooms that are
// currently holding a room, newest first.
func (s *BookingService) ListLandlordBookings(ctx context.Context, principal domain.Principal) ([]domain.Booking, error) {
	return s.bookingRepo.ListByLandlord(ctx, principal.UserID)
}

// ListPendingCashBookings returns the landlord's cash bookings still waiting
// for an approve/reject decision.
func (s *BookingService) ListPendingCashBookings(ctx context.Context, principal domain.Principal) ([]domain.Booking, error) {
	return s.bookingRepo.ListPendingCashByLandlord(ctx, principal.UserID)
}

// ListTenantBookings returns the tenant's completed purchases whose room is
// still held, newest first.
func (s *BookingService) ListTenantBookings(ctx context.Context, principal domain.Principal) ([]domain.PurchasedItem, error) {
	return s.purchaseRepo.ListCompletedByTenant(ctx, principal.UserID)
}

func (s *BookingService) invalidateRoomCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, roomsCacheKey).Err(); err != nil {
		log.Printf("failed to invalidate %s: %v", roomsCacheKey, err)
	}
}

func parsePeriod(start, end string) (domain.Period, error) {
	startDate, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: bad start_date", domain.ErrInvalidPeriod)
	}
	endDate, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return domain.Period{}, fmt.Errorf("%w: bad end_date", domain.ErrInvalidPeriod)
	}
	p := domain.Period{StartDate: startDate, EndDate: endDate}
	if err := p.Validate(); err != nil {
		return domain.Period{}, err
	}
	return p, nil
}
