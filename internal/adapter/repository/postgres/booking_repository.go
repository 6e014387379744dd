package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, tenant_id, room_id, purchase_id, amount, payment_method,
	payment_status, gateway_ref_id, start_date, end_date, tenant_name, created_at, updated_at`

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepository) GetByPurchaseID(ctx context.Context, purchaseID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE purchase_id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, purchaseID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingPaymentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), bookingID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrBookingNotFound
	}

	return nil
}

// FinalizeGatewaySuccess marks the purchase's booking as paid and records the
// gateway reference. The WHERE clause makes retries no-ops once applied.
func (r *BookingRepository) FinalizeGatewaySuccess(ctx context.Context, purchaseID uuid.UUID, refID string) error {
	query := `
	UPDATE bookings
	SET payment_status = 'success', gateway_ref_id = $1, updated_at = $2
	WHERE purchase_id = $3 AND payment_status <> 'success'
	`

	_, err := r.db.ExecContext(ctx, query, refID, time.Now(), purchaseID)
	return err
}

// ListByLandlord returns bookings on the landlord's rooms that are currently
// held (room unavailable), newest first.
func (r *BookingRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]domain.Booking, error) {
	query := `
	SELECT b.id, b.tenant_id, b.room_id, b.purchase_id, b.amount, b.payment_method,
		b.payment_status, b.gateway_ref_id, b.start_date, b.end_date, b.tenant_name,
		b.created_at, b.updated_at
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	WHERE r.owner_id = $1 AND r.is_available = false
	ORDER BY b.created_at DESC
	`

	return r.queryBookings(ctx, query, landlordID)
}

func (r *BookingRepository) ListPendingCashByLandlord(ctx context.Context, landlordID uuid.UUID) ([]domain.Booking, error) {
	query := `
	SELECT b.id, b.tenant_id, b.room_id, b.purchase_id, b.amount, b.payment_method,
		b.payment_status, b.gateway_ref_id, b.start_date, b.end_date, b.tenant_name,
		b.created_at, b.updated_at
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	WHERE r.owner_id = $1 AND b.payment_method = 'cash' AND b.payment_status = 'pending_approval'
	ORDER BY b.created_at DESC
	`

	return r.queryBookings(ctx, query, landlordID)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var refID sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.TenantID,
		&booking.RoomID,
		&booking.PurchaseID,
		&booking.Amount,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&refID,
		&booking.Period.StartDate,
		&booking.Period.EndDate,
		&booking.TenantName,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if refID.Valid && refID.String != "" {
		booking.GatewayRefID = &refID.String
	}

	return &booking, nil
}
