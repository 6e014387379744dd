package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

const purchaseColumns = `id, tenant_id, room_id, payment_method, total_price, status,
	start_date, end_date, tenant_name, created_at, updated_at`

// CreateWithBooking inserts the purchase and its booking projection in one
// transaction. A per-(tenant,room) advisory lock serializes the active-entry
// check against concurrent initiations, so two racing requests for the same
// pair cannot both pass the check.
func (r *PurchaseRepository) CreateWithBooking(ctx context.Context, item *domain.PurchasedItem, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		item.TenantID.String()+":"+item.RoomID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to take booking lock: %w", err)
	}

	var active bool
	err = tx.QueryRowContext(ctx, `
	SELECT EXISTS (
		SELECT 1 FROM purchases
		WHERE tenant_id = $1 AND room_id = $2
		  AND status IN ('pending', 'awaiting_approval', 'completed')
		  AND end_date > NOW()
	)`, item.TenantID, item.RoomID).Scan(&active)
	if err != nil {
		return fmt.Errorf("failed to check active purchases: %w", err)
	}

	if active {
		return domain.ErrDuplicateActiveBooking
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO purchases (id, tenant_id, room_id, payment_method, total_price, status,
		start_date, end_date, tenant_name, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, item.ID, item.TenantID, item.RoomID, item.PaymentMethod, item.TotalPrice, item.Status,
		item.Period.StartDate, item.Period.EndDate, item.TenantName, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO bookings (id, tenant_id, room_id, purchase_id, amount, payment_method,
		payment_status, start_date, end_date, tenant_name, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, booking.ID, booking.TenantID, booking.RoomID, booking.PurchaseID, booking.Amount,
		booking.PaymentMethod, booking.PaymentStatus, booking.Period.StartDate,
		booking.Period.EndDate, booking.TenantName, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, purchaseID uuid.UUID) (*domain.PurchasedItem, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`

	item, err := scanPurchase(r.db.QueryRowContext(ctx, query, purchaseID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, err
	}

	return item, nil
}

func (r *PurchaseRepository) UpdateStatus(ctx context.Context, purchaseID uuid.UUID, status domain.PurchaseStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), purchaseID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrPurchaseNotFound
	}

	return nil
}

// FailIfPending is the sweeper's fail transition. The status guard keeps it
// from stomping a purchase that a concurrent callback or approval settled
// after the stale listing was read.
func (r *PurchaseRepository) FailIfPending(ctx context.Context, purchaseID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
	UPDATE purchases SET status = $1, updated_at = $2
	WHERE id = $3 AND status IN ('pending', 'awaiting_approval')`,
		domain.PurchaseFailed, time.Now(), purchaseID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

// FindCompletedByRoom returns the completed purchase currently holding the
// room, preferring the most recent one.
func (r *PurchaseRepository) FindCompletedByRoom(ctx context.Context, roomID uuid.UUID) (*domain.PurchasedItem, error) {
	query := `SELECT ` + purchaseColumns + `
	FROM purchases
	WHERE room_id = $1 AND status = 'completed'
	ORDER BY created_at DESC
	LIMIT 1`

	item, err := scanPurchase(r.db.QueryRowContext(ctx, query, roomID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPurchaseNotFound
		}
		return nil, err
	}

	return item, nil
}

// ListCompletedByTenant returns the tenant's completed purchases whose room
// is still marked unavailable, newest first.
func (r *PurchaseRepository) ListCompletedByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.PurchasedItem, error) {
	query := `
	SELECT p.id, p.tenant_id, p.room_id, p.payment_method, p.total_price, p.status,
		p.start_date, p.end_date, p.tenant_name, p.created_at, p.updated_at
	FROM purchases p
	JOIN rooms r ON r.id = p.room_id
	WHERE p.tenant_id = $1 AND p.status = 'completed' AND r.is_available = false
	ORDER BY p.created_at DESC
	`

	return r.queryPurchases(ctx, query, tenantID)
}

func (r *PurchaseRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.PurchasedItem, error) {
	query := `SELECT ` + purchaseColumns + `
	FROM purchases
	WHERE status IN ('pending', 'awaiting_approval') AND created_at < $1
	LIMIT 100`

	return r.queryPurchases(ctx, query, olderThan)
}

func (r *PurchaseRepository) queryPurchases(ctx context.Context, query string, args ...any) ([]domain.PurchasedItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var items []domain.PurchasedItem
	for rows.Next() {
		item, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

func scanPurchase(row rowScanner) (*domain.PurchasedItem, error) {
	var item domain.PurchasedItem

	err := row.Scan(
		&item.ID,
		&item.TenantID,
		&item.RoomID,
		&item.PaymentMethod,
		&item.TotalPrice,
		&item.Status,
		&item.Period.StartDate,
		&item.Period.EndDate,
		&item.TenantName,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &item, nil
}
