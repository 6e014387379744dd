package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

const uniqueViolation = "23505"

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment attempt. The unique index on pidx turns a
// replayed transaction code into ErrDuplicatePayment, which is how the
// engine detects callback replays.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
	INSERT INTO payments (id, transaction_id, pidx, purchase_id, amount,
		verification_data, gateway, status, payment_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var verification any
	if len(payment.VerificationData) > 0 {
		verification = []byte(payment.VerificationData)
	}

	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.TransactionID, payment.Pidx, payment.PurchaseID,
		payment.Amount, verification, payment.Gateway, payment.Status, payment.PaymentDate,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicatePayment
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := `
	SELECT id, transaction_id, pidx, purchase_id, amount, verification_data,
		gateway, status, payment_date
	FROM payments
	WHERE transaction_id = $1
	`

	var payment domain.Payment
	var verification []byte

	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.Pidx,
		&payment.PurchaseID,
		&payment.Amount,
		&verification,
		&payment.Gateway,
		&payment.Status,
		&payment.PaymentDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	payment.VerificationData = verification
	return &payment, nil
}

func (r *PaymentRepository) MarkStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $1 WHERE id = $2`,
		status, paymentID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}
