package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sujanms/gharbhada/internal/adapter/repository/postgres"
	"github.com/sujanms/gharbhada/internal/core/domain"
)

func successPayment() *domain.Payment {
	return &domain.Payment{
		ID:            uuid.New(),
		TransactionID: "tx-123",
		Pidx:          "0001TX",
		PurchaseID:    uuid.New(),
		Amount:        decimal.NewFromInt(3000),
		Gateway:       "esewa",
		Status:        domain.PaymentSuccess,
		PaymentDate:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPaymentCreate_Inserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPaymentRepository(db)
	payment := successPayment()

	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(payment.ID, payment.TransactionID, payment.Pidx, payment.PurchaseID,
			payment.Amount, nil, payment.Gateway, payment.Status, payment.PaymentDate).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), payment)

	assert.NoError(t, err)
}

// The unique index on pidx is what makes gateway callback replays visible to
// the engine; the raw 23505 must come back as ErrDuplicatePayment.
func TestPaymentCreate_ReplayedPidx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPaymentRepository(db)
	payment := successPayment()

	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_pidx_key"})

	err := repo.Create(context.Background(), payment)

	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)
}

func TestPaymentCreate_OtherErrorPassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPaymentRepository(db)
	payment := successPayment()

	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnError(sql.ErrConnDone)

	err := repo.Create(context.Background(), payment)

	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, domain.ErrDuplicatePayment)
}

func TestGetByTransactionID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs("tx-404").
		WillReturnError(sql.ErrNoRows)

	payment, err := repo.GetByTransactionID(context.Background(), "tx-404")

	assert.Nil(t, payment)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}
