package repository

import (
	"context"
	"time"

	"chargeslot/internal/domain/payment"
	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

const paymentColumns = `id, booking_id, user_id, amount_cents, currency, status, method,
	transaction_id, failure_reason, refund_id, refunded_at, completed_at, created_at, updated_at`

// Create inserts the payment attempt. The unique constraint on booking_id is
// the idempotency guard: a second attempt for the same booking surfaces as
// KindDuplicateKey.
func (r *PaymentRepository) Create(ctx context.Context, tx db.DBTX, p *payment.Payment) error {
	const query = `
		INSERT INTO payments (id, booking_id, user_id, amount_cents, currency, status, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		p.ID(), p.BookingID(), p.UserID(), p.AmountCents(), p.Currency(), p.Status().String(), p.Method(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create payment", err)
	}
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx db.DBTX, p *payment.Payment) error {
	const query = `
		UPDATE payments
		SET status = $2, transaction_id = $3, failure_reason = $4, refund_id = $5,
			refunded_at = $6, completed_at = $7, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		p.ID(), p.Status().String(), p.TransactionID(), p.FailureReason(), p.RefundID(), p.RefundedAt(), p.CompletedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found on update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, tx, query, id)
}

func (r *PaymentRepository) FindByBookingID(ctx context.Context, tx db.DBTX, bookingID uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`
	return r.scanOne(ctx, tx, query, bookingID)
}

// FindPendingByBookingIDForUpdate locks the pending payment tied to a hold,
// if any. The reaper uses it to fail payments on expired holds.
func (r *PaymentRepository) FindPendingByBookingIDForUpdate(ctx context.Context, tx db.DBTX, bookingID uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 AND status = 'pending' FOR UPDATE`
	return r.scanOne(ctx, tx, query, bookingID)
}

func (r *PaymentRepository) scanOne(ctx context.Context, tx db.DBTX, query string, id uuid.UUID) (*payment.Payment, error) {
	var (
		pid, bookingID, userID                 uuid.UUID
		amountCents                            int64
		currency, statusStr, method            string
		transactionID, failureReason, refundID *string
		refundedAt, completedAt                *time.Time
		createdAt, updatedAt                   time.Time
	)
	err := tx.QueryRow(ctx, query, id).Scan(
		&pid, &bookingID, &userID, &amountCents, &currency, &statusStr, &method,
		&transactionID, &failureReason, &refundID, &refundedAt, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment", err)
	}

	status, err := payment.NewStatus(statusStr)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt payment status", err)
	}

	return payment.ReconstructPayment(
		pid, bookingID, userID, amountCents, currency, status, method,
		transactionID, failureReason, refundID, refundedAt, completedAt, createdAt, updatedAt,
	), nil
}
