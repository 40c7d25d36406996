package readstore

import (
	"context"

	"chargeslot/internal/infra"
	"chargeslot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentReadStore struct {
	pool *pgxpool.Pool
}

func NewPaymentReadStore(pool *pgxpool.Pool) *PaymentReadStore {
	return &PaymentReadStore{pool: pool}
}

func (s *PaymentReadStore) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*queries.PaymentView, error) {
	const query = `
		SELECT id, booking_id, user_id, amount_cents, currency, status, method,
		       transaction_id, failure_reason, refund_id, refunded_at, completed_at, created_at
		FROM payments WHERE booking_id = $1`

	var view queries.PaymentView
	err := s.pool.QueryRow(ctx, query, bookingID).Scan(
		&view.ID, &view.BookingID, &view.UserID, &view.AmountCents, &view.Currency,
		&view.Status, &view.Method, &view.TransactionID, &view.FailureReason,
		&view.RefundID, &view.RefundedAt, &view.CompletedAt, &view.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment view", err)
	}
	return &view, nil
}
