package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PaymentView struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	UserID        uuid.UUID  `json:"user_id"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	Method        string     `json:"method"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	RefundID      *string    `json:"refund_id,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Receipt is a derived document, rebuilt from booking and payment rows on
// demand rather than persisted.
type Receipt struct {
	Number        string    `json:"number"`
	BookingID     uuid.UUID `json:"booking_id"`
	ChargerName   string    `json:"charger_name"`
	UserEmail     string    `json:"user_email"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id"`
	IssuedAt      time.Time `json:"issued_at"`
}

type PaymentQueries interface {
	GetByBookingID(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*PaymentView, error)
	GetReceipt(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*Receipt, error)
}

type PaymentReadStore interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*PaymentView, error)
}

type ReceiptBuilder interface {
	Build(bookingView *BookingView, paymentView *PaymentView) (*Receipt, error)
}

type paymentQueriesImpl struct {
	payments PaymentReadStore
	bookings BookingReadStore
	receipts ReceiptBuilder
}

func NewPaymentQueries(payments PaymentReadStore, bookings BookingReadStore, receipts ReceiptBuilder) PaymentQueries {
	return &paymentQueriesImpl{payments: payments, bookings: bookings, receipts: receipts}
}

func (q *paymentQueriesImpl) GetByBookingID(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*PaymentView, error) {
	paymentView, err := q.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if paymentView.UserID != actor {
		return nil, ErrNotOwner
	}
	return paymentView, nil
}

func (q *paymentQueriesImpl) GetReceipt(ctx context.Context, actor uuid.UUID, bookingID uuid.UUID) (*Receipt, error) {
	paymentView, err := q.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if paymentView.UserID != actor {
		return nil, ErrNotOwner
	}
	bookingView, err := q.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return q.receipts.Build(bookingView, paymentView)
}
