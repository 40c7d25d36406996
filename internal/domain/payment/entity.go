package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidTransition = errors.New("transition not allowed from current payment status")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrEmptyCurrency     = errors.New("currency required")
)

// Status is the payment lifecycle state. FAILED and REFUNDED are terminal;
// SUCCESS only moves further through a refund.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// DefaultCurrency is the settlement currency for the fleet.
const DefaultCurrency = "USD"

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusFailed, StatusRefunded:
		return true
	case StatusPending, StatusSuccess:
		return false
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Payment is the single payment attempt record for a booking. One row per
// booking at a time; a failed attempt ends the booking rather than being
// retried on the same record.
type Payment struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	userID        uuid.UUID
	amountCents   int64
	currency      string
	status        Status
	method        string
	transactionID *string
	failureReason *string
	refundID      *string
	refundedAt    *time.Time
	completedAt   *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewPayment(bookingID, userID uuid.UUID, amountCents int64, currency, method string) (*Payment, error) {
	if amountCents < 0 {
		return nil, ErrNegativeAmount
	}
	if currency == "" {
		return nil, ErrEmptyCurrency
	}
	return &Payment{
		id:          uuid.New(),
		bookingID:   bookingID,
		userID:      userID,
		amountCents: amountCents,
		currency:    currency,
		status:      StatusPending,
		method:      method,
	}, nil
}

func ReconstructPayment(
	id, bookingID, userID uuid.UUID,
	amountCents int64,
	currency string,
	status Status,
	method string,
	transactionID, failureReason, refundID *string,
	refundedAt, completedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:            id,
		bookingID:     bookingID,
		userID:        userID,
		amountCents:   amountCents,
		currency:      currency,
		status:        status,
		method:        method,
		transactionID: transactionID,
		failureReason: failureReason,
		refundID:      refundID,
		refundedAt:    refundedAt,
		completedAt:   completedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (p *Payment) ID() uuid.UUID           { return p.id }
func (p *Payment) BookingID() uuid.UUID    { return p.bookingID }
func (p *Payment) UserID() uuid.UUID       { return p.userID }
func (p *Payment) AmountCents() int64      { return p.amountCents }
func (p *Payment) Currency() string        { return p.currency }
func (p *Payment) Status() Status          { return p.status }
func (p *Payment) Method() string          { return p.method }
func (p *Payment) TransactionID() *string  { return p.transactionID }
func (p *Payment) FailureReason() *string  { return p.failureReason }
func (p *Payment) RefundID() *string       { return p.refundID }
func (p *Payment) RefundedAt() *time.Time  { return p.refundedAt }
func (p *Payment) CompletedAt() *time.Time { return p.completedAt }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time    { return p.updatedAt }

func (p *Payment) IsOwnedBy(userID uuid.UUID) bool {
	return p.userID == userID
}

func (p *Payment) MarkSucceeded(transactionID string, now time.Time) error {
	if p.status != StatusPending {
		return ErrInvalidTransition
	}
	p.status = StatusSuccess
	p.transactionID = &transactionID
	p.completedAt = &now
	return nil
}

func (p *Payment) MarkFailed(reason string, now time.Time) error {
	if p.status != StatusPending {
		return ErrInvalidTransition
	}
	p.status = StatusFailed
	p.failureReason = &reason
	p.completedAt = &now
	return nil
}

func (p *Payment) MarkRefunded(refundID string, now time.Time) error {
	if p.status != StatusSuccess {
		return ErrInvalidTransition
	}
	p.status = StatusRefunded
	p.refundID = &refundID
	p.refundedAt = &now
	return nil
}
