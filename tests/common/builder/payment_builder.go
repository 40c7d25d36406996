//go:build unit || e2e

package builder

import (
	"time"

	dompayment "chargeslot/internal/domain/payment"
	"chargeslot/internal/usecase/queries"

	"github.com/google/uuid"
)

type PaymentBuilder struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	UserID      uuid.UUID
	AmountCents int64
	Currency    string
	Method      string
	Now         time.Time
}

func NewPaymentBuilder() *PaymentBuilder {
	return &PaymentBuilder{
		ID:          uuid.New(),
		BookingID:   uuid.New(),
		UserID:      uuid.New(),
		AmountCents: 444,
		Currency:    dompayment.DefaultCurrency,
		Method:      "card",
		Now:         time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (p *PaymentBuilder) With(mutate func(*PaymentBuilder)) *PaymentBuilder {
	mutate(p)
	return p
}

// Build methods
func (p *PaymentBuilder) BuildDomain() (*dompayment.Payment, error) {
	return dompayment.NewPayment(p.BookingID, p.UserID, p.AmountCents, p.Currency, p.Method)
}

func (p *PaymentBuilder) BuildReconstructed(status dompayment.Status) *dompayment.Payment {
	var transactionID *string
	var completedAt *time.Time
	if status == dompayment.StatusSuccess || status == dompayment.StatusRefunded {
		txn := "txn_deadbeef"
		transactionID = &txn
		completedAt = &p.Now
	}
	return dompayment.ReconstructPayment(
		p.ID, p.BookingID, p.UserID,
		p.AmountCents, p.Currency, status, p.Method,
		transactionID, nil, nil,
		nil, completedAt,
		p.Now, p.Now,
	)
}

func (p *PaymentBuilder) BuildView(status dompayment.Status) *queries.PaymentView {
	var transactionID *string
	var completedAt *time.Time
	if status == dompayment.StatusSuccess || status == dompayment.StatusRefunded {
		txn := "txn_deadbeef"
		transactionID = &txn
		completedAt = &p.Now
	}
	return &queries.PaymentView{
		ID:            p.ID,
		BookingID:     p.BookingID,
		UserID:        p.UserID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Status:        status.String(),
		Method:        p.Method,
		TransactionID: transactionID,
		CompletedAt:   completedAt,
		CreatedAt:     p.Now,
	}
}

// Fluent builder methods
func (p *PaymentBuilder) WithBookingID(id uuid.UUID) *PaymentBuilder {
	p.BookingID = id
	return p
}

func (p *PaymentBuilder) WithUserID(id uuid.UUID) *PaymentBuilder {
	p.UserID = id
	return p
}

func (p *PaymentBuilder) WithAmountCents(cents int64) *PaymentBuilder {
	p.AmountCents = cents
	return p
}

func (p *PaymentBuilder) WithCurrency(currency string) *PaymentBuilder {
	p.Currency = currency
	return p
}

func (p *PaymentBuilder) WithMethod(method string) *PaymentBuilder {
	p.Method = method
	return p
}
