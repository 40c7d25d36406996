package gateway

import (
	"fmt"
	"strings"
	"time"

	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/queries"
)

// ReceiptBuilder derives a receipt document from the booking and payment
// rows. Receipts are never stored: the same inputs always rebuild the same
// receipt, with the number tied to the gateway transaction.
type ReceiptBuilder struct {
	clock clock.Clock
}

func NewReceiptBuilder(clk clock.Clock) *ReceiptBuilder {
	return &ReceiptBuilder{clock: clk}
}

func (b *ReceiptBuilder) Build(bookingView *queries.BookingView, paymentView *queries.PaymentView) (*queries.Receipt, error) {
	if paymentView.Status != "success" && paymentView.Status != "refunded" {
		return nil, errs.New("receipt requires a captured payment")
	}
	if paymentView.TransactionID == nil {
		return nil, errs.New("captured payment missing transaction id")
	}

	issuedAt := b.clock.Now()
	if paymentView.CompletedAt != nil {
		issuedAt = *paymentView.CompletedAt
	}

	return &queries.Receipt{
		Number:        receiptNumber(*paymentView.TransactionID, issuedAt),
		BookingID:     bookingView.ID,
		ChargerName:   bookingView.ChargerName,
		UserEmail:     bookingView.UserEmail,
		StartTime:     bookingView.StartTime,
		EndTime:       bookingView.EndTime,
		AmountCents:   paymentView.AmountCents,
		Currency:      paymentView.Currency,
		TransactionID: *paymentView.TransactionID,
		IssuedAt:      issuedAt,
	}, nil
}

func receiptNumber(transactionID string, issuedAt time.Time) string {
	suffix := strings.TrimPrefix(transactionID, "txn_")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("RCP-%s-%s", issuedAt.Format("20060102"), strings.ToUpper(suffix))
}
