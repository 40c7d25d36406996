package commands

import "context"

// ChargeRequest is what the gateway needs to attempt a capture. Amounts are
// integer cents; the gateway never sees domain entities.
type ChargeRequest struct {
	PaymentID   string
	BookingID   string
	AmountCents int64
	Currency    string
	Method      string
}

type ChargeResult struct {
	Approved      bool
	TransactionID string
	FailureReason string
}

type RefundResult struct {
	RefundID string
}

// PaymentProcessor is the gateway boundary. The production binding simulates
// a provider with latency and a failure rate; tests swap in a deterministic
// fake.
type PaymentProcessor interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amountCents int64) (*RefundResult, error)
}
