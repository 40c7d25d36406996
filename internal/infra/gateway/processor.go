package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"

	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/commands"
)

var failureReasons = []string{
	"card_declined",
	"insufficient_funds",
	"expired_card",
	"processing_error",
}

// SimulatedProcessor stands in for a real payment provider: a short random
// latency and a fixed approval rate. Swapped out for a deterministic fake
// in tests and for a real provider binding in production.
type SimulatedProcessor struct {
	ApprovalRate float64
	MaxLatency   time.Duration
}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{
		ApprovalRate: 0.9,
		MaxLatency:   200 * time.Millisecond,
	}
}

func (p *SimulatedProcessor) Charge(ctx context.Context, req commands.ChargeRequest) (*commands.ChargeResult, error) {
	if err := p.simulateLatency(ctx); err != nil {
		return nil, err
	}

	roll, err := randFloat()
	if err != nil {
		return nil, errs.Wrap(err, "failed to draw outcome")
	}
	if roll >= p.ApprovalRate {
		idx, err := randIndex(len(failureReasons))
		if err != nil {
			return nil, errs.Wrap(err, "failed to draw failure reason")
		}
		return &commands.ChargeResult{
			Approved:      false,
			FailureReason: failureReasons[idx],
		}, nil
	}

	txID, err := randomToken("txn")
	if err != nil {
		return nil, err
	}
	return &commands.ChargeResult{
		Approved:      true,
		TransactionID: txID,
	}, nil
}

func (p *SimulatedProcessor) Refund(ctx context.Context, transactionID string, amountCents int64) (*commands.RefundResult, error) {
	if err := p.simulateLatency(ctx); err != nil {
		return nil, err
	}
	refundID, err := randomToken("re")
	if err != nil {
		return nil, err
	}
	return &commands.RefundResult{RefundID: refundID}, nil
}

func (p *SimulatedProcessor) simulateLatency(ctx context.Context) error {
	if p.MaxLatency <= 0 {
		return nil
	}
	n, err := randIndex(int(p.MaxLatency / time.Millisecond))
	if err != nil {
		return errs.Wrap(err, "failed to draw latency")
	}
	select {
	case <-time.After(time.Duration(n) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomToken(prefix string) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", errs.Wrap(err, "failed to generate token")
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}

func randFloat() (float64, error) {
	n, err := cryptoRandInt(1 << 20)
	if err != nil {
		return 0, err
	}
	return float64(n) / float64(1<<20), nil
}

func randIndex(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	v, err := cryptoRandInt(int64(n))
	return int(v), err
}

func cryptoRandInt(max int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
