//go:build unit

package payment_test

import (
	"testing"
	"time"

	"chargeslot/internal/domain/payment"
	"chargeslot/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.PaymentBuilder)
	errIs  error
}

func TestNewPayment(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		b := builder.NewPaymentBuilder()
		actual, err := b.BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, b.BookingID, actual.BookingID())
		assert.Equal(t, payment.StatusPending, actual.Status())
		assert.Equal(t, payment.DefaultCurrency, actual.Currency())
		assert.Nil(t, actual.TransactionID())
		assert.Nil(t, actual.CompletedAt())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "zero amount is allowed",
				mutate: func(b *builder.PaymentBuilder) { b.WithAmountCents(0) },
			},
			{
				name:   "negative amount",
				mutate: func(b *builder.PaymentBuilder) { b.WithAmountCents(-1) },
				errIs:  payment.ErrNegativeAmount,
			},
			{
				name:   "empty currency",
				mutate: func(b *builder.PaymentBuilder) { b.WithCurrency("") },
				errIs:  payment.ErrEmptyCurrency,
			},
		})
	})
}

func TestPaymentTransitions(t *testing.T) {
	b := builder.NewPaymentBuilder()
	now := b.Now.Add(time.Minute)

	t.Run("mark succeeded", func(t *testing.T) {
		p := b.BuildReconstructed(payment.StatusPending)

		require.NoError(t, p.MarkSucceeded("txn_0001", now))
		assert.Equal(t, payment.StatusSuccess, p.Status())
		require.NotNil(t, p.TransactionID())
		assert.Equal(t, "txn_0001", *p.TransactionID())
		require.NotNil(t, p.CompletedAt())
		assert.Equal(t, now, *p.CompletedAt())
	})

	t.Run("mark failed", func(t *testing.T) {
		p := b.BuildReconstructed(payment.StatusPending)

		require.NoError(t, p.MarkFailed("card_declined", now))
		assert.Equal(t, payment.StatusFailed, p.Status())
		require.NotNil(t, p.FailureReason())
		assert.Equal(t, "card_declined", *p.FailureReason())
	})

	t.Run("mark refunded", func(t *testing.T) {
		p := b.BuildReconstructed(payment.StatusSuccess)

		require.NoError(t, p.MarkRefunded("re_0001", now))
		assert.Equal(t, payment.StatusRefunded, p.Status())
		require.NotNil(t, p.RefundID())
		assert.Equal(t, "re_0001", *p.RefundID())
		require.NotNil(t, p.RefundedAt())
	})

	t.Run("invalid transitions", func(t *testing.T) {
		cases := []struct {
			name string
			from payment.Status
			do   func(p *payment.Payment) error
		}{
			{name: "succeed from failed", from: payment.StatusFailed, do: func(p *payment.Payment) error { return p.MarkSucceeded("txn", now) }},
			{name: "succeed from success", from: payment.StatusSuccess, do: func(p *payment.Payment) error { return p.MarkSucceeded("txn", now) }},
			{name: "fail from success", from: payment.StatusSuccess, do: func(p *payment.Payment) error { return p.MarkFailed("late", now) }},
			{name: "refund from pending", from: payment.StatusPending, do: func(p *payment.Payment) error { return p.MarkRefunded("re", now) }},
			{name: "refund from failed", from: payment.StatusFailed, do: func(p *payment.Payment) error { return p.MarkRefunded("re", now) }},
			{name: "refund twice", from: payment.StatusRefunded, do: func(p *payment.Payment) error { return p.MarkRefunded("re", now) }},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				p := b.BuildReconstructed(c.from)
				require.ErrorIs(t, c.do(p), payment.ErrInvalidTransition)
				assert.Equal(t, c.from, p.Status())
			})
		}
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewPaymentBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
