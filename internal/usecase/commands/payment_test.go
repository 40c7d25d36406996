//go:build unit

package commands_test

import (
	"errors"
	"testing"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/domain/payment"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/usecase/commands"
	"chargeslot/tests/common/builder"
	"chargeslot/tests/common/fake"
	commandsmock "chargeslot/tests/mock/commands"
	queriesmock "chargeslot/tests/mock/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type paymentFixture struct {
	uow       *fake.UnitOfWork
	processor *commandsmock.MockPaymentProcessor
	queries   *queriesmock.MockPaymentQueries
	usecase   commands.PaymentCommands
}

func newPaymentFixture(t *testing.T, b *builder.BookingBuilder, now time.Time) *paymentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	services := b.Services()
	services.Clock = clock.NewMockClock(now)

	f := &paymentFixture{
		uow:       fake.NewUnitOfWork(),
		processor: commandsmock.NewMockPaymentProcessor(ctrl),
		queries:   queriesmock.NewMockPaymentQueries(ctrl),
	}
	cb := builder.NewChargerBuilder()
	cb.ID = b.ChargerID
	f.uow.SeedCharger(cb.BuildReconstructed())
	f.usecase = commands.NewPaymentUseCase(f.uow, services, f.processor, f.queries)
	return f
}

func seedPendingPayment(f *paymentFixture, b *builder.BookingBuilder) *builder.PaymentBuilder {
	pb := builder.NewPaymentBuilder().WithBookingID(b.ID).WithUserID(b.UserID)
	f.uow.SeedPayment(pb.BuildReconstructed(payment.StatusPending))
	return pb
}

func TestInitiatePayment(t *testing.T) {
	b := builder.NewBookingBuilder()
	input := commands.InitiatePaymentInput{BookingID: b.ID, Method: "card"}

	t.Run("prices the hold and opens a pending payment", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))
		f.queries.EXPECT().GetByBookingID(gomock.Any(), b.UserID, b.ID).
			Return(builder.NewPaymentBuilder().WithBookingID(b.ID).BuildView(payment.StatusPending), nil)

		view, err := f.usecase.InitiatePayment(t.Context(), b.UserID, input)
		require.NoError(t, err)
		require.NotNil(t, view)

		got := f.uow.Booking(b.ID)
		assert.Equal(t, booking.StatusPaymentPending, got.Status())
		require.NotNil(t, got.TotalPriceCents())
		assert.Equal(t, int64(444), *got.TotalPriceCents()) // 2h * 7.4 kW * 30c

		pending := f.uow.PaymentByBookingID(b.ID)
		require.NotNil(t, pending)
		assert.Equal(t, payment.StatusPending, pending.Status())
		assert.Equal(t, int64(444), pending.AmountCents())
		assert.Equal(t, payment.DefaultCurrency, pending.Currency())
		assert.Equal(t, "card", pending.Method())

		// one job for the driver, one for the charger owner
		assert.Equal(t, []string{
			booking.EventPaymentPending.String(),
			booking.EventPaymentPending.String(),
		}, f.uow.JobTopics())
	})

	t.Run("expired hold is released and reported", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now.Add(b.Policy.HoldDuration+time.Second))
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))

		_, err := f.usecase.InitiatePayment(t.Context(), b.UserID, input)
		require.ErrorIs(t, err, commands.ErrReservationExpired)

		// the release itself must have committed
		assert.Equal(t, booking.StatusExpired, f.uow.Booking(b.ID).Status())
		assert.Equal(t, []string{
			booking.EventExpired.String(),
			booking.EventExpired.String(),
		}, f.uow.JobTopics())
		assert.Nil(t, f.uow.PaymentByBookingID(b.ID))
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)

		_, err := f.usecase.InitiatePayment(t.Context(), b.UserID, input)
		require.ErrorIs(t, err, commands.ErrBookingNotFound)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))

		_, err := f.usecase.InitiatePayment(t.Context(), uuid.New(), input)
		require.ErrorIs(t, err, commands.ErrNotOwner)
	})

	t.Run("second initiation is rejected", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))
		seedPendingPayment(f, b)

		_, err := f.usecase.InitiatePayment(t.Context(), b.UserID, input)
		require.ErrorIs(t, err, commands.ErrPaymentAlreadyExists)
		assert.Equal(t, booking.StatusReserved, f.uow.Booking(b.ID).Status())
	})

	t.Run("confirmed booking cannot start another payment", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))

		_, err := f.usecase.InitiatePayment(t.Context(), b.UserID, input)
		require.ErrorIs(t, err, commands.ErrInvalidState)
	})
}

func TestProcessPayment(t *testing.T) {
	b := builder.NewBookingBuilder()

	t.Run("approved charge confirms the booking", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		pb := seedPendingPayment(f, b)

		f.processor.EXPECT().Charge(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req commands.ChargeRequest) (*commands.ChargeResult, error) {
				assert.Equal(t, pb.AmountCents, req.AmountCents)
				assert.Equal(t, payment.DefaultCurrency, req.Currency)
				return &commands.ChargeResult{Approved: true, TransactionID: "txn_0001"}, nil
			})
		f.queries.EXPECT().GetByBookingID(gomock.Any(), b.UserID, b.ID).
			Return(pb.BuildView(payment.StatusSuccess), nil)

		view, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.NoError(t, err)
		require.NotNil(t, view)

		got := f.uow.Booking(b.ID)
		assert.Equal(t, booking.StatusConfirmed, got.Status())
		assert.Nil(t, got.ReservedUntil())

		captured := f.uow.PaymentByBookingID(b.ID)
		assert.Equal(t, payment.StatusSuccess, captured.Status())
		require.NotNil(t, captured.TransactionID())
		assert.Equal(t, "txn_0001", *captured.TransactionID())

		assert.Equal(t, []string{
			booking.EventConfirmed.String(),
			booking.EventConfirmed.String(),
		}, f.uow.JobTopics())
	})

	t.Run("declined charge commits the failure and cancels the hold", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		seedPendingPayment(f, b)

		f.processor.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(&commands.ChargeResult{Approved: false, FailureReason: "card_declined"}, nil)

		_, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrPaymentFailed)
		assert.Contains(t, err.Error(), "card_declined")

		assert.Equal(t, booking.StatusCancelled, f.uow.Booking(b.ID).Status())

		failed := f.uow.PaymentByBookingID(b.ID)
		assert.Equal(t, payment.StatusFailed, failed.Status())
		require.NotNil(t, failed.FailureReason())
		assert.Equal(t, "card_declined", *failed.FailureReason())

		assert.Equal(t, []string{
			booking.EventPaymentFailed.String(),
			booking.EventCancelled.String(),
			booking.EventCancelled.String(),
		}, f.uow.JobTopics())
	})

	t.Run("gateway error rolls everything back", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		seedPendingPayment(f, b)

		f.processor.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection reset"))

		_, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrPaymentGateway)

		assert.Equal(t, booking.StatusPaymentPending, f.uow.Booking(b.ID).Status())
		assert.Equal(t, payment.StatusPending, f.uow.PaymentByBookingID(b.ID).Status())
		assert.Empty(t, f.uow.Jobs())
	})

	t.Run("expiry wins over processing", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now.Add(b.Policy.HoldDuration+time.Second))
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		seedPendingPayment(f, b)
		// the gateway must never be reached

		_, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrReservationExpired)

		assert.Equal(t, booking.StatusExpired, f.uow.Booking(b.ID).Status())

		failed := f.uow.PaymentByBookingID(b.ID)
		assert.Equal(t, payment.StatusFailed, failed.Status())
		require.NotNil(t, failed.FailureReason())
		assert.Equal(t, "reservation hold expired", *failed.FailureReason())

		assert.Equal(t, []string{
			booking.EventExpired.String(),
			booking.EventExpired.String(),
		}, f.uow.JobTopics())
	})

	t.Run("cancelled booking is rejected before the gateway", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusCancelled))
		seedPendingPayment(f, b)
		// no Charge expectation: money must not move

		_, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrInvalidState)

		assert.Equal(t, payment.StatusPending, f.uow.PaymentByBookingID(b.ID).Status())
		assert.Empty(t, f.uow.Jobs())
	})

	t.Run("settled payment cannot be processed again", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		captured := builder.NewPaymentBuilder().
			WithBookingID(b.ID).
			WithUserID(b.UserID).
			BuildReconstructed(payment.StatusSuccess)
		f.uow.SeedPayment(captured)

		_, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrInvalidState)
	})

	t.Run("no pending payment", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))

		_, err := f.usecase.ProcessPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrPaymentNotFound)
	})

	t.Run("someone else's payment", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		seedPendingPayment(f, b)

		_, err := f.usecase.ProcessPayment(t.Context(), uuid.New(), b.ID)
		require.ErrorIs(t, err, commands.ErrNotOwner)
	})
}

func TestRefundPayment(t *testing.T) {
	b := builder.NewBookingBuilder()

	t.Run("refunds a confirmed booking", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		captured := builder.NewPaymentBuilder().
			WithBookingID(b.ID).
			WithUserID(b.UserID).
			BuildReconstructed(payment.StatusSuccess)
		f.uow.SeedPayment(captured)

		f.processor.EXPECT().
			Refund(gomock.Any(), *captured.TransactionID(), captured.AmountCents()).
			Return(&commands.RefundResult{RefundID: "re_0001"}, nil)

		err := f.usecase.RefundPayment(t.Context(), b.UserID, b.ID)
		require.NoError(t, err)

		assert.Equal(t, booking.StatusCancelled, f.uow.Booking(b.ID).Status())
		assert.Equal(t, payment.StatusRefunded, f.uow.Payment(captured.ID()).Status())
		assert.Equal(t, []string{
			booking.EventPaymentRefunded.String(),
			booking.EventCancelled.String(),
			booking.EventCancelled.String(),
		}, f.uow.JobTopics())
	})

	t.Run("only confirmed bookings are refundable", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))

		err := f.usecase.RefundPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrRefundNotAllowed)
	})

	t.Run("nothing captured means nothing to refund", func(t *testing.T) {
		f := newPaymentFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))

		err := f.usecase.RefundPayment(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrRefundNotAllowed)

		// cancellation must have rolled back with the refund
		assert.Equal(t, booking.StatusConfirmed, f.uow.Booking(b.ID).Status())
	})
}
