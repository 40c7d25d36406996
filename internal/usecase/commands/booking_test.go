//go:build unit

package commands_test

import (
	"context"
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

type stubConversations struct {
	calls [][2]uuid.UUID
	err   error
}

func (s *stubConversations) FindOrCreate(_ context.Context, userA, userB uuid.UUID) (uuid.UUID, error) {
	s.calls = append(s.calls, [2]uuid.UUID{userA, userB})
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return uuid.New(), nil
}

type bookingFixture struct {
	uow           *fake.UnitOfWork
	processor     *commandsmock.MockPaymentProcessor
	conversations *stubConversations
	queries       *queriesmock.MockBookingQueries
	usecase       commands.BookingCommands
}

func newBookingFixture(t *testing.T, b *builder.BookingBuilder, now time.Time) *bookingFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	services := b.Services()
	services.Clock = clock.NewMockClock(now)

	f := &bookingFixture{
		uow:           fake.NewUnitOfWork(),
		processor:     commandsmock.NewMockPaymentProcessor(ctrl),
		conversations: &stubConversations{},
		queries:       queriesmock.NewMockBookingQueries(ctrl),
	}
	f.usecase = commands.NewBookingUseCase(f.uow, services, f.processor, f.conversations, f.queries)
	return f
}

func TestReserve(t *testing.T) {
	b := builder.NewBookingBuilder()
	chargerRow := builder.NewChargerBuilder()
	chargerRow.ID = b.ChargerID
	input := commands.ReserveInput{ChargerID: b.ChargerID, StartTime: b.Start, EndTime: b.End}

	t.Run("reserves a free slot", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.queries.EXPECT().GetByID(gomock.Any(), b.UserID, gomock.Any()).
			Return(b.BuildView(booking.StatusReserved), nil)

		view, err := f.usecase.Reserve(t.Context(), b.UserID, input)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, booking.StatusReserved.String(), view.Status)

		// one job for the driver, one for the charger owner
		assert.Equal(t, []string{
			booking.EventReserved.String(),
			booking.EventReserved.String(),
		}, f.uow.JobTopics())
		assert.Equal(t, []uuid.UUID{b.UserID, chargerRow.OwnerID}, f.uow.JobRecipients())

		require.Len(t, f.conversations.calls, 1)
		assert.Equal(t, b.UserID, f.conversations.calls[0][0])
		assert.Equal(t, chargerRow.OwnerID, f.conversations.calls[0][1])
	})

	t.Run("rejects an overlapping slot", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))

		_, err := f.usecase.Reserve(t.Context(), uuid.New(), input)
		require.ErrorIs(t, err, commands.ErrBookingConflict)
		assert.Empty(t, f.uow.Jobs())
		assert.Empty(t, f.conversations.calls)
	})

	t.Run("released slots are rebookable", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusCancelled))
		f.queries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(b.BuildView(booking.StatusReserved), nil)

		_, err := f.usecase.Reserve(t.Context(), uuid.New(), input)
		require.NoError(t, err)
	})

	t.Run("unknown charger", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)

		_, err := f.usecase.Reserve(t.Context(), b.UserID, input)
		require.ErrorIs(t, err, commands.ErrChargerNotFound)
	})

	t.Run("inactive charger", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		inactive := builder.NewChargerBuilder().AsInactive()
		inactive.ID = b.ChargerID
		f.uow.SeedCharger(inactive.BuildReconstructed())

		_, err := f.usecase.Reserve(t.Context(), b.UserID, input)
		require.ErrorIs(t, err, commands.ErrChargerUnavailable)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)

		_, err := f.usecase.Reserve(t.Context(), b.UserID, commands.ReserveInput{
			ChargerID: b.ChargerID,
			StartTime: b.End,
			EndTime:   b.Start,
		})
		require.ErrorIs(t, err, commands.ErrInvalidTimeSlot)
	})

	t.Run("policy violation", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())

		_, err := f.usecase.Reserve(t.Context(), b.UserID, commands.ReserveInput{
			ChargerID: b.ChargerID,
			StartTime: b.Now.Add(time.Minute), // under the minimum lead time
			EndTime:   b.Now.Add(2 * time.Hour),
		})
		require.ErrorIs(t, err, commands.ErrDomainValidation)
	})

	t.Run("conversation failure never fails the reservation", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.conversations.err = errors.New("registry down")
		f.queries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(b.BuildView(booking.StatusReserved), nil)

		view, err := f.usecase.Reserve(t.Context(), b.UserID, input)
		require.NoError(t, err)
		require.NotNil(t, view)
	})
}

func TestCancel(t *testing.T) {
	b := builder.NewBookingBuilder()
	chargerRow := builder.NewChargerBuilder()
	chargerRow.ID = b.ChargerID

	t.Run("owner cancels a provisional hold", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))

		err := f.usecase.Cancel(t.Context(), b.UserID, b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, f.uow.Booking(b.ID).Status())
		assert.Equal(t, []string{
			booking.EventCancelled.String(),
			booking.EventCancelled.String(),
		}, f.uow.JobTopics())
		assert.Equal(t, []uuid.UUID{b.UserID, chargerRow.OwnerID}, f.uow.JobRecipients())
	})

	t.Run("cancelling during the payment window fails the open payment", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		pending := builder.NewPaymentBuilder().
			WithBookingID(b.ID).
			WithUserID(b.UserID).
			BuildReconstructed(payment.StatusPending)
		f.uow.SeedPayment(pending)

		err := f.usecase.Cancel(t.Context(), b.UserID, b.ID)
		require.NoError(t, err)

		assert.Equal(t, booking.StatusCancelled, f.uow.Booking(b.ID).Status())

		failed := f.uow.Payment(pending.ID())
		assert.Equal(t, payment.StatusFailed, failed.Status())
		require.NotNil(t, failed.FailureReason())
		assert.Equal(t, "booking cancelled", *failed.FailureReason())

		assert.Equal(t, []string{
			booking.EventPaymentFailed.String(),
			booking.EventCancelled.String(),
			booking.EventCancelled.String(),
		}, f.uow.JobTopics())
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)

		err := f.usecase.Cancel(t.Context(), b.UserID, uuid.New())
		require.ErrorIs(t, err, commands.ErrBookingNotFound)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))

		err := f.usecase.Cancel(t.Context(), uuid.New(), b.ID)
		require.ErrorIs(t, err, commands.ErrNotOwner)
		assert.Equal(t, booking.StatusReserved, f.uow.Booking(b.ID).Status())
	})

	t.Run("confirmed booking past the cancellation deadline", func(t *testing.T) {
		pastDeadline := b.Start.Add(-b.Policy.CancellationDeadline + time.Minute)
		f := newBookingFixture(t, b, pastDeadline)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))

		err := f.usecase.Cancel(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrCancellationDeadline)
		assert.Equal(t, booking.StatusConfirmed, f.uow.Booking(b.ID).Status())
	})

	t.Run("terminal booking", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusExpired))

		err := f.usecase.Cancel(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrInvalidState)
	})

	t.Run("cancelling a paid booking refunds the capture", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		captured := builder.NewPaymentBuilder().
			WithBookingID(b.ID).
			WithUserID(b.UserID).
			BuildReconstructed(payment.StatusSuccess)
		f.uow.SeedPayment(captured)

		f.processor.EXPECT().
			Refund(gomock.Any(), *captured.TransactionID(), captured.AmountCents()).
			Return(&commands.RefundResult{RefundID: "re_0001"}, nil)

		err := f.usecase.Cancel(t.Context(), b.UserID, b.ID)
		require.NoError(t, err)

		assert.Equal(t, booking.StatusCancelled, f.uow.Booking(b.ID).Status())

		refunded := f.uow.Payment(captured.ID())
		assert.Equal(t, payment.StatusRefunded, refunded.Status())
		require.NotNil(t, refunded.RefundID())
		assert.Equal(t, "re_0001", *refunded.RefundID())

		assert.Equal(t, []string{
			booking.EventPaymentRefunded.String(),
			booking.EventCancelled.String(),
			booking.EventCancelled.String(),
		}, f.uow.JobTopics())
	})

	t.Run("gateway failure rolls the cancellation back", func(t *testing.T) {
		f := newBookingFixture(t, b, b.Now)
		f.uow.SeedCharger(chargerRow.BuildReconstructed())
		f.uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		captured := builder.NewPaymentBuilder().
			WithBookingID(b.ID).
			WithUserID(b.UserID).
			BuildReconstructed(payment.StatusSuccess)
		f.uow.SeedPayment(captured)

		f.processor.EXPECT().
			Refund(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("gateway timeout"))

		err := f.usecase.Cancel(t.Context(), b.UserID, b.ID)
		require.ErrorIs(t, err, commands.ErrPaymentGateway)

		assert.Equal(t, booking.StatusConfirmed, f.uow.Booking(b.ID).Status())
		assert.Equal(t, payment.StatusSuccess, f.uow.Payment(captured.ID()).Status())
		assert.Empty(t, f.uow.Jobs())
	})
}
