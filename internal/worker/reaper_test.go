//go:build unit

package worker_test

import (
	"errors"
	"testing"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/domain/payment"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/worker"
	"chargeslot/tests/common/builder"
	"chargeslot/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiryReaperRunOnce(t *testing.T) {
	b := builder.NewBookingBuilder()
	afterDeadline := b.Now.Add(b.Policy.HoldDuration + time.Second)

	t.Run("overdue reserved hold expires", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))
		clk := clock.NewMockClock(afterDeadline)

		reaped, err := worker.NewExpiryReaper(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, reaped)
		assert.Equal(t, booking.StatusExpired, uow.Booking(b.ID).Status())
		assert.Equal(t, []string{
			booking.EventExpired.String(),
			booking.EventExpired.String(),
		}, uow.JobTopics())
	})

	t.Run("overdue hold with a pending payment fails the payment too", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusPaymentPending))
		pending := builder.NewPaymentBuilder().
			WithBookingID(b.ID).
			WithUserID(b.UserID).
			BuildReconstructed(payment.StatusPending)
		uow.SeedPayment(pending)
		clk := clock.NewMockClock(afterDeadline)

		reaped, err := worker.NewExpiryReaper(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, reaped)

		assert.Equal(t, booking.StatusExpired, uow.Booking(b.ID).Status())

		got := uow.Payment(pending.ID())
		require.NotNil(t, got)
		assert.Equal(t, payment.StatusFailed, got.Status())
		require.NotNil(t, got.FailureReason())
		assert.Equal(t, "reservation hold expired", *got.FailureReason())
	})

	t.Run("hold inside the deadline is untouched", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))
		clk := clock.NewMockClock(b.Now.Add(b.Policy.HoldDuration - time.Second))

		reaped, err := worker.NewExpiryReaper(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, reaped)
		assert.Equal(t, booking.StatusReserved, uow.Booking(b.ID).Status())
		assert.Empty(t, uow.Jobs())
	})

	t.Run("confirmed bookings are never reaped", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		clk := clock.NewMockClock(afterDeadline)

		reaped, err := worker.NewExpiryReaper(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, reaped)
		assert.Equal(t, booking.StatusConfirmed, uow.Booking(b.ID).Status())
	})

	t.Run("one failing hold never blocks the rest of the reap", func(t *testing.T) {
		broken := builder.NewBookingBuilder()
		healthy := builder.NewBookingBuilder()

		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, broken)
		seedSlotCharger(uow, healthy)
		uow.SeedBooking(broken.BuildReconstructed(booking.StatusReserved))
		uow.SeedBooking(healthy.BuildReconstructed(booking.StatusReserved))
		uow.FailUpdateOf(broken.ID, errors.New("row gone"))
		clk := clock.NewMockClock(afterDeadline)

		reaped, err := worker.NewExpiryReaper(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, reaped)

		assert.Equal(t, booking.StatusReserved, uow.Booking(broken.ID).Status())
		assert.Equal(t, booking.StatusExpired, uow.Booking(healthy.ID).Status())
	})
}
