//go:build unit

package worker_test

import (
	"errors"
	"testing"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/worker"
	"chargeslot/tests/common/builder"
	"chargeslot/tests/common/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweepServices(clk clock.Clock) *booking.Services {
	return &booking.Services{
		Clock:      clk,
		Policy:     booking.DefaultPolicy(),
		Calculator: booking.NewEnergyPriceCalculator(),
	}
}

func seedSlotCharger(uow *fake.UnitOfWork, b *builder.BookingBuilder) {
	cb := builder.NewChargerBuilder()
	cb.ID = b.ChargerID
	uow.SeedCharger(cb.BuildReconstructed())
}

func TestStatusSchedulerRunOnce(t *testing.T) {
	b := builder.NewBookingBuilder()

	t.Run("confirmed booking activates at slot start", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		clk := clock.NewMockClock(b.Start.Add(time.Minute))

		moved, err := worker.NewStatusScheduler(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, moved)

		got := uow.Booking(b.ID)
		require.NotNil(t, got)
		assert.Equal(t, booking.StatusActive, got.Status())
		assert.Equal(t, []string{
			booking.EventActivated.String(),
			booking.EventActivated.String(),
		}, uow.JobTopics())
	})

	t.Run("confirmed booking left before start stays put", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		clk := clock.NewMockClock(b.Start.Add(-time.Minute))

		moved, err := worker.NewStatusScheduler(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, moved)
		assert.Equal(t, booking.StatusConfirmed, uow.Booking(b.ID).Status())
		assert.Empty(t, uow.Jobs())
	})

	t.Run("active booking completes at slot end with estimated energy", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusActive))
		clk := clock.NewMockClock(b.End)

		moved, err := worker.NewStatusScheduler(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, moved)

		got := uow.Booking(b.ID)
		assert.Equal(t, booking.StatusCompleted, got.Status())
		require.NotNil(t, got.EnergyKWh())
		assert.InDelta(t, 14.8, *got.EnergyKWh(), 1e-9) // 2h at 7.4 kW
		assert.Equal(t, []string{
			booking.EventCompleted.String(),
			booking.EventCompleted.String(),
		}, uow.JobTopics())
	})

	t.Run("booking that slept through both boundaries completes in one pass", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusConfirmed))
		clk := clock.NewMockClock(b.End.Add(time.Hour))

		moved, err := worker.NewStatusScheduler(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, moved)
		assert.Equal(t, booking.StatusCompleted, uow.Booking(b.ID).Status())
		assert.Equal(t, []string{
			booking.EventCompleted.String(),
			booking.EventCompleted.String(),
		}, uow.JobTopics())
	})

	t.Run("provisional holds are not swept", func(t *testing.T) {
		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, b)
		uow.SeedBooking(b.BuildReconstructed(booking.StatusReserved))
		clk := clock.NewMockClock(b.End.Add(time.Hour))

		moved, err := worker.NewStatusScheduler(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Zero(t, moved)
		assert.Equal(t, booking.StatusReserved, uow.Booking(b.ID).Status())
	})

	t.Run("one failing row never blocks the rest of the sweep", func(t *testing.T) {
		broken := builder.NewBookingBuilder()
		healthy := builder.NewBookingBuilder()

		uow := fake.NewUnitOfWork()
		seedSlotCharger(uow, broken)
		seedSlotCharger(uow, healthy)
		uow.SeedBooking(broken.BuildReconstructed(booking.StatusConfirmed))
		uow.SeedBooking(healthy.BuildReconstructed(booking.StatusConfirmed))
		uow.FailUpdateOf(broken.ID, errors.New("row gone"))
		clk := clock.NewMockClock(broken.Start.Add(time.Minute))

		moved, err := worker.NewStatusScheduler(uow, sweepServices(clk), time.Minute).RunOnce(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, moved)

		assert.Equal(t, booking.StatusConfirmed, uow.Booking(broken.ID).Status())
		assert.Equal(t, booking.StatusActive, uow.Booking(healthy.ID).Status())
	})
}
