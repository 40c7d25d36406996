//go:build unit

package booking_test

import (
	"testing"

	"chargeslot/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	all := []booking.Status{
		booking.StatusReserved,
		booking.StatusPaymentPending,
		booking.StatusConfirmed,
		booking.StatusActive,
		booking.StatusCompleted,
		booking.StatusCancelled,
		booking.StatusExpired,
	}

	t.Run("parsing", func(t *testing.T) {
		for _, s := range all {
			parsed, err := booking.NewStatus(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, parsed)
		}

		_, err := booking.NewStatus("charging")
		require.ErrorIs(t, err, booking.ErrInvalidStatus)
	})

	t.Run("allowed transitions", func(t *testing.T) {
		allowed := map[booking.Status][]booking.Status{
			booking.StatusReserved:       {booking.StatusPaymentPending, booking.StatusCancelled, booking.StatusExpired},
			booking.StatusPaymentPending: {booking.StatusConfirmed, booking.StatusCancelled, booking.StatusExpired},
			booking.StatusConfirmed:      {booking.StatusActive, booking.StatusCancelled},
			booking.StatusActive:         {booking.StatusCompleted},
			booking.StatusCompleted:      {},
			booking.StatusCancelled:      {},
			booking.StatusExpired:        {},
		}

		for from, targets := range allowed {
			permitted := map[booking.Status]bool{}
			for _, to := range targets {
				permitted[to] = true
			}
			for _, to := range all {
				assert.Equal(t, permitted[to], from.CanTransitionTo(to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("terminal states have no outgoing edges", func(t *testing.T) {
		for _, from := range all {
			if !from.IsTerminal() {
				continue
			}
			for _, to := range all {
				assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("occupying set", func(t *testing.T) {
		occupying := map[booking.Status]bool{
			booking.StatusReserved:       true,
			booking.StatusPaymentPending: true,
			booking.StatusConfirmed:      true,
			booking.StatusActive:         true,
		}

		for _, s := range all {
			assert.Equal(t, occupying[s], s.IsOccupying(), "%s", s)
		}

		assert.ElementsMatch(t,
			[]booking.Status{booking.StatusReserved, booking.StatusPaymentPending, booking.StatusConfirmed, booking.StatusActive},
			booking.OccupyingStatuses(),
		)
	})
}
