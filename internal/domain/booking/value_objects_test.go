//go:build unit

package booking_test

import (
	"math/rand"
	"testing"
	"time"

	"chargeslot/internal/domain/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlot(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	slot := func(startH, endH int) booking.TimeSlot {
		s, err := booking.NewTimeSlot(base.Add(time.Duration(startH)*time.Hour), base.Add(time.Duration(endH)*time.Hour))
		require.NoError(t, err)
		return s
	}

	t.Run("construction", func(t *testing.T) {
		_, err := booking.NewTimeSlot(base, base)
		require.ErrorIs(t, err, booking.ErrEndNotAfterStart)

		_, err = booking.NewTimeSlot(base.Add(time.Hour), base)
		require.ErrorIs(t, err, booking.ErrEndNotAfterStart)

		s := slot(0, 2)
		assert.Equal(t, 2*time.Hour, s.Duration())
	})

	t.Run("overlap is half-open", func(t *testing.T) {
		cases := []struct {
			name     string
			a, b     booking.TimeSlot
			overlaps bool
		}{
			{name: "identical", a: slot(0, 2), b: slot(0, 2), overlaps: true},
			{name: "contained", a: slot(0, 4), b: slot(1, 2), overlaps: true},
			{name: "partial left", a: slot(0, 2), b: slot(1, 3), overlaps: true},
			{name: "partial right", a: slot(1, 3), b: slot(0, 2), overlaps: true},
			{name: "back to back", a: slot(0, 2), b: slot(2, 4), overlaps: false},
			{name: "back to back reversed", a: slot(2, 4), b: slot(0, 2), overlaps: false},
			{name: "disjoint", a: slot(0, 1), b: slot(3, 4), overlaps: false},
		}

		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				assert.Equal(t, c.overlaps, c.a.Overlaps(c.b))
				assert.Equal(t, c.overlaps, c.b.Overlaps(c.a), "overlap must be symmetric")
			})
		}
	})

	t.Run("overlap agrees with interval arithmetic", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for range 500 {
			a := slot(rng.Intn(24), 24+rng.Intn(24))
			b := slot(rng.Intn(24), 24+rng.Intn(24))

			expected := a.Start().Before(b.End()) && a.End().After(b.Start())
			assert.Equal(t, expected, a.Overlaps(b), "a=%s b=%s", a, b)
		}
	})

	t.Run("contains includes start excludes end", func(t *testing.T) {
		s := slot(0, 2)
		assert.True(t, s.Contains(s.Start()))
		assert.True(t, s.Contains(s.Start().Add(time.Hour)))
		assert.False(t, s.Contains(s.End()))
		assert.False(t, s.Contains(s.Start().Add(-time.Second)))
	})
}

func TestMoney(t *testing.T) {
	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := booking.NewMoney(-1)
		require.ErrorIs(t, err, booking.ErrNegativePrice)
	})

	t.Run("multiplication truncates to cents", func(t *testing.T) {
		m, err := booking.NewMoney(100)
		require.NoError(t, err)
		assert.Equal(t, int64(150), m.Mul(1.5).Cents())
		assert.Equal(t, int64(33), m.Mul(0.333).Cents())
	})
}

func TestEnergyPriceCalculator(t *testing.T) {
	calc := booking.NewEnergyPriceCalculator()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	slot, err := booking.NewTimeSlot(base, base.Add(2*time.Hour))
	require.NoError(t, err)

	// 2h at a 7.4 kW nominal draw
	assert.InDelta(t, 14.8, calc.EstimatedEnergyKWh(slot), 1e-9)
	assert.Equal(t, int64(444), calc.TotalCents(30, slot))
}
