package booking

import (
	"time"

	"chargeslot/internal/pkg/clock"
)

// Policy bundles the reservation time rules. A single Policy value is built
// from config at boot and shared by the request path and the workers.
type Policy struct {
	MinDuration          time.Duration
	MaxDuration          time.Duration
	MinLeadTime          time.Duration
	HoldDuration         time.Duration
	CancellationDeadline time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MinDuration:          30 * time.Minute,
		MaxDuration:          8 * time.Hour,
		MinLeadTime:          15 * time.Minute,
		HoldDuration:         3 * time.Minute,
		CancellationDeadline: time.Hour,
	}
}

// ValidateSlot checks the requested interval against the policy. Each
// violation is reported with the sentinel naming the offended constraint.
func (p Policy) ValidateSlot(now time.Time, slot TimeSlot) error {
	if !slot.Start().After(now) {
		return ErrStartNotInFuture
	}
	if slot.Start().Before(now.Add(p.MinLeadTime)) {
		return ErrInsufficientLeadTime
	}
	if slot.Duration() < p.MinDuration {
		return ErrDurationTooShort
	}
	if slot.Duration() > p.MaxDuration {
		return ErrDurationTooLong
	}
	return nil
}

// Services carries the collaborators booking entities need at creation time.
type Services struct {
	Clock      clock.Clock
	Policy     Policy
	Calculator PriceCalculator
}

// PriceCalculator turns a slot and a price snapshot into a total amount.
type PriceCalculator interface {
	TotalCents(pricePerKWhCents int64, slot TimeSlot) int64
	EstimatedEnergyKWh(slot TimeSlot) float64
}

// EnergyPriceCalculator estimates consumption from a nominal charge-point
// draw and prices it at the per-kWh snapshot taken when the hold was created.
type EnergyPriceCalculator struct {
	NominalDrawKW float64
}

// 7.4 kW is a single-phase 32 A AC point, the common case for this fleet.
const defaultNominalDrawKW = 7.4

func NewEnergyPriceCalculator() *EnergyPriceCalculator {
	return &EnergyPriceCalculator{NominalDrawKW: defaultNominalDrawKW}
}

func (c *EnergyPriceCalculator) EstimatedEnergyKWh(slot TimeSlot) float64 {
	return slot.Duration().Hours() * c.NominalDrawKW
}

func (c *EnergyPriceCalculator) TotalCents(pricePerKWhCents int64, slot TimeSlot) int64 {
	return int64(float64(pricePerKWhCents) * c.EstimatedEnergyKWh(slot))
}
