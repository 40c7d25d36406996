package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEndNotAfterStart     = errors.New("end time must be after start time")
	ErrStartNotInFuture     = errors.New("start time must be in the future")
	ErrInsufficientLeadTime = errors.New("start time violates minimum lead time")
	ErrDurationTooShort     = errors.New("duration below minimum")
	ErrDurationTooLong      = errors.New("duration above maximum")
	ErrNegativePrice        = errors.New("price cannot be negative")
	ErrInvalidStatus        = errors.New("invalid booking status")
	ErrInvalidTransition    = errors.New("transition not allowed from current status")
	ErrHoldExpired          = errors.New("reservation hold expired")
	ErrAlreadyTerminal      = errors.New("booking is in a terminal state")
	ErrCancelDeadlinePassed = errors.New("cancellation deadline passed")
)

// Booking is a time-sliced hold on one charger. Created RESERVED with a
// payment deadline; PaymentGate and the sweeps move it along the lifecycle.
type Booking struct {
	id               uuid.UUID
	chargerID        uuid.UUID
	userID           uuid.UUID
	slot             TimeSlot
	status           Status
	reservedUntil    *time.Time
	pricePerKWhCents int64
	totalPriceCents  *int64
	energyKWh        *float64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewBooking validates the slot against the policy and creates the
// provisional hold. The price per kWh is snapshotted from the charger so a
// later tariff change never reprices an existing hold.
func NewBooking(
	services *Services,
	chargerID, userID uuid.UUID,
	slot TimeSlot,
	pricePerKWhCents int64,
) (*Booking, error) {
	now := services.Clock.Now()
	if err := services.Policy.ValidateSlot(now, slot); err != nil {
		return nil, err
	}
	if pricePerKWhCents < 0 {
		return nil, ErrNegativePrice
	}

	reservedUntil := now.Add(services.Policy.HoldDuration)
	return &Booking{
		id:               uuid.New(),
		chargerID:        chargerID,
		userID:           userID,
		slot:             slot,
		status:           StatusReserved,
		reservedUntil:    &reservedUntil,
		pricePerKWhCents: pricePerKWhCents,
	}, nil
}

func ReconstructBooking(
	id, chargerID, userID uuid.UUID,
	slot TimeSlot,
	status Status,
	reservedUntil *time.Time,
	pricePerKWhCents int64,
	totalPriceCents *int64,
	energyKWh *float64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		chargerID:        chargerID,
		userID:           userID,
		slot:             slot,
		status:           status,
		reservedUntil:    reservedUntil,
		pricePerKWhCents: pricePerKWhCents,
		totalPriceCents:  totalPriceCents,
		energyKWh:        energyKWh,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) ChargerID() uuid.UUID     { return b.chargerID }
func (b *Booking) UserID() uuid.UUID        { return b.userID }
func (b *Booking) Slot() TimeSlot           { return b.slot }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) ReservedUntil() *time.Time { return b.reservedUntil }
func (b *Booking) PricePerKWhCents() int64  { return b.pricePerKWhCents }
func (b *Booking) TotalPriceCents() *int64  { return b.totalPriceCents }
func (b *Booking) EnergyKWh() *float64      { return b.energyKWh }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

// HoldValid reports whether the payment deadline has not yet passed.
// Only meaningful while the hold is provisional.
func (b *Booking) HoldValid(now time.Time) bool {
	return b.reservedUntil != nil && !now.After(*b.reservedUntil)
}

func (b *Booking) transition(next Status) error {
	if !b.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	b.status = next
	return nil
}

// BeginPayment moves RESERVED to PAYMENT_PENDING while the hold is valid.
func (b *Booking) BeginPayment(now time.Time, totalCents int64) error {
	if b.status != StatusReserved {
		return ErrInvalidTransition
	}
	if !b.HoldValid(now) {
		return ErrHoldExpired
	}
	if totalCents < 0 {
		return ErrNegativePrice
	}
	if err := b.transition(StatusPaymentPending); err != nil {
		return err
	}
	b.totalPriceCents = &totalCents
	return nil
}

// Confirm marks the paid booking CONFIRMED and drops the hold deadline.
func (b *Booking) Confirm() error {
	if err := b.transition(StatusConfirmed); err != nil {
		return err
	}
	b.reservedUntil = nil
	return nil
}

// Expire releases a hold whose payment deadline passed.
func (b *Booking) Expire() error {
	if b.status != StatusReserved && b.status != StatusPaymentPending {
		return ErrInvalidTransition
	}
	return b.transition(StatusExpired)
}

// Cancel applies the cancellation rule precedence: terminal states are
// rejected outright, provisional holds cancel unconditionally, and a
// confirmed booking cancels only up to the deadline before its start.
func (b *Booking) Cancel(now time.Time, policy Policy) error {
	if b.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	if b.status == StatusReserved || b.status == StatusPaymentPending {
		return b.transition(StatusCancelled)
	}
	if now.After(b.slot.Start().Add(-policy.CancellationDeadline)) {
		return ErrCancelDeadlinePassed
	}
	return b.transition(StatusCancelled)
}

// CancelForRefund cancels a CONFIRMED booking as part of a refund. The
// cancellation deadline does not apply on this edge.
func (b *Booking) CancelForRefund() error {
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	return b.transition(StatusCancelled)
}

// Activate is taken only by the status sweep once the wall clock has
// reached the slot start.
func (b *Booking) Activate(now time.Time) error {
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	if now.Before(b.slot.Start()) {
		return ErrInvalidTransition
	}
	return b.transition(StatusActive)
}

// Complete is taken only by the status sweep once the wall clock has
// reached the slot end. Energy is recorded when the point metered it.
func (b *Booking) Complete(now time.Time, energyKWh *float64) error {
	if b.status != StatusActive {
		return ErrInvalidTransition
	}
	if now.Before(b.slot.End()) {
		return ErrInvalidTransition
	}
	if err := b.transition(StatusCompleted); err != nil {
		return err
	}
	b.energyKWh = energyKWh
	return nil
}

// EffectiveStatus derives what a viewer should see right now. The sweep is
// the only writer of ACTIVE/COMPLETED, but reads between sweeps must not
// show a stale CONFIRMED/ACTIVE.
func (b *Booking) EffectiveStatus(now time.Time) Status {
	return EffectiveStatus(b.status, b.slot, now)
}

// EffectiveStatus is the read-path derivation shared with view rows that
// never materialize a full entity.
func EffectiveStatus(stored Status, slot TimeSlot, now time.Time) Status {
	switch stored {
	case StatusConfirmed:
		if !now.Before(slot.End()) {
			return StatusCompleted
		}
		if !now.Before(slot.Start()) {
			return StatusActive
		}
		return StatusConfirmed
	case StatusActive:
		if !now.Before(slot.End()) {
			return StatusCompleted
		}
		return StatusActive
	case StatusReserved, StatusPaymentPending, StatusCompleted, StatusCancelled, StatusExpired:
		return stored
	default:
		return stored
	}
}
