//go:build unit || e2e

package builder

import (
	"time"

	dombooking "chargeslot/internal/domain/booking"
	reqdto "chargeslot/internal/handler/dto/request"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingBuilder assembles bookings against a frozen clock so hold expiry
// and lead-time rules stay deterministic.
type BookingBuilder struct {
	ID               uuid.UUID
	ChargerID        uuid.UUID
	ChargerName      string
	UserID           uuid.UUID
	UserEmail        string
	Now              time.Time
	Start            time.Time
	End              time.Time
	Policy           dombooking.Policy
	PricePerKWhCents int64
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:               uuid.New(),
		ChargerID:        uuid.New(),
		ChargerName:      "Dock A-1",
		UserID:           uuid.New(),
		UserEmail:        "driver@example.com",
		Now:              now,
		Start:            now.Add(time.Hour),
		End:              now.Add(3 * time.Hour),
		Policy:           dombooking.DefaultPolicy(),
		PricePerKWhCents: 30,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

// Services returns collaborators wired to the builder's frozen clock.
func (b *BookingBuilder) Services() *dombooking.Services {
	return &dombooking.Services{
		Clock:      clock.NewMockClock(b.Now),
		Policy:     b.Policy,
		Calculator: dombooking.NewEnergyPriceCalculator(),
	}
}

func (b *BookingBuilder) Slot() dombooking.TimeSlot {
	slot, err := dombooking.NewTimeSlot(b.Start, b.End)
	if err != nil {
		panic(err)
	}
	return slot
}

// Build methods
func (b *BookingBuilder) BuildDomain() (*dombooking.Booking, error) {
	slot, err := dombooking.NewTimeSlot(b.Start, b.End)
	if err != nil {
		return nil, err
	}
	return dombooking.NewBooking(b.Services(), b.ChargerID, b.UserID, slot, b.PricePerKWhCents)
}

// BuildReconstructed materializes a booking at an arbitrary lifecycle
// position, the way a repository scan would.
func (b *BookingBuilder) BuildReconstructed(status dombooking.Status) *dombooking.Booking {
	var reservedUntil *time.Time
	if status == dombooking.StatusReserved || status == dombooking.StatusPaymentPending {
		until := b.Now.Add(b.Policy.HoldDuration)
		reservedUntil = &until
	}
	return dombooking.ReconstructBooking(
		b.ID, b.ChargerID, b.UserID,
		b.Slot(), status, reservedUntil,
		b.PricePerKWhCents, nil, nil,
		b.Now, b.Now,
	)
}

func (b *BookingBuilder) BuildCreateRequestDTO() reqdto.CreateBookingRequest {
	return reqdto.CreateBookingRequest{
		ChargerID: b.ChargerID,
		StartTime: b.Start,
		EndTime:   b.End,
	}
}

func (b *BookingBuilder) BuildView(status dombooking.Status) *queries.BookingView {
	var reservedUntil *time.Time
	if status == dombooking.StatusReserved || status == dombooking.StatusPaymentPending {
		until := b.Now.Add(b.Policy.HoldDuration)
		reservedUntil = &until
	}
	return &queries.BookingView{
		ID:               b.ID,
		ChargerID:        b.ChargerID,
		ChargerName:      b.ChargerName,
		UserID:           b.UserID,
		UserEmail:        b.UserEmail,
		StartTime:        b.Start,
		EndTime:          b.End,
		Status:           status.String(),
		ReservedUntil:    reservedUntil,
		PricePerKWhCents: b.PricePerKWhCents,
		CreatedAt:        b.Now,
		UpdatedAt:        b.Now,
	}
}

func (b *BookingBuilder) BuildListItem(status dombooking.Status) *queries.BookingListItem {
	return &queries.BookingListItem{
		ID:          b.ID,
		ChargerID:   b.ChargerID,
		ChargerName: b.ChargerName,
		StartTime:   b.Start,
		EndTime:     b.End,
		Status:      status.String(),
		CreatedAt:   b.Now,
	}
}

// Fluent builder methods
func (b *BookingBuilder) WithChargerID(id uuid.UUID) *BookingBuilder {
	b.ChargerID = id
	return b
}

func (b *BookingBuilder) WithUserID(id uuid.UUID) *BookingBuilder {
	b.UserID = id
	return b
}

func (b *BookingBuilder) WithSlot(start, end time.Time) *BookingBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *BookingBuilder) WithDuration(d time.Duration) *BookingBuilder {
	b.End = b.Start.Add(d)
	return b
}

func (b *BookingBuilder) WithStartIn(lead time.Duration) *BookingBuilder {
	duration := b.End.Sub(b.Start)
	b.Start = b.Now.Add(lead)
	b.End = b.Start.Add(duration)
	return b
}

func (b *BookingBuilder) WithPricePerKWhCents(cents int64) *BookingBuilder {
	b.PricePerKWhCents = cents
	return b
}

func (b *BookingBuilder) WithPolicy(p dombooking.Policy) *BookingBuilder {
	b.Policy = p
	return b
}
