package queries

import (
	"context"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrNotOwner rejects a read of a record the actor does not hold. Shared by
// every ownership-scoped query.
var ErrNotOwner = errs.New("booking belongs to another user")

// Read models (DTO for read side)
type BookingView struct {
	ID               uuid.UUID  `json:"id"`
	ChargerID        uuid.UUID  `json:"charger_id"`
	ChargerName      string     `json:"charger_name"`
	UserID           uuid.UUID  `json:"user_id"`
	UserEmail        string     `json:"user_email"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	Status           string     `json:"status"`
	ReservedUntil    *time.Time `json:"reserved_until,omitempty"`
	PricePerKWhCents int64      `json:"price_per_kwh_cents"`
	TotalPriceCents  *int64     `json:"total_price_cents,omitempty"`
	EnergyKWh        *float64   `json:"energy_kwh,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type BookingListItem struct {
	ID          uuid.UUID `json:"id"`
	ChargerID   uuid.UUID `json:"charger_id"`
	ChargerName string    `json:"charger_name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingQueries interface {
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*BookingListItem, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
	clock clock.Clock
}

func NewBookingQueries(store BookingReadStore, clk clock.Clock) BookingQueries {
	return &bookingQueriesImpl{store: store, clock: clk}
}

// GetByID returns the actor's own booking with the live status derived
// from the wall clock. The sweep is the only writer of ACTIVE/COMPLETED; a
// viewer between sweeps must still never see a stale CONFIRMED/ACTIVE.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.UserID != actor {
		return nil, ErrNotOwner
	}
	view.Status = q.effective(view.Status, view.StartTime, view.EndTime)
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*BookingListItem, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.store.FindByUserID(ctx, userID, int32(limit))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		row.Status = q.effective(row.Status, row.StartTime, row.EndTime)
	}
	return rows, nil
}

func (q *bookingQueriesImpl) effective(stored string, start, end time.Time) string {
	status, err := booking.NewStatus(stored)
	if err != nil {
		return stored
	}
	slot, err := booking.NewTimeSlot(start, end)
	if err != nil {
		return stored
	}
	return booking.EffectiveStatus(status, slot, q.clock.Now()).String()
}
