package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ChargerView struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	PricePerKWhCents int64     `json:"price_per_kwh_cents"`
	Rating           float64   `json:"rating"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// BookedSlot is the public availability projection: occupied windows only,
// no booker identity.
type BookedSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ChargerQueries interface {
	List(ctx context.Context, activeOnly bool) ([]*ChargerView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ChargerView, error)
	ListBookedSlots(ctx context.Context, chargerID uuid.UUID, from, to time.Time) ([]*BookedSlot, error)
}

type ChargerReadStore interface {
	List(ctx context.Context, activeOnly bool) ([]*ChargerView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*ChargerView, error)
	FindBookedSlots(ctx context.Context, chargerID uuid.UUID, from, to time.Time) ([]*BookedSlot, error)
}

type chargerQueriesImpl struct {
	store ChargerReadStore
}

func NewChargerQueries(store ChargerReadStore) ChargerQueries {
	return &chargerQueriesImpl{store: store}
}

func (q *chargerQueriesImpl) List(ctx context.Context, activeOnly bool) ([]*ChargerView, error) {
	return q.store.List(ctx, activeOnly)
}

func (q *chargerQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ChargerView, error) {
	return q.store.FindByID(ctx, id)
}

func (q *chargerQueriesImpl) ListBookedSlots(ctx context.Context, chargerID uuid.UUID, from, to time.Time) ([]*BookedSlot, error) {
	return q.store.FindBookedSlots(ctx, chargerID, from, to)
}
