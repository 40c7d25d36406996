package readstore

import (
	"context"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/infra"
	"chargeslot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChargerReadStore struct {
	pool *pgxpool.Pool
}

func NewChargerReadStore(pool *pgxpool.Pool) *ChargerReadStore {
	return &ChargerReadStore{pool: pool}
}

func (s *ChargerReadStore) List(ctx context.Context, activeOnly bool) ([]*queries.ChargerView, error) {
	const query = `
		SELECT id, owner_id, name, location, price_per_kwh_cents, rating, is_active, created_at
		FROM chargers
		WHERE ($1 = false OR is_active)
		ORDER BY name`

	rows, err := s.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list chargers", err)
	}
	defer rows.Close()

	var views []*queries.ChargerView
	for rows.Next() {
		view, err := scanChargerView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read charger rows", err)
	}
	return views, nil
}

func (s *ChargerReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ChargerView, error) {
	const query = `
		SELECT id, owner_id, name, location, price_per_kwh_cents, rating, is_active, created_at
		FROM chargers WHERE id = $1`

	return scanChargerView(s.pool.QueryRow(ctx, query, id))
}

// FindBookedSlots returns the occupied windows in [from, to) without
// exposing who booked them.
func (s *ChargerReadStore) FindBookedSlots(ctx context.Context, chargerID uuid.UUID, from, to time.Time) ([]*queries.BookedSlot, error) {
	const query = `
		SELECT start_time, end_time
		FROM bookings
		WHERE charger_id = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
		ORDER BY start_time`

	rows, err := s.pool.Query(ctx, query, chargerID, occupyingStatusStrings(), to, from)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list booked slots", err)
	}
	defer rows.Close()

	var slots []*queries.BookedSlot
	for rows.Next() {
		var slot queries.BookedSlot
		if err := rows.Scan(&slot.StartTime, &slot.EndTime); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booked slot", err)
		}
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booked slot rows", err)
	}
	return slots, nil
}

func occupyingStatusStrings() []string {
	statuses := booking.OccupyingStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

func scanChargerView(row pgx.Row) (*queries.ChargerView, error) {
	var view queries.ChargerView
	err := row.Scan(
		&view.ID, &view.OwnerID, &view.Name, &view.Location,
		&view.PricePerKWhCents, &view.Rating, &view.IsActive, &view.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("charger not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan charger row", err)
	}
	return &view, nil
}
