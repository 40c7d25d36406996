package readstore

import (
	"context"

	"chargeslot/internal/infra"
	"chargeslot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingReadStore struct {
	pool *pgxpool.Pool
}

func NewBookingReadStore(pool *pgxpool.Pool) *BookingReadStore {
	return &BookingReadStore{pool: pool}
}

func (s *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	const query = `
		SELECT b.id, b.charger_id, c.name, b.user_id, u.email,
		       b.start_time, b.end_time, b.status, b.reserved_until,
		       b.price_per_kwh_cents, b.total_price_cents, b.energy_kwh,
		       b.created_at, b.updated_at
		FROM bookings b
		JOIN chargers c ON c.id = b.charger_id
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1`

	var view queries.BookingView
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.ChargerID, &view.ChargerName, &view.UserID, &view.UserEmail,
		&view.StartTime, &view.EndTime, &view.Status, &view.ReservedUntil,
		&view.PricePerKWhCents, &view.TotalPriceCents, &view.EnergyKWh,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}
	return &view, nil
}

func (s *BookingReadStore) FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	const query = `
		SELECT b.id, b.charger_id, c.name, b.start_time, b.end_time, b.status, b.created_at
		FROM bookings b
		JOIN chargers c ON c.id = b.charger_id
		WHERE b.user_id = $1
		ORDER BY b.start_time DESC
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var items []*queries.BookingListItem
	for rows.Next() {
		var item queries.BookingListItem
		if err := rows.Scan(
			&item.ID, &item.ChargerID, &item.ChargerName,
			&item.StartTime, &item.EndTime, &item.Status, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking row", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booking rows", err)
	}
	return items, nil
}
