package repository

import (
	"context"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

const bookingColumns = `id, charger_id, user_id, start_time, end_time, status,
	reserved_until, price_per_kwh_cents, total_price_cents, energy_kwh, created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	const query = `
		INSERT INTO bookings (id, charger_id, user_id, start_time, end_time, status,
			reserved_until, price_per_kwh_cents, total_price_cents, energy_kwh)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		b.ID(),
		b.ChargerID(),
		b.UserID(),
		b.Slot().Start(),
		b.Slot().End(),
		b.Status().String(),
		b.ReservedUntil(),
		b.PricePerKWhCents(),
		b.TotalPriceCents(),
		b.EnergyKWh(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

// Update persists the mutable lifecycle fields. Identity and interval never
// change after creation.
func (r *BookingRepository) Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	const query = `
		UPDATE bookings
		SET status = $2, reserved_until = $3, total_price_cents = $4, energy_kwh = $5, updated_at = now()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		b.ID(),
		b.Status().String(),
		b.ReservedUntil(),
		b.TotalPriceCents(),
		b.EnergyKWh(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found on update", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanOne(ctx, tx, query, id)
}

// FindByIDForUpdate locks the booking row for the remainder of the
// transaction. Every lifecycle mutation goes through this read.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, tx, query, id)
}

// CountOverlapping reports occupying bookings on the charger whose half-open
// interval overlaps [start, end). Callers must hold the charger row lock so
// the count cannot go stale before the insert.
func (r *BookingRepository) CountOverlapping(ctx context.Context, tx db.DBTX, chargerID uuid.UUID, slot booking.TimeSlot) (int64, error) {
	const query = `
		SELECT count(*)
		FROM bookings
		WHERE charger_id = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4`

	var count int64
	err := tx.QueryRow(ctx, query, chargerID, occupyingStatusStrings(), slot.End(), slot.Start()).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count overlapping bookings", err)
	}
	return count, nil
}

// ListIDsByStatuses returns the ids of bookings whose stored status is in
// the given set. The sweep locks and re-reads each row in its own
// transaction, so the listing takes no locks.
func (r *BookingRepository) ListIDsByStatuses(ctx context.Context, tx db.DBTX, statuses []booking.Status) ([]uuid.UUID, error) {
	const query = `SELECT id FROM bookings WHERE status = ANY($1) ORDER BY start_time`

	rows, err := tx.Query(ctx, query, statusStrings(statuses))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings by status", err)
	}
	defer rows.Close()

	return scanBookingIDs(rows)
}

// ListExpiredHoldIDs returns the ids of provisional holds whose payment
// deadline has passed. Same contract as ListIDsByStatuses: no locks, the
// reaper revalidates each row under its own lock.
func (r *BookingRepository) ListExpiredHoldIDs(ctx context.Context, tx db.DBTX, now time.Time) ([]uuid.UUID, error) {
	const query = `
		SELECT id
		FROM bookings
		WHERE status = ANY($1) AND reserved_until IS NOT NULL AND reserved_until < $2
		ORDER BY reserved_until`

	holdStatuses := []string{booking.StatusReserved.String(), booking.StatusPaymentPending.String()}
	rows, err := tx.Query(ctx, query, holdStatuses, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired holds", err)
	}
	defer rows.Close()

	return scanBookingIDs(rows)
}

func (r *BookingRepository) scanOne(ctx context.Context, tx db.DBTX, query string, id uuid.UUID) (*booking.Booking, error) {
	row := tx.QueryRow(ctx, query, id)
	b, err := scanBooking(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}
	return b, nil
}

func scanBookingIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read booking ids", err)
	}
	return ids, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, chargerID, userID uuid.UUID
		start, end            time.Time
		statusStr             string
		reservedUntil         *time.Time
		pricePerKWhCents      int64
		totalPriceCents       *int64
		energyKWh             *float64
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&id, &chargerID, &userID, &start, &end, &statusStr,
		&reservedUntil, &pricePerKWhCents, &totalPriceCents, &energyKWh, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	slot, err := booking.NewTimeSlot(start, end)
	if err != nil {
		return nil, err
	}
	status, err := booking.NewStatus(statusStr)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		id, chargerID, userID, slot, status,
		reservedUntil, pricePerKWhCents, totalPriceCents, energyKWh,
		createdAt, updatedAt,
	), nil
}

func occupyingStatusStrings() []string {
	return statusStrings(booking.OccupyingStatuses())
}

func statusStrings(statuses []booking.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}
