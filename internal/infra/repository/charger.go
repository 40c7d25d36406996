package repository

import (
	"context"
	"time"

	"chargeslot/internal/domain/charger"
	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ChargerRepository struct{}

func NewChargerRepository() *ChargerRepository {
	return &ChargerRepository{}
}

const chargerColumns = `id, owner_id, name, location, price_per_kwh_cents, rating, is_active, created_at, updated_at`

func (r *ChargerRepository) Create(ctx context.Context, tx db.DBTX, c *charger.Charger) error {
	const query = `
		INSERT INTO chargers (id, owner_id, name, location, price_per_kwh_cents, rating, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		c.ID(), c.OwnerID(), c.Name(), c.Location(), c.PricePerKWhCents(), c.Rating(), c.IsActive(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create charger", err)
	}
	return nil
}

// LockByID takes the exclusive row lock that serializes reservation
// attempts on one charger. Held until the transaction ends.
func (r *ChargerRepository) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*charger.Charger, error) {
	query := `SELECT ` + chargerColumns + ` FROM chargers WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, tx, query, id)
}

func (r *ChargerRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*charger.Charger, error) {
	query := `SELECT ` + chargerColumns + ` FROM chargers WHERE id = $1`
	return r.scanOne(ctx, tx, query, id)
}

func (r *ChargerRepository) scanOne(ctx context.Context, tx db.DBTX, query string, id uuid.UUID) (*charger.Charger, error) {
	var (
		cid, ownerID         uuid.UUID
		name, location       string
		pricePerKWhCents     int64
		rating               float64
		isActive             bool
		createdAt, updatedAt time.Time
	)
	err := tx.QueryRow(ctx, query, id).Scan(
		&cid, &ownerID, &name, &location, &pricePerKWhCents, &rating, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("charger not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find charger", err)
	}

	return charger.ReconstructCharger(cid, ownerID, name, location, pricePerKWhCents, rating, isActive, createdAt, updatedAt), nil
}
