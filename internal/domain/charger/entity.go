package charger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("charger name required")
	ErrInvalidPrice    = errors.New("price per kWh cannot be negative")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")
	ErrChargerInactive = errors.New("charger is not active")
)

// Charger is the shared asset being time-sliced. Read-mostly from the
// booking subsystem's perspective; its row is the lock target during
// reservation.
type Charger struct {
	id               uuid.UUID
	ownerID          uuid.UUID
	name             string
	location         string
	pricePerKWhCents int64
	rating           float64
	isActive         bool
	createdAt        time.Time
	updatedAt        time.Time
}

func NewCharger(ownerID uuid.UUID, name, location string, pricePerKWhCents int64) (*Charger, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if pricePerKWhCents < 0 {
		return nil, ErrInvalidPrice
	}
	return &Charger{
		id:               uuid.New(),
		ownerID:          ownerID,
		name:             name,
		location:         location,
		pricePerKWhCents: pricePerKWhCents,
		isActive:         true,
	}, nil
}

func ReconstructCharger(
	id, ownerID uuid.UUID,
	name, location string,
	pricePerKWhCents int64,
	rating float64,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Charger {
	return &Charger{
		id:               id,
		ownerID:          ownerID,
		name:             name,
		location:         location,
		pricePerKWhCents: pricePerKWhCents,
		rating:           rating,
		isActive:         isActive,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (c *Charger) ID() uuid.UUID           { return c.id }
func (c *Charger) OwnerID() uuid.UUID      { return c.ownerID }
func (c *Charger) Name() string            { return c.name }
func (c *Charger) Location() string        { return c.location }
func (c *Charger) PricePerKWhCents() int64 { return c.pricePerKWhCents }
func (c *Charger) Rating() float64         { return c.rating }
func (c *Charger) IsActive() bool          { return c.isActive }
func (c *Charger) CreatedAt() time.Time    { return c.createdAt }
func (c *Charger) UpdatedAt() time.Time    { return c.updatedAt }

func (c *Charger) UpdateRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return ErrInvalidRating
	}
	c.rating = rating
	return nil
}
