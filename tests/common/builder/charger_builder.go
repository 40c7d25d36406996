//go:build unit || e2e

package builder

import (
	"time"

	domcharger "chargeslot/internal/domain/charger"
	reqdto "chargeslot/internal/handler/dto/request"
	"chargeslot/internal/usecase/queries"

	"github.com/google/uuid"
)

type ChargerBuilder struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Name             string
	Location         string
	PricePerKWhCents int64
	Rating           float64
	IsActive         bool
	Now              time.Time
}

func NewChargerBuilder() *ChargerBuilder {
	return &ChargerBuilder{
		ID:               uuid.New(),
		OwnerID:          uuid.New(),
		Name:             "Dock A-1",
		Location:         "12 Harbor St",
		PricePerKWhCents: 30,
		Rating:           4.5,
		IsActive:         true,
		Now:              time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (c *ChargerBuilder) With(mutate func(*ChargerBuilder)) *ChargerBuilder {
	mutate(c)
	return c
}

// Build methods
func (c *ChargerBuilder) BuildDomain() (*domcharger.Charger, error) {
	return domcharger.NewCharger(c.OwnerID, c.Name, c.Location, c.PricePerKWhCents)
}

func (c *ChargerBuilder) BuildReconstructed() *domcharger.Charger {
	return domcharger.ReconstructCharger(
		c.ID, c.OwnerID, c.Name, c.Location,
		c.PricePerKWhCents, c.Rating, c.IsActive,
		c.Now, c.Now,
	)
}

func (c *ChargerBuilder) BuildRegisterRequestDTO() reqdto.RegisterChargerRequest {
	return reqdto.RegisterChargerRequest{
		Name:             c.Name,
		Location:         c.Location,
		PricePerKWhCents: c.PricePerKWhCents,
	}
}

func (c *ChargerBuilder) BuildView() *queries.ChargerView {
	return &queries.ChargerView{
		ID:               c.ID,
		OwnerID:          c.OwnerID,
		Name:             c.Name,
		Location:         c.Location,
		PricePerKWhCents: c.PricePerKWhCents,
		Rating:           c.Rating,
		IsActive:         c.IsActive,
		CreatedAt:        c.Now,
	}
}

// Fluent builder methods
func (c *ChargerBuilder) WithName(name string) *ChargerBuilder {
	c.Name = name
	return c
}

func (c *ChargerBuilder) WithPricePerKWhCents(cents int64) *ChargerBuilder {
	c.PricePerKWhCents = cents
	return c
}

func (c *ChargerBuilder) AsInactive() *ChargerBuilder {
	c.IsActive = false
	return c
}
