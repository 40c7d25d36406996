package request

import "chargeslot/internal/usecase/commands"

type RegisterChargerRequest struct {
	Name             string `json:"name" binding:"required,max=120"`
	Location         string `json:"location" binding:"required,max=255"`
	PricePerKWhCents int64  `json:"price_per_kwh_cents" binding:"required,gt=0"`
}

func (r RegisterChargerRequest) ToInput() commands.RegisterChargerInput {
	return commands.RegisterChargerInput{
		Name:             r.Name,
		Location:         r.Location,
		PricePerKWhCents: r.PricePerKWhCents,
	}
}
