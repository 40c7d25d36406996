package request

import (
	"time"

	"chargeslot/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ChargerID uuid.UUID `json:"charger_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (r CreateBookingRequest) ToInput() commands.ReserveInput {
	return commands.ReserveInput{
		ChargerID: r.ChargerID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}
