package commands

import (
	"context"

	"chargeslot/internal/domain/charger"
	"chargeslot/internal/infra"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/queries"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

type RegisterChargerInput struct {
	Name             string
	Location         string
	PricePerKWhCents int64
}

type ChargerCommands interface {
	RegisterCharger(ctx context.Context, ownerID uuid.UUID, in RegisterChargerInput) (*queries.ChargerView, error)
}

type chargerUseCaseImpl struct {
	uow            shared.UnitOfWork
	chargerQueries queries.ChargerQueries
}

func NewChargerUseCase(uow shared.UnitOfWork, chargerQueries queries.ChargerQueries) ChargerCommands {
	return &chargerUseCaseImpl{uow: uow, chargerQueries: chargerQueries}
}

func (u *chargerUseCaseImpl) RegisterCharger(
	ctx context.Context,
	ownerID uuid.UUID,
	in RegisterChargerInput,
) (*queries.ChargerView, error) {
	entity, err := charger.NewCharger(ownerID, in.Name, in.Location, in.PricePerKWhCents)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Chargers().Create(ctx, tx.DB(), entity); err != nil {
			if infra.IsKind(err, infra.KindForeignKeyViolated) {
				return errs.Mark(err, ErrDomainValidation)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := u.chargerQueries.GetByID(ctx, entity.ID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}
