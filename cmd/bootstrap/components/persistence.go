package components

import (
	"chargeslot/internal/infra/readstore"
	"chargeslot/internal/infra/repository"
	"chargeslot/internal/infra/uow"
	"chargeslot/internal/usecase/queries"
	"chargeslot/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(shared.UserRepository)),
		),
		fx.Annotate(
			NewConversationRegistry,
			fx.As(new(shared.ConversationRegistry)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewChargerReadStore,
			fx.As(new(queries.ChargerReadStore)),
		),
		fx.Annotate(
			readstore.NewPaymentReadStore,
			fx.As(new(queries.PaymentReadStore)),
		),
	),
)

func NewConversationRegistry(pool *pgxpool.Pool) *repository.ConversationRepository {
	return repository.NewConversationRepository(pool)
}
