package components

import (
	"chargeslot/internal/domain/booking"
	"chargeslot/internal/infra/gateway"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/pkg/config"
	"chargeslot/internal/usecase"
	"chargeslot/internal/usecase/commands"
	"chargeslot/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		booking.NewEnergyPriceCalculator,
		fx.As(new(booking.PriceCalculator)),
	),
	NewBookingPolicy,
	func(clk clock.Clock, policy booking.Policy, calc booking.PriceCalculator) *booking.Services {
		return &booking.Services{
			Clock:      clk,
			Policy:     policy,
			Calculator: calc,
		}
	},
	fx.Annotate(
		gateway.NewSimulatedProcessor,
		fx.As(new(commands.PaymentProcessor)),
	),
	fx.Annotate(
		gateway.NewReceiptBuilder,
		fx.As(new(queries.ReceiptBuilder)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		usecase.NewAuthUseCase,
		commands.NewBookingUseCase,
		commands.NewPaymentUseCase,
		commands.NewChargerUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewChargerQueries,
		queries.NewPaymentQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewBookingPolicy(cfg config.Config) booking.Policy {
	return booking.Policy{
		MinDuration:          cfg.Booking.MinDuration,
		MaxDuration:          cfg.Booking.MaxDuration,
		MinLeadTime:          cfg.Booking.MinLeadTime,
		HoldDuration:         cfg.Booking.HoldDuration,
		CancellationDeadline: cfg.Booking.CancellationDeadline,
	}
}
