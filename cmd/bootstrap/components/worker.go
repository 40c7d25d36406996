package components

import (
	"context"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/infra/gateway"
	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/pkg/config"
	"chargeslot/internal/usecase/shared"
	"chargeslot/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		fx.Annotate(
			gateway.NewLogNotifier,
			fx.As(new(worker.Sender)),
		),
		NewStatusScheduler,
		NewExpiryReaper,
		NewDispatcher,
	),
	fx.Invoke(startWorkers),
)

func NewStatusScheduler(uow shared.UnitOfWork, services *booking.Services, cfg config.Config) *worker.StatusScheduler {
	return worker.NewStatusScheduler(uow, services, cfg.Worker.SweepPeriod)
}

func NewExpiryReaper(uow shared.UnitOfWork, services *booking.Services, cfg config.Config) *worker.ExpiryReaper {
	return worker.NewExpiryReaper(uow, services, cfg.Worker.ReapPeriod)
}

func NewDispatcher(uow shared.UnitOfWork, sender worker.Sender, clk clock.Clock, cfg config.Config) *worker.Dispatcher {
	return worker.NewDispatcher(
		uow,
		sender,
		clk,
		cfg.Worker.DispatchPeriod,
		cfg.Worker.DispatchBatch,
		cfg.Worker.DispatchAttempts,
	)
}

// startWorkers ties the background loops to the fx lifecycle so they stop
// with the server.
func startWorkers(
	lc fx.Lifecycle,
	scheduler *worker.StatusScheduler,
	reaper *worker.ExpiryReaper,
	dispatcher *worker.Dispatcher,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go scheduler.Run(runCtx)
			go reaper.Run(runCtx)
			go dispatcher.Run(runCtx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
