package worker

import (
	"context"
	"log/slog"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

// StatusScheduler is the time-based sweep: CONFIRMED bookings whose slot
// has started become ACTIVE, and ACTIVE bookings whose slot has ended become
// COMPLETED. It is the only writer of those two transitions; read paths
// derive the same answer from the wall clock between sweeps.
type StatusScheduler struct {
	uow      shared.UnitOfWork
	services *booking.Services
	period   time.Duration
}

func NewStatusScheduler(uow shared.UnitOfWork, services *booking.Services, period time.Duration) *StatusScheduler {
	return &StatusScheduler{uow: uow, services: services, period: period}
}

func (s *StatusScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				slog.Error("status sweep failed", "error", err)
			}
		}
	}
}

// RunOnce sweeps every CONFIRMED/ACTIVE booking once. Each row gets its own
// transaction: a failure on one booking is logged and skipped, and never
// rolls back the transitions already committed for the others. A booking
// that slept through both boundaries moves CONFIRMED -> ACTIVE -> COMPLETED
// in the same pass.
func (s *StatusScheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.services.Clock.Now()

	var ids []uuid.UUID
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var listErr error
		ids, listErr = tx.Bookings().ListIDsByStatuses(ctx, tx.DB(), []booking.Status{
			booking.StatusConfirmed,
			booking.StatusActive,
		})
		return listErr
	})
	if err != nil {
		return 0, errs.Wrap(err, "failed to list bookings for sweep")
	}

	transitioned := 0
	for _, id := range ids {
		moved, err := s.advance(ctx, id, now)
		if err != nil {
			slog.Warn("skipping booking in status sweep", "booking_id", id, "error", err)
			continue
		}
		if moved {
			transitioned++
		}
	}

	if transitioned > 0 {
		slog.Info("status sweep applied transitions", "count", transitioned)
	}
	return transitioned, nil
}

// advance moves one booking in its own transaction. The row lock re-reads
// the status, so a row another writer touched since the listing just falls
// through the guards untouched.
func (s *StatusScheduler) advance(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	moved := false
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), id)
		if err != nil {
			return errs.Wrap(err, "failed to lock booking for sweep")
		}

		if entity.Status() == booking.StatusConfirmed && !now.Before(entity.Slot().Start()) {
			if err := entity.Activate(now); err != nil {
				slog.Warn("skipping booking on activate", "booking_id", entity.ID(), "error", err)
				return nil
			}
			moved = true
		}
		if entity.Status() == booking.StatusActive && !now.Before(entity.Slot().End()) {
			energy := s.services.Calculator.EstimatedEnergyKWh(entity.Slot())
			if err := entity.Complete(now, &energy); err != nil {
				slog.Warn("skipping booking on complete", "booking_id", entity.ID(), "error", err)
				moved = false
				return nil
			}
			moved = true
		}
		if !moved {
			return nil
		}

		if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Wrap(err, "failed to persist sweep transition")
		}
		return shared.EnqueueBookingJob(ctx, tx, entity, now)
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}
