package worker

import (
	"context"
	"log/slog"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/infra"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

const reapFailureReason = "reservation hold expired"

// ExpiryReaper frees holds whose payment deadline passed without a capture.
// The payment path also checks the deadline lazily, so the reaper is about
// releasing the slot for other drivers, not about correctness of a single
// booking.
type ExpiryReaper struct {
	uow      shared.UnitOfWork
	services *booking.Services
	period   time.Duration
}

func NewExpiryReaper(uow shared.UnitOfWork, services *booking.Services, period time.Duration) *ExpiryReaper {
	return &ExpiryReaper{uow: uow, services: services, period: period}
}

func (r *ExpiryReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				slog.Error("expiry reap failed", "error", err)
			}
		}
	}
}

// RunOnce expires every overdue hold, one transaction per row. A failure on
// one hold is logged and skipped; the holds already released stay released.
func (r *ExpiryReaper) RunOnce(ctx context.Context) (int, error) {
	now := r.services.Clock.Now()

	var ids []uuid.UUID
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var listErr error
		ids, listErr = tx.Bookings().ListExpiredHoldIDs(ctx, tx.DB(), now)
		return listErr
	})
	if err != nil {
		return 0, errs.Wrap(err, "failed to list expired holds")
	}

	expired := 0
	for _, id := range ids {
		reaped, err := r.expire(ctx, id, now)
		if err != nil {
			slog.Warn("skipping booking in expiry reap", "booking_id", id, "error", err)
			continue
		}
		if reaped {
			expired++
		}
	}

	if expired > 0 {
		slog.Info("expiry reap released holds", "count", expired)
	}
	return expired, nil
}

// expire releases one overdue hold in its own transaction. The row lock
// serializes against a concurrent payment attempt: whoever locks first
// decides, and the loser sees a status its guard rejects.
func (r *ExpiryReaper) expire(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	reaped := false
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), id)
		if err != nil {
			return errs.Wrap(err, "failed to lock booking for reap")
		}
		if status := entity.Status(); status != booking.StatusReserved && status != booking.StatusPaymentPending {
			return nil
		}
		if entity.HoldValid(now) {
			return nil
		}

		// A PAYMENT_PENDING hold has a pending payment row that must fail with it
		paymentEntity, err := tx.Payments().FindPendingByBookingIDForUpdate(ctx, tx.DB(), entity.ID())
		switch {
		case err == nil:
			if err := paymentEntity.MarkFailed(reapFailureReason, now); err != nil {
				return errs.Wrap(err, "failed to fail pending payment")
			}
			if err := tx.Payments().Update(ctx, tx.DB(), paymentEntity); err != nil {
				return errs.Wrap(err, "failed to persist failed payment")
			}
		case infra.IsKind(err, infra.KindNotFound):
			// RESERVED hold, nothing captured yet
		default:
			return errs.Wrap(err, "failed to look up pending payment")
		}

		if err := entity.Expire(); err != nil {
			return errs.Wrap(err, "failed to expire booking")
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Wrap(err, "failed to persist expired booking")
		}
		if err := shared.EnqueueBookingJob(ctx, tx, entity, now); err != nil {
			return err
		}
		reaped = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return reaped, nil
}
