package worker

import (
	"context"
	"log/slog"
	"time"

	"chargeslot/internal/pkg/clock"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/shared"
)

// Sender delivers one notification. The production binding logs; a real
// provider implements the same contract.
type Sender interface {
	Send(ctx context.Context, kind, topic string, payload []byte) error
}

// Dispatcher drains the notification outbox. SKIP LOCKED claiming means
// several dispatchers can run side by side without double delivery.
type Dispatcher struct {
	uow         shared.UnitOfWork
	sender      Sender
	clock       clock.Clock
	period      time.Duration
	batchSize   int
	maxAttempts int
}

func NewDispatcher(
	uow shared.UnitOfWork,
	sender Sender,
	clk clock.Clock,
	period time.Duration,
	batchSize int,
	maxAttempts int,
) *Dispatcher {
	return &Dispatcher{
		uow:         uow,
		sender:      sender,
		clock:       clk,
		period:      period,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.RunOnce(ctx); err != nil {
				slog.Error("notification dispatch failed", "error", err)
			}
		}
	}
}

// RunOnce claims one batch of due jobs and delivers them. A failed delivery
// is requeued with a linear backoff until the attempt budget is spent, then
// parked as failed.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	now := d.clock.Now()
	sent := 0

	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		jobs, err := tx.Notifications().ClaimDueJobs(ctx, tx.DB(), now, d.batchSize)
		if err != nil {
			return errs.Wrap(err, "failed to claim notification jobs")
		}

		for _, job := range jobs {
			if sendErr := d.sender.Send(ctx, job.Kind, job.Topic, job.Payload); sendErr != nil {
				if markErr := d.park(ctx, tx, job, now, sendErr); markErr != nil {
					return markErr
				}
				continue
			}
			if err := tx.Notifications().MarkJob(ctx, tx.DB(), job.ID, shared.JobStatusSent, nil); err != nil {
				return errs.Wrap(err, "failed to mark notification job sent")
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sent, nil
}

func (d *Dispatcher) park(ctx context.Context, tx shared.Tx, job shared.NotificationJob, now time.Time, sendErr error) error {
	msg := sendErr.Error()
	if int(job.Attempts)+1 >= d.maxAttempts {
		slog.Warn("notification job exhausted attempts",
			"job_id", job.ID, "topic", job.Topic, "error", msg)
		return tx.Notifications().MarkJob(ctx, tx.DB(), job.ID, shared.JobStatusFailed, &msg)
	}
	retryAt := now.Add(time.Duration(job.Attempts+1) * 30 * time.Second)
	return tx.Notifications().RequeueJob(ctx, tx.DB(), job.ID, retryAt, &msg)
}
