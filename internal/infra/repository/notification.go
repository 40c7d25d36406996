package repository

import (
	"context"
	"time"

	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

// NotificationRepository is the outbox for best-effort side effects. Jobs
// are written inside the primary transaction and drained by the dispatcher
// after commit, so a notification can never fail a state transition.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	const query = `
		INSERT INTO notification_jobs (id, kind, topic, payload, run_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, uuid.New(), kind, topic, payload, runAt, shared.JobStatusQueued)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

// ClaimDueJobs locks up to limit queued jobs that are due. SKIP LOCKED keeps
// a slow delivery from blocking the next dispatcher pass.
func (r *NotificationRepository) ClaimDueJobs(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]shared.NotificationJob, error) {
	const query = `
		SELECT id, kind, topic, payload, run_at, attempts, status
		FROM notification_jobs
		WHERE status = 'queued' AND run_at <= $1
		ORDER BY run_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	var jobs []shared.NotificationJob
	for rows.Next() {
		var j shared.NotificationJob
		if err := rows.Scan(&j.ID, &j.Kind, &j.Topic, &j.Payload, &j.RunAt, &j.Attempts, &j.Status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkJob(ctx context.Context, tx db.DBTX, jobID uuid.UUID, status string, lastError *string) error {
	const query = `
		UPDATE notification_jobs
		SET status = $2, last_error = $3, attempts = attempts + 1, updated_at = now()
		WHERE id = $1`

	_, err := tx.Exec(ctx, query, jobID, status, lastError)
	if err != nil {
		return infra.WrapRepoErr("failed to update notification job status", err)
	}
	return nil
}

// RequeueJob puts a failed delivery back with a delay, until the attempt
// budget is spent.
func (r *NotificationRepository) RequeueJob(ctx context.Context, tx db.DBTX, jobID uuid.UUID, runAt time.Time, lastError *string) error {
	const query = `
		UPDATE notification_jobs
		SET run_at = $2, last_error = $3, attempts = attempts + 1, updated_at = now()
		WHERE id = $1`

	_, err := tx.Exec(ctx, query, jobID, runAt, lastError)
	if err != nil {
		return infra.WrapRepoErr("failed to requeue notification job", err)
	}
	return nil
}
