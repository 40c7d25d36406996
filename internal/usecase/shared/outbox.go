package shared

import (
	"context"
	"encoding/json"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/domain/payment"
	"chargeslot/internal/pkg/errs"

	"github.com/google/uuid"
)

// EnqueueBookingJob writes the lifecycle notification for the booking's
// current status into the outbox, inside the caller's transaction. Both
// parties get their own job: the driver who holds the booking and the
// owner of the charger.
func EnqueueBookingJob(ctx context.Context, tx Tx, b *booking.Booking, now time.Time) error {
	kind, ok := booking.EventForStatus(b.Status())
	if !ok {
		return nil
	}

	chargerRow, err := tx.Chargers().FindByID(ctx, tx.DB(), b.ChargerID())
	if err != nil {
		return errs.Wrap(err, "failed to resolve charger owner for notification")
	}
	recipients := []uuid.UUID{b.UserID()}
	if chargerRow.OwnerID() != b.UserID() {
		recipients = append(recipients, chargerRow.OwnerID())
	}

	for _, recipient := range recipients {
		payload, err := json.Marshal(map[string]any{
			"booking_id":   b.ID(),
			"charger_id":   b.ChargerID(),
			"user_id":      b.UserID(),
			"recipient_id": recipient,
			"status":       b.Status().String(),
		})
		if err != nil {
			return errs.Wrap(err, "failed to marshal notification payload")
		}
		if err := tx.Notifications().CreateJob(ctx, tx.DB(), "email", kind.String(), payload, now); err != nil {
			return err
		}
	}
	return nil
}

// EnqueuePaymentJob addresses the payer only; the booking job written in
// the same transaction carries the owner's copy of the outcome.
func EnqueuePaymentJob(ctx context.Context, tx Tx, p *payment.Payment, topic booking.EventKind, now time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"payment_id":   p.ID(),
		"booking_id":   p.BookingID(),
		"user_id":      p.UserID(),
		"recipient_id": p.UserID(),
		"status":       p.Status().String(),
	})
	if err != nil {
		return errs.Wrap(err, "failed to marshal notification payload")
	}
	return tx.Notifications().CreateJob(ctx, tx.DB(), "email", topic.String(), payload, now)
}
