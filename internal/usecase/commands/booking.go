package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/infra"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/queries"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrChargerNotFound         = errs.New("charger not found")
	ErrChargerUnavailable      = errs.New("charger is not active")
	ErrBookingNotFound         = errs.New("booking not found")
	ErrBookingConflict         = errs.New("slot overlaps an existing booking")
	ErrInvalidTimeSlot         = errs.New("invalid time slot")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrNotOwner                = queries.ErrNotOwner
	ErrInvalidState            = errs.New("operation not allowed in current state")
	ErrCancellationDeadline    = errs.New("cancellation deadline passed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

type ReserveInput struct {
	ChargerID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

type BookingCommands interface {
	Reserve(ctx context.Context, userID uuid.UUID, in ReserveInput) (*queries.BookingView, error)
	Cancel(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID) error
}

type bookingUseCaseImpl struct {
	uow            shared.UnitOfWork
	services       *booking.Services
	processor      PaymentProcessor
	conversations  shared.ConversationRegistry
	bookingQueries queries.BookingQueries
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	services *booking.Services,
	processor PaymentProcessor,
	conversations shared.ConversationRegistry,
	bookingQueries queries.BookingQueries,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:            uow,
		services:       services,
		processor:      processor,
		conversations:  conversations,
		bookingQueries: bookingQueries,
	}
}

// Reserve creates a provisional hold. The charger row lock serializes
// concurrent requests for the same charger, so the overlap check and the
// insert are atomic: of two racing requests for overlapping slots, exactly
// one wins.
func (u *bookingUseCaseImpl) Reserve(
	ctx context.Context,
	userID uuid.UUID,
	in ReserveInput,
) (*queries.BookingView, error) {
	slot, err := booking.NewTimeSlot(in.StartTime, in.EndTime)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidTimeSlot)
	}

	var bookingID uuid.UUID
	var ownerID uuid.UUID
	err = u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		chargerRow, err := tx.Chargers().LockByID(ctx, tx.DB(), in.ChargerID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrChargerNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !chargerRow.IsActive() {
			return ErrChargerUnavailable
		}
		ownerID = chargerRow.OwnerID()

		overlapping, err := tx.Bookings().CountOverlapping(ctx, tx.DB(), in.ChargerID, slot)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if overlapping > 0 {
			return ErrBookingConflict
		}

		entity, err := booking.NewBooking(u.services, in.ChargerID, userID, slot, chargerRow.PricePerKWhCents())
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		if err := tx.Bookings().Create(ctx, tx.DB(), entity); err != nil {
			// Backup guard: the partial exclusion constraint catches what a
			// missed lock would let through
			if infra.IsKind(err, infra.KindConflict) {
				return ErrBookingConflict
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		bookingID = entity.ID()

		return shared.EnqueueBookingJob(ctx, tx, entity, u.services.Clock.Now())
	})
	if err != nil {
		return nil, err
	}

	// Driver-to-owner thread is a convenience, never a reason to fail a
	// committed reservation
	if _, convErr := u.conversations.FindOrCreate(ctx, userID, ownerID); convErr != nil {
		slog.Warn("failed to ensure conversation for booking",
			"booking_id", bookingID, "error", convErr)
	}

	view, err := u.bookingQueries.GetByID(ctx, userID, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

// Cancel applies the ownership and state rules, and refunds in the same
// transaction when a paid booking is released.
func (u *bookingUseCaseImpl) Cancel(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID) error {
	now := u.services.Clock.Now()
	return u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !entity.IsOwnedBy(userID) {
			return ErrNotOwner
		}

		wasConfirmed := entity.Status() == booking.StatusConfirmed
		wasPaymentPending := entity.Status() == booking.StatusPaymentPending
		if err := entity.Cancel(now, u.services.Policy); err != nil {
			switch {
			case errors.Is(err, booking.ErrAlreadyTerminal):
				return ErrInvalidState
			case errors.Is(err, booking.ErrCancelDeadlinePassed):
				return ErrCancellationDeadline
			default:
				return errs.Mark(err, ErrInvalidState)
			}
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		// A cancelled booking must not leave its payment open: an initiated
		// one fails, a captured one is refunded
		if wasPaymentPending {
			if err := failPendingPayment(ctx, tx, bookingID, bookingCancelledReason, now); err != nil {
				return err
			}
		}
		if wasConfirmed {
			if err := refundCapturedPayment(ctx, tx, u.processor, bookingID, now); err != nil {
				return err
			}
		}

		return shared.EnqueueBookingJob(ctx, tx, entity, now)
	})
}
