package commands

import (
	"context"
	"errors"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/domain/payment"
	"chargeslot/internal/infra"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/queries"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound      = errs.New("payment not found")
	ErrPaymentAlreadyExists = errs.New("payment already exists for booking")
	ErrReservationExpired   = errs.New("reservation hold expired")
	ErrPaymentFailed        = errs.New("payment was declined")
	ErrPaymentGateway       = errs.New("payment gateway unavailable")
	ErrRefundNotAllowed     = errs.New("refund not allowed")
)

const (
	holdExpiredReason      = "reservation hold expired"
	bookingCancelledReason = "booking cancelled"
)

type InitiatePaymentInput struct {
	BookingID uuid.UUID
	Method    string
}

type PaymentCommands interface {
	InitiatePayment(ctx context.Context, userID uuid.UUID, in InitiatePaymentInput) (*queries.PaymentView, error)
	ProcessPayment(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID) (*queries.PaymentView, error)
	RefundPayment(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID) error
}

type paymentUseCaseImpl struct {
	uow            shared.UnitOfWork
	services       *booking.Services
	processor      PaymentProcessor
	paymentQueries queries.PaymentQueries
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	services *booking.Services,
	processor PaymentProcessor,
	paymentQueries queries.PaymentQueries,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:            uow,
		services:       services,
		processor:      processor,
		paymentQueries: paymentQueries,
	}
}

// InitiatePayment prices the hold and moves it to PAYMENT_PENDING. The
// unique index on payments.booking_id makes the one-payment-per-booking
// rule hold even against concurrent initiations.
func (u *paymentUseCaseImpl) InitiatePayment(
	ctx context.Context,
	userID uuid.UUID,
	in InitiatePaymentInput,
) (*queries.PaymentView, error) {
	now := u.services.Clock.Now()
	var expired bool
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entity, err := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), in.BookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrBookingNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !entity.IsOwnedBy(userID) {
			return ErrNotOwner
		}

		if entity.Status() == booking.StatusReserved && !entity.HoldValid(now) {
			if err := expireHold(ctx, tx, entity, now); err != nil {
				return err
			}
			expired = true
			return nil
		}

		total := u.services.Calculator.TotalCents(entity.PricePerKWhCents(), entity.Slot())
		if err := entity.BeginPayment(now, total); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}

		paymentEntity, err := payment.NewPayment(entity.ID(), userID, total, payment.DefaultCurrency, in.Method)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}
		if err := tx.Payments().Create(ctx, tx.DB(), paymentEntity); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrPaymentAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return shared.EnqueueBookingJob(ctx, tx, entity, now)
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrReservationExpired
	}

	view, err := u.paymentQueries.GetByBookingID(ctx, userID, in.BookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

// ProcessPayment runs the gateway attempt for the pending payment. Expiry
// wins over processing: a hold whose deadline passed is failed and expired
// without ever reaching the gateway. Declines commit the FAILED/CANCELLED
// rows and then surface as an error.
func (u *paymentUseCaseImpl) ProcessPayment(
	ctx context.Context,
	userID uuid.UUID,
	bookingID uuid.UUID,
) (*queries.PaymentView, error) {
	now := u.services.Clock.Now()
	var outcome error
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		paymentEntity, err := tx.Payments().FindPendingByBookingIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// A payment that already settled is a state error, not a
				// missing record.
				if _, findErr := tx.Payments().FindByBookingID(ctx, tx.DB(), bookingID); findErr == nil {
					return ErrInvalidState
				}
				return ErrPaymentNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !paymentEntity.IsOwnedBy(userID) {
			return ErrNotOwner
		}
		entity, err := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		// Only a live PAYMENT_PENDING booking may reach the gateway. A
		// cancelled booking with a stray pending payment must never charge.
		if entity.Status() != booking.StatusPaymentPending {
			return ErrInvalidState
		}

		if !entity.HoldValid(now) {
			if err := paymentEntity.MarkFailed(holdExpiredReason, now); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			if err := tx.Payments().Update(ctx, tx.DB(), paymentEntity); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			if err := expireHold(ctx, tx, entity, now); err != nil {
				return err
			}
			outcome = ErrReservationExpired
			return nil
		}

		result, err := u.processor.Charge(ctx, ChargeRequest{
			PaymentID:   paymentEntity.ID().String(),
			BookingID:   bookingID.String(),
			AmountCents: paymentEntity.AmountCents(),
			Currency:    paymentEntity.Currency(),
			Method:      paymentEntity.Method(),
		})
		if err != nil {
			return errs.Mark(err, ErrPaymentGateway)
		}

		if result.Approved {
			if err := paymentEntity.MarkSucceeded(result.TransactionID, now); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			if err := entity.Confirm(); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
		} else {
			if err := paymentEntity.MarkFailed(result.FailureReason, now); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			if err := entity.Cancel(now, u.services.Policy); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			outcome = ErrPaymentFailed
			if result.FailureReason != "" {
				outcome = errs.Mark(errs.New(result.FailureReason), ErrPaymentFailed)
			}
		}

		if err := tx.Payments().Update(ctx, tx.DB(), paymentEntity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !result.Approved {
			if err := shared.EnqueuePaymentJob(ctx, tx, paymentEntity, booking.EventPaymentFailed, now); err != nil {
				return err
			}
		}
		return shared.EnqueueBookingJob(ctx, tx, entity, now)
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}

	view, err := u.paymentQueries.GetByBookingID(ctx, userID, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return view, nil
}

// RefundPayment releases a paid booking regardless of the cancellation
// deadline. Driver-side cancellations go through BookingCommands.Cancel,
// which enforces the deadline and refunds through the same helper.
func (u *paymentUseCaseImpl) RefundPayment(ctx context.Context, userID uuid.UUID, bookingID uuid.UUID) error {
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
		if err := entity.CancelForRefund(); err != nil {
			if errors.Is(err, booking.ErrInvalidTransition) {
				return ErrRefundNotAllowed
			}
			return errs.Mark(err, ErrInvalidState)
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := refundCapturedPayment(ctx, tx, u.processor, bookingID, now); err != nil {
			return err
		}
		return shared.EnqueueBookingJob(ctx, tx, entity, now)
	})
}

// refundCapturedPayment reverses a captured payment. Callers hold the
// booking row lock, which serializes all payment mutations for the booking.
func refundCapturedPayment(
	ctx context.Context,
	tx shared.Tx,
	processor PaymentProcessor,
	bookingID uuid.UUID,
	now time.Time,
) error {
	paymentEntity, err := tx.Payments().FindByBookingID(ctx, tx.DB(), bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrRefundNotAllowed
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if paymentEntity.Status() != payment.StatusSuccess || paymentEntity.TransactionID() == nil {
		return ErrRefundNotAllowed
	}

	result, err := processor.Refund(ctx, *paymentEntity.TransactionID(), paymentEntity.AmountCents())
	if err != nil {
		return errs.Mark(err, ErrPaymentGateway)
	}
	if err := paymentEntity.MarkRefunded(result.RefundID, now); err != nil {
		return errs.Mark(err, ErrInvalidState)
	}
	if err := tx.Payments().Update(ctx, tx.DB(), paymentEntity); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return shared.EnqueuePaymentJob(ctx, tx, paymentEntity, booking.EventPaymentRefunded, now)
}

// failPendingPayment marks the booking's pending payment FAILED, if one
// exists. Callers hold the booking row lock.
func failPendingPayment(
	ctx context.Context,
	tx shared.Tx,
	bookingID uuid.UUID,
	reason string,
	now time.Time,
) error {
	paymentEntity, err := tx.Payments().FindPendingByBookingIDForUpdate(ctx, tx.DB(), bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := paymentEntity.MarkFailed(reason, now); err != nil {
		return errs.Mark(err, ErrInvalidState)
	}
	if err := tx.Payments().Update(ctx, tx.DB(), paymentEntity); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return shared.EnqueuePaymentJob(ctx, tx, paymentEntity, booking.EventPaymentFailed, now)
}

// expireHold releases a hold whose payment deadline passed, inside the
// caller's transaction.
func expireHold(ctx context.Context, tx shared.Tx, entity *booking.Booking, now time.Time) error {
	if err := entity.Expire(); err != nil {
		return errs.Mark(err, ErrInvalidState)
	}
	if err := tx.Bookings().Update(ctx, tx.DB(), entity); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return shared.EnqueueBookingJob(ctx, tx, entity, now)
}
