package shared

import (
	"context"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/domain/charger"
	"chargeslot/internal/domain/payment"
	"chargeslot/internal/domain/user"
	"chargeslot/internal/infra/db"

	"github.com/google/uuid"
)

// UnitOfWork scopes one atomic state transition. Either every row change
// inside fn commits, or none do; best-effort side channels stay outside.
type UnitOfWork interface {
	// Within: full read-committed transaction with serialization retry
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

type Tx interface {
	Bookings() BookingRepository
	Payments() PaymentRepository
	Chargers() ChargerRepository
	Notifications() NotificationRepository
	Users() UserRepository
	DB() db.DBTX
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	Update(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error)
	CountOverlapping(ctx context.Context, tx db.DBTX, chargerID uuid.UUID, slot booking.TimeSlot) (int64, error)
	ListIDsByStatuses(ctx context.Context, tx db.DBTX, statuses []booking.Status) ([]uuid.UUID, error)
	ListExpiredHoldIDs(ctx context.Context, tx db.DBTX, now time.Time) ([]uuid.UUID, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, tx db.DBTX, p *payment.Payment) error
	Update(ctx context.Context, tx db.DBTX, p *payment.Payment) error
	FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*payment.Payment, error)
	FindByBookingID(ctx context.Context, tx db.DBTX, bookingID uuid.UUID) (*payment.Payment, error)
	FindPendingByBookingIDForUpdate(ctx context.Context, tx db.DBTX, bookingID uuid.UUID) (*payment.Payment, error)
}

type ChargerRepository interface {
	Create(ctx context.Context, tx db.DBTX, c *charger.Charger) error
	LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*charger.Charger, error)
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*charger.Charger, error)
}

// NotificationJob is one outbox row: written inside the primary transaction,
// delivered by the dispatcher after commit.
type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	RunAt    time.Time
	Attempts int32
	Status   string
}

const (
	JobStatusQueued = "queued"
	JobStatusSent   = "sent"
	JobStatusFailed = "failed"
)

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	ClaimDueJobs(ctx context.Context, tx db.DBTX, now time.Time, limit int) ([]NotificationJob, error)
	MarkJob(ctx context.Context, tx db.DBTX, jobID uuid.UUID, status string, lastError *string) error
	RequeueJob(ctx context.Context, tx db.DBTX, jobID uuid.UUID, runAt time.Time, lastError *string) error
}

type UserRepository interface {
	Create(ctx context.Context, tx db.DBTX, u *user.User) error
	UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error
	FindByEmail(ctx context.Context, tx db.DBTX, email string) (*user.User, error)
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*user.User, error)
}

// ConversationRegistry is the side-effect contract consumed after a
// successful reservation commit. Failures are logged, never propagated.
type ConversationRegistry interface {
	FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (uuid.UUID, error)
}
