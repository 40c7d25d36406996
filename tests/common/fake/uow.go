//go:build unit

// Package fake holds an in-memory unit of work for usecase and worker
// tests. Repositories return copies so a rolled-back transaction leaves no
// trace, matching the commit semantics of the Postgres implementation.
package fake

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"chargeslot/internal/domain/booking"
	"chargeslot/internal/domain/charger"
	"chargeslot/internal/domain/payment"
	"chargeslot/internal/domain/user"
	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"
	"chargeslot/internal/usecase/shared"

	"github.com/google/uuid"
)

type UnitOfWork struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]*booking.Booking
	payments   map[uuid.UUID]*payment.Payment
	chargers   map[uuid.UUID]*charger.Charger
	users      map[uuid.UUID]*user.User
	jobs       []shared.NotificationJob
	updateErrs map[uuid.UUID]error
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		bookings:   map[uuid.UUID]*booking.Booking{},
		payments:   map[uuid.UUID]*payment.Payment{},
		chargers:   map[uuid.UUID]*charger.Charger{},
		users:      map[uuid.UUID]*user.User{},
		updateErrs: map[uuid.UUID]error{},
	}
}

// FailUpdateOf makes every booking update for the given ID fail with err.
func (u *UnitOfWork) FailUpdateOf(id uuid.UUID, err error) {
	u.updateErrs[id] = err
}

// Within snapshots the state and restores it when fn fails, mimicking a
// rollback.
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapBookings := copyMap(u.bookings)
	snapPayments := copyMap(u.payments)
	snapChargers := copyMap(u.chargers)
	snapUsers := copyMap(u.users)
	snapJobs := append([]shared.NotificationJob(nil), u.jobs...)

	if err := fn(ctx, &tx{uow: u}); err != nil {
		u.bookings = snapBookings
		u.payments = snapPayments
		u.chargers = snapChargers
		u.users = snapUsers
		u.jobs = snapJobs
		return err
	}
	return nil
}

func (u *UnitOfWork) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.Within(ctx, func(ctx context.Context, _ shared.Tx) error {
		return fn(ctx, nil)
	})
}

func copyMap[V any](src map[uuid.UUID]V) map[uuid.UUID]V {
	dst := make(map[uuid.UUID]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Seeding and inspection helpers. Callers hand over entities they no longer
// mutate.

func (u *UnitOfWork) SeedBooking(b *booking.Booking) {
	clone := *b
	u.bookings[b.ID()] = &clone
}

func (u *UnitOfWork) SeedPayment(p *payment.Payment) {
	clone := *p
	u.payments[p.ID()] = &clone
}

func (u *UnitOfWork) SeedCharger(c *charger.Charger) {
	clone := *c
	u.chargers[c.ID()] = &clone
}

func (u *UnitOfWork) SeedUser(usr *user.User) {
	clone := *usr
	u.users[usr.ID()] = &clone
}

func (u *UnitOfWork) Booking(id uuid.UUID) *booking.Booking {
	if b, ok := u.bookings[id]; ok {
		clone := *b
		return &clone
	}
	return nil
}

func (u *UnitOfWork) Payment(id uuid.UUID) *payment.Payment {
	if p, ok := u.payments[id]; ok {
		clone := *p
		return &clone
	}
	return nil
}

func (u *UnitOfWork) PaymentByBookingID(bookingID uuid.UUID) *payment.Payment {
	for _, p := range u.payments {
		if p.BookingID() == bookingID {
			clone := *p
			return &clone
		}
	}
	return nil
}

func (u *UnitOfWork) Jobs() []shared.NotificationJob {
	return append([]shared.NotificationJob(nil), u.jobs...)
}

func (u *UnitOfWork) JobTopics() []string {
	topics := make([]string, 0, len(u.jobs))
	for _, j := range u.jobs {
		topics = append(topics, j.Topic)
	}
	return topics
}

// JobRecipients extracts the recipient_id of each queued job, in enqueue
// order.
func (u *UnitOfWork) JobRecipients() []uuid.UUID {
	recipients := make([]uuid.UUID, 0, len(u.jobs))
	for _, j := range u.jobs {
		var body struct {
			RecipientID uuid.UUID `json:"recipient_id"`
		}
		if err := json.Unmarshal(j.Payload, &body); err != nil {
			continue
		}
		recipients = append(recipients, body.RecipientID)
	}
	return recipients
}

type tx struct {
	uow *UnitOfWork
}

func (t *tx) Bookings() shared.BookingRepository          { return &bookingRepo{uow: t.uow} }
func (t *tx) Payments() shared.PaymentRepository          { return &paymentRepo{uow: t.uow} }
func (t *tx) Chargers() shared.ChargerRepository          { return &chargerRepo{uow: t.uow} }
func (t *tx) Notifications() shared.NotificationRepository { return &notificationRepo{uow: t.uow} }
func (t *tx) Users() shared.UserRepository                { return &userRepo{uow: t.uow} }
func (t *tx) DB() db.DBTX                                 { return nil }

type bookingRepo struct {
	uow *UnitOfWork
}

func (r *bookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	for _, existing := range r.uow.bookings {
		if existing.ChargerID() == b.ChargerID() &&
			existing.Status().IsOccupying() &&
			existing.Slot().Overlaps(b.Slot()) {
			return infra.WrapRepoErr("booking overlaps an occupying hold", nil, infra.KindConflict)
		}
	}
	clone := *b
	r.uow.bookings[b.ID()] = &clone
	return nil
}

func (r *bookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if err, ok := r.uow.updateErrs[b.ID()]; ok {
		return err
	}
	if _, ok := r.uow.bookings[b.ID()]; !ok {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	clone := *b
	r.uow.bookings[b.ID()] = &clone
	return nil
}

func (r *bookingRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.uow.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	clone := *b
	return &clone, nil
}

func (r *bookingRepo) FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.FindByID(ctx, dbtx, id)
}

func (r *bookingRepo) CountOverlapping(_ context.Context, _ db.DBTX, chargerID uuid.UUID, slot booking.TimeSlot) (int64, error) {
	var count int64
	for _, b := range r.uow.bookings {
		if b.ChargerID() == chargerID && b.Status().IsOccupying() && b.Slot().Overlaps(slot) {
			count++
		}
	}
	return count, nil
}

func (r *bookingRepo) ListIDsByStatuses(_ context.Context, _ db.DBTX, statuses []booking.Status) ([]uuid.UUID, error) {
	var matched []*booking.Booking
	for _, b := range r.uow.bookings {
		for _, s := range statuses {
			if b.Status() == s {
				matched = append(matched, b)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Slot().Start().Before(matched[j].Slot().Start())
	})
	ids := make([]uuid.UUID, 0, len(matched))
	for _, b := range matched {
		ids = append(ids, b.ID())
	}
	return ids, nil
}

func (r *bookingRepo) ListExpiredHoldIDs(_ context.Context, _ db.DBTX, now time.Time) ([]uuid.UUID, error) {
	var matched []*booking.Booking
	for _, b := range r.uow.bookings {
		status := b.Status()
		if status != booking.StatusReserved && status != booking.StatusPaymentPending {
			continue
		}
		if b.ReservedUntil() == nil || !b.ReservedUntil().Before(now) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ReservedUntil().Before(*matched[j].ReservedUntil())
	})
	ids := make([]uuid.UUID, 0, len(matched))
	for _, b := range matched {
		ids = append(ids, b.ID())
	}
	return ids, nil
}

type paymentRepo struct {
	uow *UnitOfWork
}

func (r *paymentRepo) Create(_ context.Context, _ db.DBTX, p *payment.Payment) error {
	for _, existing := range r.uow.payments {
		if existing.BookingID() == p.BookingID() {
			return infra.WrapRepoErr("payment already exists for booking", nil, infra.KindDuplicateKey)
		}
	}
	clone := *p
	r.uow.payments[p.ID()] = &clone
	return nil
}

func (r *paymentRepo) Update(_ context.Context, _ db.DBTX, p *payment.Payment) error {
	if _, ok := r.uow.payments[p.ID()]; !ok {
		return infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}
	clone := *p
	r.uow.payments[p.ID()] = &clone
	return nil
}

func (r *paymentRepo) FindByIDForUpdate(_ context.Context, _ db.DBTX, id uuid.UUID) (*payment.Payment, error) {
	p, ok := r.uow.payments[id]
	if !ok {
		return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}
	clone := *p
	return &clone, nil
}

func (r *paymentRepo) FindByBookingID(_ context.Context, _ db.DBTX, bookingID uuid.UUID) (*payment.Payment, error) {
	for _, p := range r.uow.payments {
		if p.BookingID() == bookingID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
}

func (r *paymentRepo) FindPendingByBookingIDForUpdate(_ context.Context, _ db.DBTX, bookingID uuid.UUID) (*payment.Payment, error) {
	for _, p := range r.uow.payments {
		if p.BookingID() == bookingID && p.Status() == payment.StatusPending {
			clone := *p
			return &clone, nil
		}
	}
	return nil, infra.WrapRepoErr("pending payment not found", nil, infra.KindNotFound)
}

type chargerRepo struct {
	uow *UnitOfWork
}

func (r *chargerRepo) Create(_ context.Context, _ db.DBTX, c *charger.Charger) error {
	clone := *c
	r.uow.chargers[c.ID()] = &clone
	return nil
}

func (r *chargerRepo) LockByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*charger.Charger, error) {
	c, ok := r.uow.chargers[id]
	if !ok {
		return nil, infra.WrapRepoErr("charger not found", nil, infra.KindNotFound)
	}
	clone := *c
	return &clone, nil
}

func (r *chargerRepo) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*charger.Charger, error) {
	return r.LockByID(ctx, dbtx, id)
}

type notificationRepo struct {
	uow *UnitOfWork
}

func (r *notificationRepo) CreateJob(_ context.Context, _ db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	r.uow.jobs = append(r.uow.jobs, shared.NotificationJob{
		ID:      uuid.New(),
		Kind:    kind,
		Topic:   topic,
		Payload: payload,
		RunAt:   runAt,
		Status:  shared.JobStatusQueued,
	})
	return nil
}

func (r *notificationRepo) ClaimDueJobs(_ context.Context, _ db.DBTX, now time.Time, limit int) ([]shared.NotificationJob, error) {
	var due []shared.NotificationJob
	for _, j := range r.uow.jobs {
		if j.Status == shared.JobStatusQueued && !j.RunAt.After(now) {
			due = append(due, j)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (r *notificationRepo) MarkJob(_ context.Context, _ db.DBTX, jobID uuid.UUID, status string, _ *string) error {
	for i := range r.uow.jobs {
		if r.uow.jobs[i].ID == jobID {
			r.uow.jobs[i].Status = status
			r.uow.jobs[i].Attempts++
			return nil
		}
	}
	return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
}

func (r *notificationRepo) RequeueJob(_ context.Context, _ db.DBTX, jobID uuid.UUID, runAt time.Time, _ *string) error {
	for i := range r.uow.jobs {
		if r.uow.jobs[i].ID == jobID {
			r.uow.jobs[i].RunAt = runAt
			r.uow.jobs[i].Attempts++
			return nil
		}
	}
	return infra.WrapRepoErr("notification job not found", nil, infra.KindNotFound)
}

type userRepo struct {
	uow *UnitOfWork
}

func (r *userRepo) Create(_ context.Context, _ db.DBTX, usr *user.User) error {
	for _, existing := range r.uow.users {
		if existing.Email().Value() == usr.Email().Value() {
			return infra.WrapRepoErr("email already registered", nil, infra.KindDuplicateKey)
		}
	}
	clone := *usr
	r.uow.users[usr.ID()] = &clone
	return nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, _ db.DBTX, userID uuid.UUID) error {
	if _, ok := r.uow.users[userID]; !ok {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *userRepo) FindByEmail(_ context.Context, _ db.DBTX, email string) (*user.User, error) {
	for _, usr := range r.uow.users {
		if usr.Email().Value() == email {
			clone := *usr
			return &clone, nil
		}
	}
	return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
}

func (r *userRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*user.User, error) {
	usr, ok := r.uow.users[id]
	if !ok {
		return nil, infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	clone := *usr
	return &clone, nil
}
