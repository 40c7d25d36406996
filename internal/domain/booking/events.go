package booking

// EventKind names a lifecycle event for the notification side channel.
type EventKind string

const (
	EventReserved        EventKind = "booking_reserved"
	EventPaymentPending  EventKind = "booking_payment_pending"
	EventConfirmed       EventKind = "booking_confirmed"
	EventActivated       EventKind = "booking_activated"
	EventCompleted       EventKind = "booking_completed"
	EventCancelled       EventKind = "booking_cancelled"
	EventExpired         EventKind = "booking_expired"
	EventPaymentFailed   EventKind = "payment_failed"
	EventPaymentRefunded EventKind = "payment_refunded"
)

func (e EventKind) String() string {
	return string(e)
}

// EventForStatus maps every booking status to its notification event. The
// switch is exhaustive over Status so a new status cannot be added without
// deciding what its event is.
func EventForStatus(s Status) (EventKind, bool) {
	switch s {
	case StatusReserved:
		return EventReserved, true
	case StatusPaymentPending:
		return EventPaymentPending, true
	case StatusConfirmed:
		return EventConfirmed, true
	case StatusActive:
		return EventActivated, true
	case StatusCompleted:
		return EventCompleted, true
	case StatusCancelled:
		return EventCancelled, true
	case StatusExpired:
		return EventExpired, true
	default:
		return "", false
	}
}
