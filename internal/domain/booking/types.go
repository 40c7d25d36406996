package booking

// Status is the booking lifecycle state. RESERVED is the initial state; a
// booking only ever moves along the edges encoded in transitions below.
type Status string

const (
	StatusReserved       Status = "reserved"
	StatusPaymentPending Status = "payment_pending"
	StatusConfirmed      Status = "confirmed"
	StatusActive         Status = "active"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusExpired        Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusPaymentPending, StatusConfirmed,
		StatusActive, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is defined from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	case StatusReserved, StatusPaymentPending, StatusConfirmed, StatusActive:
		return false
	default:
		return false
	}
}

// IsOccupying reports whether a booking in this status holds the charger's
// slot for conflict purposes.
func (s Status) IsOccupying() bool {
	switch s {
	case StatusReserved, StatusPaymentPending, StatusConfirmed, StatusActive:
		return true
	case StatusCompleted, StatusCancelled, StatusExpired:
		return false
	default:
		return false
	}
}

// OccupyingStatuses is the set used in overlap queries. Two bookings on one
// charger may never both be in this set with overlapping intervals.
func OccupyingStatuses() []Status {
	return []Status{StatusReserved, StatusPaymentPending, StatusConfirmed, StatusActive}
}

// transitions is the edge set of the lifecycle state machine. Consulted by
// every mutation; the request path and the sweeps share it so the two paths
// cannot diverge.
var transitions = map[Status][]Status{
	StatusReserved:       {StatusPaymentPending, StatusCancelled, StatusExpired},
	StatusPaymentPending: {StatusConfirmed, StatusCancelled, StatusExpired},
	StatusConfirmed:      {StatusActive, StatusCancelled},
	StatusActive:         {StatusCompleted},
	StatusCompleted:      {},
	StatusCancelled:      {},
	StatusExpired:        {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
