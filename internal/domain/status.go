package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is one of the known wire values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the order can leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TransitionLog is one immutable entry of an order's status history.
// Seq is a per-order monotonic counter, not a wall-clock ordering:
// concurrent updates may commit out of timestamp order.
type TransitionLog struct {
	ID        int64
	OrderID   int64
	Seq       int
	Status    Status
	Actor     string
	ChangedAt time.Time
}
