package domain

import (
	"errors"
	"fmt"
	"time"
)

type CodeType string

const (
	CodeTypeOnline  CodeType = "online"
	CodeTypeOffline CodeType = "offline"
)

// PickupCodePrefix returns the single-letter prefix printed on the
// kitchen display: T for online orders, X for in-store terminals.
func (t CodeType) PickupCodePrefix() string {
	if t == CodeTypeOffline {
		return "X"
	}
	return "T"
}

// Order represents a customer order entity
type Order struct {
	ID             int64
	Number         string
	PickupCode     string
	PickupCodeType CodeType
	StoreID        int64
	CustomerID     *string
	Items          []OrderItem
	TotalAmount    float64
	Status         Status

	// Business-day attribution, computed once at creation from the
	// store's timezone and cutoff hour and never recomputed afterwards.
	// The timezone, offset and cutoff are snapshotted here so historical
	// orders keep their attribution even if the store is reconfigured.
	StoreTimezone  string
	StoreUTCOffset int
	CutoffHour     int
	BusinessDate   string
	IsOvernight    bool

	CreatedAtUTC time.Time
	UpdatedAt    time.Time
	ConfirmedAt  *time.Time
	ConfirmedBy  *string

	// Version is the optimistic-concurrency counter checked on every
	// status update. Two concurrent transitions from the same version
	// cannot both commit.
	Version int

	History []TransitionLog
}

// OrderItem represents a line in an order
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID string
	Name      string
	Quantity  int
	Price     float64
}

var (
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrOrderNotFound       = errors.New("order not found")
	ErrStoreNotFound       = errors.New("store not found")
	ErrPersistenceConflict = errors.New("concurrent order update conflict")
	ErrMenuEntryNotFound   = errors.New("shadow menu entry not found")
)

// InvalidTransitionError reports the exact rejected edge so operators
// can tell a double-submit from a genuine fault.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("invalid status transition: order is already %s (repeated transitions are rejected)", e.From)
	}
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// validTransitions is the full legal edge set. Terminal states have no
// outgoing edges; cancellation is unreachable once the order is ready.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo checks if the order can transition to the new status.
// Same-state transitions are rejected: a repeated confirmation is a
// duplicate webhook, not a retry-safe no-op.
func (o *Order) CanTransitionTo(newStatus Status) bool {
	for _, s := range validTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to newStatus and appends an immutable
// history entry with the next sequence number. It mutates only the
// aggregate; persistence and notification belong to the caller.
func (o *Order) TransitionTo(newStatus Status, actor string, now time.Time) error {
	if !o.CanTransitionTo(newStatus) {
		return &InvalidTransitionError{From: o.Status, To: newStatus}
	}

	o.Status = newStatus
	o.UpdatedAt = now

	if newStatus == StatusConfirmed {
		confirmedAt := now
		o.ConfirmedAt = &confirmedAt
		if actor != "" {
			o.ConfirmedBy = &actor
		}
	}

	o.History = append(o.History, TransitionLog{
		OrderID:   o.ID,
		Seq:       o.NextSeq(),
		Status:    newStatus,
		Actor:     actor,
		ChangedAt: now,
	})

	return nil
}

// NextSeq returns the sequence number the next transition entry gets.
func (o *Order) NextSeq() int {
	max := 0
	for _, entry := range o.History {
		if entry.Seq > max {
			max = entry.Seq
		}
	}
	return max + 1
}

// CalculateTotal sums the order lines into TotalAmount.
func (o *Order) CalculateTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	o.TotalAmount = total
}

// ItemsSummary renders a short "2x Taro Latte, 1x Matcha" line for
// kitchen displays.
func (o *Order) ItemsSummary() string {
	summary := ""
	for i, item := range o.Items {
		if i > 0 {
			summary += ", "
		}
		summary += fmt.Sprintf("%dx %s", item.Quantity, item.Name)
	}
	return summary
}

// Validate applies business validation rules at creation time.
func (o *Order) Validate() error {
	if o.StoreID <= 0 {
		return errors.New("order must belong to a store")
	}
	if o.PickupCodeType != CodeTypeOnline && o.PickupCodeType != CodeTypeOffline {
		return errors.New("invalid pickup code type")
	}
	if len(o.Items) < 1 || len(o.Items) > 30 {
		return errors.New("order must have 1-30 items")
	}
	for _, item := range o.Items {
		if item.Name == "" {
			return errors.New("item name is required")
		}
		if item.Quantity < 1 || item.Quantity > 20 {
			return errors.New("item quantity must be 1-20")
		}
		if item.Price <= 0 {
			return errors.New("item price must be positive")
		}
	}
	return nil
}
