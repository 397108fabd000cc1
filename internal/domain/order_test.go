package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusPending, StatusConfirmed, StatusPreparing,
	StatusReady, StatusCompleted, StatusCancelled,
}

var legalEdges = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

func newTestOrder(status Status) *Order {
	return &Order{
		ID:             1,
		Number:         "ORD_20240110_S1_0001",
		PickupCode:     "T0001",
		PickupCodeType: CodeTypeOnline,
		StoreID:        1,
		Status:         status,
		History: []TransitionLog{
			{OrderID: 1, Seq: 1, Status: StatusPending, Actor: "order-service"},
		},
	}
}

func isLegal(from, to Status) bool {
	for _, s := range legalEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Every ordered pair of statuses, including same-state pairs, behaves
// exactly as the transition graph dictates.
func TestTransitionMatrix(t *testing.T) {
	now := time.Now().UTC()

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			order := newTestOrder(from)
			err := order.TransitionTo(to, "barista-1", now)

			if isLegal(from, to) {
				require.NoError(t, err, "%s -> %s should be legal", from, to)
				assert.Equal(t, to, order.Status)
			} else {
				require.Error(t, err, "%s -> %s should be rejected", from, to)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, from, order.Status, "rejected transition must not mutate status")
			}
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		for _, to := range allStatuses {
			order := newTestOrder(terminal)
			assert.False(t, order.CanTransitionTo(to), "%s -> %s", terminal, to)
		}
	}
}

func TestSameStateTransitionRejected(t *testing.T) {
	order := newTestOrder(StatusConfirmed)
	err := order.TransitionTo(StatusConfirmed, "webhook", time.Now().UTC())
	require.Error(t, err)

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, StatusConfirmed, invalid.From)
	assert.Equal(t, StatusConfirmed, invalid.To)
	// The message names the repeat so operators can spot duplicate
	// webhooks without reading code.
	assert.Contains(t, err.Error(), "already confirmed")
}

func TestTransitionAppendsSequencedHistory(t *testing.T) {
	order := newTestOrder(StatusPending)
	now := time.Now().UTC()

	require.NoError(t, order.TransitionTo(StatusConfirmed, "pos-1", now))
	require.NoError(t, order.TransitionTo(StatusPreparing, "barista-1", now.Add(time.Minute)))
	require.NoError(t, order.TransitionTo(StatusReady, "barista-1", now.Add(2*time.Minute)))

	require.Len(t, order.History, 4)
	for i, entry := range order.History {
		assert.Equal(t, i+1, entry.Seq, "sequence numbers are dense and monotonic")
	}
	assert.Equal(t, StatusReady, order.History[3].Status)
	assert.Equal(t, "barista-1", order.History[3].Actor)
}

func TestTransitionToConfirmedStampsActor(t *testing.T) {
	order := newTestOrder(StatusPending)
	now := time.Now().UTC()

	require.NoError(t, order.TransitionTo(StatusConfirmed, "cashier-7", now))
	require.NotNil(t, order.ConfirmedAt)
	require.NotNil(t, order.ConfirmedBy)
	assert.Equal(t, now, *order.ConfirmedAt)
	assert.Equal(t, "cashier-7", *order.ConfirmedBy)
}

func TestPickupCodePrefix(t *testing.T) {
	assert.Equal(t, "T", CodeTypeOnline.PickupCodePrefix())
	assert.Equal(t, "X", CodeTypeOffline.PickupCodePrefix())
}

func TestCalculateTotalAndSummary(t *testing.T) {
	order := newTestOrder(StatusPending)
	order.Items = []OrderItem{
		{Name: "Taro Latte", Quantity: 2, Price: 5.50},
		{Name: "Matcha", Quantity: 1, Price: 4.00},
	}
	order.CalculateTotal()

	assert.InDelta(t, 15.0, order.TotalAmount, 1e-9)
	assert.Equal(t, "2x Taro Latte, 1x Matcha", order.ItemsSummary())
}

func TestValidate(t *testing.T) {
	order := newTestOrder(StatusPending)
	order.Items = []OrderItem{{Name: "Taro Latte", Quantity: 1, Price: 5.50}}
	assert.NoError(t, order.Validate())

	order.Items[0].Quantity = 0
	assert.Error(t, order.Validate())

	order.Items[0].Quantity = 1
	order.Items[0].Price = 0
	assert.Error(t, order.Validate())

	order.Items = nil
	assert.Error(t, order.Validate())
}
