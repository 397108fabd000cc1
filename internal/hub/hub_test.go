package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmanWeb/bobatea/internal/domain"
)

func drain(sub *Subscription) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func statusEvent(storeID int64, status domain.Status, customerID *string) Event {
	return Event{
		Name:       EventStatusChange,
		OrderID:    42,
		PickupCode: "T0042",
		StoreID:    storeID,
		Status:     status,
		Timestamp:  time.Now().UTC(),
		CustomerID: customerID,
	}
}

func TestPublishReachesStoreRoom(t *testing.T) {
	h := New(8)
	defer h.Shutdown()

	store := h.Subscribe(StoreRoom(1))
	other := h.Subscribe(StoreRoom(2))

	h.PublishOrderEvent(statusEvent(1, domain.StatusConfirmed, nil))

	events := drain(store)
	require.Len(t, events, 1)
	assert.Equal(t, EventStatusChange, events[0].Name)
	assert.Equal(t, domain.StatusConfirmed, events[0].Status)

	assert.Empty(t, drain(other), "other store rooms must not receive the event")
}

func TestReadyEmitsDistinguishedTicketCall(t *testing.T) {
	h := New(8)
	defer h.Shutdown()

	store := h.Subscribe(StoreRoom(1))

	h.PublishOrderEvent(statusEvent(1, domain.StatusReady, nil))

	events := drain(store)
	require.Len(t, events, 2)
	assert.Equal(t, EventStatusChange, events[0].Name)
	assert.Equal(t, EventOrderReady, events[1].Name)
	assert.Equal(t, events[0].PickupCode, events[1].PickupCode)
}

func TestCustomerRoomDelivery(t *testing.T) {
	h := New(8)
	defer h.Shutdown()

	customer := "user-77"
	userSub := h.Subscribe(UserRoom(customer))
	strangerSub := h.Subscribe(UserRoom("someone-else"))

	h.PublishOrderEvent(statusEvent(1, domain.StatusConfirmed, &customer))

	require.Len(t, drain(userSub), 1)
	assert.Empty(t, drain(strangerSub))
}

func TestEventWithoutCustomerSkipsUserRooms(t *testing.T) {
	h := New(8)
	defer h.Shutdown()

	userSub := h.Subscribe(UserRoom("user-77"))

	// Ready event with no customer id: the user room gets neither the
	// status change nor the ticket call.
	h.PublishOrderEvent(statusEvent(1, domain.StatusReady, nil))

	assert.Empty(t, drain(userSub))
}

func TestCancelledEmitsCancellationEvent(t *testing.T) {
	h := New(8)
	defer h.Shutdown()

	customer := "user-9"
	store := h.Subscribe(StoreRoom(3))
	user := h.Subscribe(UserRoom(customer))

	h.PublishOrderEvent(statusEvent(3, domain.StatusCancelled, &customer))

	storeEvents := drain(store)
	require.Len(t, storeEvents, 2)
	assert.Equal(t, EventOrderCancel, storeEvents[1].Name)

	userEvents := drain(user)
	require.Len(t, userEvents, 2)
	assert.Equal(t, EventOrderCancel, userEvents[1].Name)
}

func TestFullQueueDropsOldest(t *testing.T) {
	h := New(2)
	defer h.Shutdown()

	sub := h.Subscribe(StoreRoom(1))

	for i := 1; i <= 5; i++ {
		ev := statusEvent(1, domain.StatusConfirmed, nil)
		ev.OrderID = int64(i)
		h.publish(StoreRoom(1), ev)
	}

	events := drain(sub)
	require.Len(t, events, 2)
	// Oldest events were dropped; the newest survive in order.
	assert.Equal(t, int64(4), events[0].OrderID)
	assert.Equal(t, int64(5), events[1].OrderID)
}

func TestPublishDoesNotBlockOnStalledSubscriber(t *testing.T) {
	h := New(1)
	defer h.Shutdown()

	// Never read from this subscription.
	_ = h.Subscribe(StoreRoom(1))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.PublishOrderEvent(statusEvent(1, domain.StatusConfirmed, nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := New(8)
	defer h.Shutdown()

	sub := h.Subscribe(StoreRoom(1))
	h.Unsubscribe(sub)

	h.PublishOrderEvent(statusEvent(1, domain.StatusConfirmed, nil))

	_, ok := <-sub.C()
	assert.False(t, ok, "channel must be closed after Unsubscribe")

	// Double unsubscribe is harmless.
	h.Unsubscribe(sub)
}

func TestUnsubscribeReleasesRoomSlot(t *testing.T) {
	// A dead subscriber dropped mid-stream must not affect its room
	// peers, and the room must keep delivering without it.
	h := New(8)
	defer h.Shutdown()

	dead := h.Subscribe(StoreRoom(1))
	alive := h.Subscribe(StoreRoom(1))

	h.PublishOrderEvent(statusEvent(1, domain.StatusConfirmed, nil))
	h.Unsubscribe(dead)

	second := statusEvent(1, domain.StatusConfirmed, nil)
	second.OrderID = 43
	h.PublishOrderEvent(second)

	events := drain(alive)
	require.Len(t, events, 2)
	assert.Equal(t, int64(43), events[1].OrderID)

	got := drain(dead)
	require.Len(t, got, 1, "only the pre-unsubscribe event reaches the dropped peer")
}

func TestShutdownClosesSubscribersAndRejectsPublish(t *testing.T) {
	h := New(8)
	sub := h.Subscribe(StoreRoom(1))

	h.Shutdown()
	h.Shutdown() // idempotent

	_, ok := <-sub.C()
	assert.False(t, ok)

	// Publishing after shutdown is a no-op, not a panic.
	h.PublishOrderEvent(statusEvent(1, domain.StatusReady, nil))

	late := h.Subscribe(StoreRoom(1))
	_, ok = <-late.C()
	assert.False(t, ok, "subscriptions after shutdown are born closed")
}
