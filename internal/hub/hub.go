// Package hub is a room-scoped publish/subscribe fan-out for real-time
// order events. Point-of-sale displays join store rooms, customer
// sessions join user rooms; publishing never blocks on a slow or dead
// subscriber.
//
// Delivery is best-effort, at-most-once per connected subscriber: the
// hub keeps no replay log, and a client that is disconnected at publish
// time reconciles by polling on reconnect.
package hub

import (
	"fmt"
	"sync"
	"time"

	"github.com/ArmanWeb/bobatea/internal/domain"
)

// Event names on the realtime channel.
const (
	EventOrderCreated = "order:created"
	EventStatusChange = "order:status:change"
	EventOrderReady   = "order:ready"
	EventOrderCancel  = "order:cancelled"
)

// Event is the JSON payload pushed to subscribers.
type Event struct {
	Name         string        `json:"event"`
	OrderID      int64         `json:"order_id"`
	OrderNumber  string        `json:"order_number"`
	PickupCode   string        `json:"pickup_code"`
	StoreID      int64         `json:"store_id"`
	Status       domain.Status `json:"status"`
	ItemsSummary string        `json:"items_summary,omitempty"`
	TotalAmount  float64       `json:"total_amount"`
	Timestamp    time.Time     `json:"timestamp"`
	CustomerID   *string       `json:"customer_id,omitempty"`
}

// StoreRoom names the room joined by displays and kitchen screens.
func StoreRoom(storeID int64) string { return fmt.Sprintf("store:%d", storeID) }

// UserRoom names the room joined by a customer's active session.
func UserRoom(userID string) string { return fmt.Sprintf("user:%s", userID) }

// Subscription is one subscriber's bounded outbound queue. Events are
// read from C; when the queue is full the oldest buffered event is
// dropped so one stalled client cannot hold back a room.
type Subscription struct {
	room string
	ch   chan Event
}

// C returns the subscriber's event channel. It is closed by
// Unsubscribe and by hub Shutdown.
func (s *Subscription) C() <-chan Event { return s.ch }

// Room returns the room this subscription belongs to.
func (s *Subscription) Room() string { return s.room }

// Hub fans events out to room subscribers. The zero value is not
// usable; construct with New and pass the instance by handle to the
// orchestrator and transport adapters.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]map[*Subscription]struct{}
	bufferSize int
	closed     bool
}

// New creates a running hub whose subscribers buffer up to bufferSize
// undelivered events each.
func New(bufferSize int) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		rooms:      make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe adds a new subscriber to the room. Membership is
// client-driven and unauthenticated here; whether a client may join a
// given store or user room is the transport layer's concern.
func (h *Hub) Subscribe(room string) *Subscription {
	sub := &Subscription{room: room, ch: make(chan Event, h.bufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Subscription]struct{})
		h.rooms[room] = members
	}
	members[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscription and closes its channel. After it
// returns the subscriber receives no further events.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[sub.room]
	if !ok {
		return
	}
	if _, member := members[sub]; !member {
		return
	}
	delete(members, sub)
	if len(members) == 0 {
		delete(h.rooms, sub.room)
	}
	close(sub.ch)
}

// PublishOrderEvent delivers the event to the order's store room and,
// when the event carries a customer id, to that customer's user room.
// A transition into ready additionally emits a distinguished
// EventOrderReady to the store room so display clients can call the
// ticket without diffing statuses; a transition into cancelled emits
// EventOrderCancel the same way.
//
// The call returns once the event is handed to every member's outbound
// queue; it never waits for acknowledgment.
func (h *Hub) PublishOrderEvent(event Event) {
	h.publish(StoreRoom(event.StoreID), event)
	if event.CustomerID != nil && *event.CustomerID != "" {
		h.publish(UserRoom(*event.CustomerID), event)
	}

	if event.Name != EventStatusChange {
		return
	}
	switch event.Status {
	case domain.StatusReady:
		called := event
		called.Name = EventOrderReady
		h.publish(StoreRoom(event.StoreID), called)
	case domain.StatusCancelled:
		cancelled := event
		cancelled.Name = EventOrderCancel
		h.publish(StoreRoom(event.StoreID), cancelled)
		if event.CustomerID != nil && *event.CustomerID != "" {
			h.publish(UserRoom(*event.CustomerID), cancelled)
		}
	}
}

func (h *Hub) publish(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for sub := range h.rooms[room] {
		deliver(sub.ch, event)
	}
}

// deliver enqueues without blocking, dropping the oldest buffered event
// when the queue is full. This isolates backpressure per client.
func deliver(ch chan Event, event Event) {
	for {
		select {
		case ch <- event:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Shutdown closes every subscription and rejects further publishes and
// subscribes. Safe to call more than once.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for room, members := range h.rooms {
		for sub := range members {
			close(sub.ch)
		}
		delete(h.rooms, room)
	}
}
