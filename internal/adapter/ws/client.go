package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/hub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ControlMessage is what clients send to manage room membership.
// Authorization that a client may join a given store or user room is
// the caller's concern; the hub itself does not authenticate rooms.
type ControlMessage struct {
	Action  string `json:"action"`
	StoreID int64  `json:"store_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

const (
	ActionJoinStore       = "join:store"
	ActionLeaveStore      = "leave:store"
	ActionSubscribeUser   = "subscribe:user"
	ActionUnsubscribeUser = "unsubscribe:user"
)

// client binds one websocket connection to its hub subscriptions. Each
// room subscription keeps its own bounded queue inside the hub; a
// forwarder goroutine per subscription serializes writes through
// writeMu.
type client struct {
	id       string
	conn     *websocket.Conn
	notifier *hub.Hub
	logger   logger.Logger

	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[string]*hub.Subscription

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newClient(id string, conn *websocket.Conn, notifier *hub.Hub, logger logger.Logger) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{
		id:       id,
		conn:     conn,
		notifier: notifier,
		logger:   logger,
		subs:     make(map[string]*hub.Subscription),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *client) run() {
	c.wg.Add(1)
	go c.pingLoop()

	c.readLoop()

	c.cancel()
	c.teardown()
	c.wg.Wait()
	c.conn.Close()
}

func (c *client) readLoop() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ControlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ws_bad_control", "Ignoring malformed control message", c.id, nil)
			continue
		}
		c.handleControl(msg)
	}
}

func (c *client) handleControl(msg ControlMessage) {
	switch msg.Action {
	case ActionJoinStore:
		if msg.StoreID > 0 {
			c.join(hub.StoreRoom(msg.StoreID))
		}
	case ActionLeaveStore:
		if msg.StoreID > 0 {
			c.leave(hub.StoreRoom(msg.StoreID))
		}
	case ActionSubscribeUser:
		if msg.UserID != "" {
			c.join(hub.UserRoom(msg.UserID))
		}
	case ActionUnsubscribeUser:
		if msg.UserID != "" {
			c.leave(hub.UserRoom(msg.UserID))
		}
	default:
		c.logger.Debug("ws_unknown_action", "Ignoring unknown control action", c.id, map[string]interface{}{
			"hub_action": msg.Action,
		})
	}
}

func (c *client) join(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, joined := c.subs[room]; joined {
		return
	}
	sub := c.notifier.Subscribe(room)
	c.subs[room] = sub

	c.wg.Add(1)
	go c.forward(sub)

	c.logger.Debug("ws_room_joined", "Client joined room", c.id, map[string]interface{}{
		"room": room,
	})
}

func (c *client) leave(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, joined := c.subs[room]
	if !joined {
		return
	}
	delete(c.subs, room)
	c.notifier.Unsubscribe(sub)
}

func (c *client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for room, sub := range c.subs {
		delete(c.subs, room)
		c.notifier.Unsubscribe(sub)
	}
}

// forward drains one subscription's queue onto the wire. It exits when
// the subscription channel closes (leave, disconnect, or hub shutdown).
func (c *client) forward(sub *hub.Subscription) {
	defer c.wg.Done()

	for event := range sub.C() {
		if err := c.writeJSON(event); err != nil {
			// Dead connection; release the room slot now instead of
			// letting the queue churn until the read loop notices.
			c.notifier.Unsubscribe(sub)
			return
		}
	}
}

func (c *client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
