package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/hub"
)

// Handler upgrades HTTP requests to websocket connections bound to the
// notification hub.
type Handler struct {
	notifier *hub.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(notifier *hub.Hub, logger logger.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checks belong to the auth proxy in front of us.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws_upgrade_failed", "Failed to upgrade connection", "", nil, err)
		return
	}

	clientID := uuid.NewString()
	h.logger.Debug("ws_connected", "Realtime client connected", clientID, map[string]interface{}{
		"remote_addr": r.RemoteAddr,
	})

	c := newClient(clientID, conn, h.notifier, h.logger)
	go func() {
		c.run()
		h.logger.Debug("ws_disconnected", "Realtime client disconnected", clientID, nil)
	}()
}
