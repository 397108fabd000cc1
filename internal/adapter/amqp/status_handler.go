package amqp

import (
	"context"
	"encoding/json"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type StatusHandler struct {
	service interfaces.FulfillmentService
	logger  logger.Logger
}

func NewStatusHandler(service interfaces.FulfillmentService, logger logger.Logger) *StatusHandler {
	return &StatusHandler{service: service, logger: logger}
}

func (h *StatusHandler) HandleStatusUpdate(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse status update", "", nil, err)
		return err
	}

	_, err := h.service.ChangeStatus(ctx, msg.OrderID, msg.NewStatus, msg.ChangedBy)
	return err
}
