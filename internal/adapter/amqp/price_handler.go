package amqp

import (
	"context"
	"encoding/json"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type PriceHandler struct {
	service interfaces.MenuSyncService
	logger  logger.Logger
}

func NewPriceHandler(service interfaces.MenuSyncService, logger logger.Logger) *PriceHandler {
	return &PriceHandler{service: service, logger: logger}
}

func (h *PriceHandler) HandlePriceUpdate(ctx context.Context, body []byte) error {
	var msg interfaces.PriceUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse price update", "", nil, err)
		return err
	}

	_, err := h.service.ApplyPriceUpdate(ctx, msg)
	return err
}
