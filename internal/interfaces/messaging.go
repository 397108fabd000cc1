package interfaces

import (
	"context"
	"time"

	"github.com/ArmanWeb/bobatea/internal/domain"
)

// Сообщения RabbitMQ (внешний фид iiko)
type PriceUpdateMessage struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	SyncedAt  time.Time `json:"synced_at"`
}

// StatusUpdateMessage is a POS-originated status change arriving over
// the message bus instead of HTTP.
type StatusUpdateMessage struct {
	OrderID   int64         `json:"order_id"`
	NewStatus domain.Status `json:"new_status"`
	ChangedBy string        `json:"changed_by"`
	Timestamp time.Time     `json:"timestamp"`
}

type (
	PriceUpdateHandler  func(ctx context.Context, body []byte) error
	StatusUpdateHandler func(ctx context.Context, body []byte) error
)

type MessageConsumer interface {
	ConsumePriceUpdates(ctx context.Context, handler PriceUpdateHandler) error
	ConsumeStatusUpdates(ctx context.Context, handler StatusUpdateHandler) error
}
