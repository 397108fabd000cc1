package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

// Exchange and queue topology for the external POS/ERP feed.
const (
	menuSyncExchange = "menu_sync_topic"
	menuSyncQueue    = "menu_sync_queue"
	menuSyncDLQ      = "menu_sync_queue_dlq"
	menuSyncDLX      = "menu_sync_dlq"
	menuRoutingKey   = "menu.price.#"

	posEventsExchange = "pos_events_topic"
	posStatusQueue    = "pos_status_queue"
	posRoutingKey     = "pos.order.status.#"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	prefetch int
	logger   logger.Logger
}

func NewConsumer(conn Connection, prefetch int, logger logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch, logger: logger}
}

// ConsumePriceUpdates feeds every price event from the external menu
// feed into handler. A handler error sends the delivery to the DLQ; the
// sync attempt is never silently skipped.
func (c *consumer) ConsumePriceUpdates(ctx context.Context, handler interfaces.PriceUpdateHandler) error {
	return c.consumeLoop(ctx, "price_updates", func(ctx context.Context) error {
		return c.consumePriceUpdatesOnce(ctx, handler)
	})
}

// ConsumeStatusUpdates routes POS-originated status changes into
// handler. Deliveries are not requeued on handler failure: an invalid
// transition stays invalid on redelivery.
func (c *consumer) ConsumeStatusUpdates(ctx context.Context, handler interfaces.StatusUpdateHandler) error {
	return c.consumeLoop(ctx, "status_updates", func(ctx context.Context) error {
		return c.consumeStatusUpdatesOnce(ctx, handler)
	})
}

func (c *consumer) consumeLoop(ctx context.Context, name string, consume func(context.Context) error) error {
	for {
		err := consume(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("consumer_disconnected", fmt.Sprintf("Consumer %s disconnected, reconnecting", name), "", map[string]interface{}{
			"consumer": name,
		}, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *consumer) consumePriceUpdatesOnce(ctx context.Context, handler interfaces.PriceUpdateHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := c.setupMenuSyncInfrastructure(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(menuSyncQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			if err := handler(ctx, msg.Body); err != nil {
				// Bad prices go to the DLQ for operator inspection.
				msg.Nack(false, false)
			} else {
				msg.Ack(false)
			}
		}
	}
}

func (c *consumer) consumeStatusUpdatesOnce(ctx context.Context, handler interfaces.StatusUpdateHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := ch.ExchangeDeclare(posEventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare pos events exchange: %w", err)
	}
	q, err := ch.QueueDeclare(posStatusQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare pos status queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, posRoutingKey, posEventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind pos status queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			if err := handler(ctx, msg.Body); err != nil {
				msg.Nack(false, false)
			} else {
				msg.Ack(false)
			}
		}
	}
}

func (c *consumer) setupMenuSyncInfrastructure(ch Channel) error {
	if err := ch.ExchangeDeclare(menuSyncExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare menu sync exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(menuSyncDLX, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(menuSyncDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := ch.QueueBind(menuSyncDLQ, "#", menuSyncDLX, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": menuSyncDLX,
	}
	q, err := ch.QueueDeclare(menuSyncQueue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare menu sync queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, menuRoutingKey, menuSyncExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind menu sync queue: %w", err)
	}

	return nil
}
