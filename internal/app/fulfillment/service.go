package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/hub"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

// Service orchestrates order status changes: validate through the
// transition graph, persist with an optimistic version check, then
// notify. Persistence success gates notification, so a kitchen display
// never shows a transition that did not commit.
type Service struct {
	orders     interfaces.OrderRepository
	notifier   *hub.Hub
	logger     logger.Logger
	maxRetries int
}

func NewService(orders interfaces.OrderRepository, notifier *hub.Hub, logger logger.Logger, maxRetries int) *Service {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Service{
		orders:     orders,
		notifier:   notifier,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

func (s *Service) ChangeStatus(ctx context.Context, orderID int64, target domain.Status, actor string) (*domain.Order, error) {
	return s.changeStatus(ctx, func(ctx context.Context) (*domain.Order, error) {
		return s.orders.FindByID(ctx, orderID)
	}, target, actor)
}

func (s *Service) ChangeStatusByPickupCode(ctx context.Context, storeID int64, pickupCode string, target domain.Status, actor string) (*domain.Order, error) {
	return s.changeStatus(ctx, func(ctx context.Context) (*domain.Order, error) {
		return s.orders.FindByPickupCode(ctx, storeID, pickupCode)
	}, target, actor)
}

func (s *Service) changeStatus(ctx context.Context, load func(context.Context) (*domain.Order, error), target domain.Status, actor string) (*domain.Order, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("unknown status %q", target)
	}

	// Only the lost-race case retries; a validation failure is final
	// and must surface to the POS as a rejected action.
	for attempt := 1; ; attempt++ {
		order, err := load(ctx)
		if err != nil {
			return nil, err
		}

		expectedVersion := order.Version
		if err := order.TransitionTo(target, actor, time.Now().UTC()); err != nil {
			s.logger.Error("transition_rejected", "Status transition rejected", "", map[string]interface{}{
				"order_id": order.ID,
				"from":     string(order.Status),
				"to":       string(target),
				"attempt":  attempt,
				"actor":    actor,
			}, err)
			return nil, err
		}
		order.Version = expectedVersion + 1

		err = s.orders.UpdateStatus(ctx, order, expectedVersion)
		if err == nil {
			s.publish(order)
			return order, nil
		}
		if !errors.Is(err, domain.ErrPersistenceConflict) {
			s.logger.Error("persist_failed", "Failed to persist status change", "", map[string]interface{}{
				"order_id": order.ID,
			}, err)
			return nil, err
		}
		if attempt >= s.maxRetries {
			s.logger.Error("conflict_retries_exhausted", "Concurrent update retries exhausted", "", map[string]interface{}{
				"order_id": order.ID,
				"attempts": attempt,
			}, err)
			return nil, err
		}

		s.logger.Debug("conflict_retry", "Lost concurrent update race, retrying", "", map[string]interface{}{
			"order_id": order.ID,
			"attempt":  attempt,
		})
	}
}

func (s *Service) publish(order *domain.Order) {
	s.notifier.PublishOrderEvent(hub.Event{
		Name:         hub.EventStatusChange,
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		PickupCode:   order.PickupCode,
		StoreID:      order.StoreID,
		Status:       order.Status,
		ItemsSummary: order.ItemsSummary(),
		TotalAmount:  order.TotalAmount,
		Timestamp:    order.UpdatedAt,
		CustomerID:   order.CustomerID,
	})
}
