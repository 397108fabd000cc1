package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/businessdate"
	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/hub"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
	"github.com/ArmanWeb/bobatea/internal/timezone"
)

type Service struct {
	orders   interfaces.OrderRepository
	stores   interfaces.StoreRepository
	notifier *hub.Hub
	logger   logger.Logger
}

func NewService(orders interfaces.OrderRepository, stores interfaces.StoreRepository, notifier *hub.Hub, logger logger.Logger) *Service {
	return &Service{
		orders:   orders,
		stores:   stores,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	store, err := s.stores.FindByID(ctx, cmd.StoreID)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, fmt.Errorf("store %d is not accepting orders", store.ID)
	}

	now := time.Now().UTC()

	// Attribution runs once, here. The timezone, derived offset and
	// cutoff hour are snapshotted onto the order so the business date
	// stays re-derivable after any store reconfiguration.
	attribution, err := businessdate.Attribute(now, store.Timezone, store.CutoffHour)
	if err != nil {
		s.logger.Error("attribution_failed", "Failed to attribute business date", "", map[string]interface{}{
			"store_id": store.ID,
			"timezone": store.Timezone,
		}, err)
		return nil, err
	}

	offset, err := timezone.OffsetHours(store.Timezone, now)
	if err != nil {
		return nil, err
	}
	if offset != store.UTCOffset {
		// The stored offset is a reporting cache; refresh it when DST
		// moved the zone, but never fail the order over it.
		if err := s.stores.RefreshUTCOffset(ctx, store.ID, offset); err != nil {
			s.logger.Debug("offset_refresh_failed", "Failed to refresh cached UTC offset", "", map[string]interface{}{
				"store_id": store.ID,
			})
		}
	}

	items := make([]domain.OrderItem, len(cmd.Items))
	for i, item := range cmd.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order := &domain.Order{
		PickupCodeType: cmd.Channel,
		StoreID:        store.ID,
		CustomerID:     cmd.CustomerID,
		Items:          items,
		Status:         domain.StatusPending,
		StoreTimezone:  store.Timezone,
		StoreUTCOffset: offset,
		CutoffHour:     store.CutoffHour,
		BusinessDate:   attribution.BusinessDate,
		IsOvernight:    attribution.IsOvernight,
		CreatedAtUTC:   now,
		UpdatedAt:      now,
		Version:        1,
	}
	order.CalculateTotal()

	if err := order.Validate(); err != nil {
		s.logger.Error("validation_failed", "Order validation failed", "", nil, err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	seq, err := s.orders.NextPickupSeq(ctx, store.ID, attribution.BusinessDate)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate pickup code: %w", err)
	}
	order.PickupCode = fmt.Sprintf("%s%04d", cmd.Channel.PickupCodePrefix(), seq%10000)
	order.Number = orderNumber(store.ID, attribution.BusinessDate, seq)

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", "", nil, err)
		return nil, err
	}

	s.logger.Info("order_created", "Order created", "", map[string]interface{}{
		"order_number":  order.Number,
		"pickup_code":   order.PickupCode,
		"store_id":      order.StoreID,
		"business_date": order.BusinessDate,
		"is_overnight":  order.IsOvernight,
	})

	s.notifier.PublishOrderEvent(hub.Event{
		Name:         hub.EventOrderCreated,
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		PickupCode:   order.PickupCode,
		StoreID:      order.StoreID,
		Status:       order.Status,
		ItemsSummary: order.ItemsSummary(),
		TotalAmount:  order.TotalAmount,
		Timestamp:    now,
		CustomerID:   order.CustomerID,
	})

	return order, nil
}

func orderNumber(storeID int64, businessDate string, seq int) string {
	compact := strings.ReplaceAll(businessDate, "-", "")
	return fmt.Sprintf("ORD_%s_S%d_%04d", compact, storeID, seq)
}
