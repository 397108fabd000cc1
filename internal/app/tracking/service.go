package tracking

import (
	"context"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

// Service is the read surface clients poll to reconcile after a missed
// realtime event.
type Service struct {
	orders interfaces.OrderRepository
	logger logger.Logger
}

func NewService(orders interfaces.OrderRepository, logger logger.Logger) *Service {
	return &Service{orders: orders, logger: logger}
}

func (s *Service) GetOrderStatus(ctx context.Context, storeID int64, pickupCode string) (*interfaces.TrackingOrderResponse, error) {
	order, err := s.orders.FindByPickupCode(ctx, storeID, pickupCode)
	if err != nil {
		return nil, err
	}

	return &interfaces.TrackingOrderResponse{
		OrderNumber:   order.Number,
		PickupCode:    order.PickupCode,
		StoreID:       order.StoreID,
		CurrentStatus: order.Status,
		BusinessDate:  order.BusinessDate,
		IsOvernight:   order.IsOvernight,
		TotalAmount:   order.TotalAmount,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

func (s *Service) GetOrderHistory(ctx context.Context, storeID int64, pickupCode string) ([]*domain.TransitionLog, error) {
	order, err := s.orders.FindByPickupCode(ctx, storeID, pickupCode)
	if err != nil {
		return nil, err
	}
	return s.orders.GetStatusHistory(ctx, order.ID)
}
