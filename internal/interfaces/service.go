package interfaces

import (
	"context"
	"time"

	"github.com/ArmanWeb/bobatea/internal/domain"
)

// Команды для сервисов
type CreateOrderCommand struct {
	StoreID    int64
	Channel    domain.CodeType
	CustomerID *string
	Items      []CreateOrderItemCommand
}

type CreateOrderItemCommand struct {
	ProductID string
	Name      string
	Quantity  int
	Price     float64
}

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

type FulfillmentService interface {
	ChangeStatus(ctx context.Context, orderID int64, target domain.Status, actor string) (*domain.Order, error)
	ChangeStatusByPickupCode(ctx context.Context, storeID int64, pickupCode string, target domain.Status, actor string) (*domain.Order, error)
}

type MenuSyncService interface {
	ApplyPriceUpdate(ctx context.Context, msg PriceUpdateMessage) (*domain.ShadowMenuEntry, error)
	Approve(ctx context.Context, productID, approver string) error
	Reject(ctx context.Context, productID, approver string) error
	ListPending(ctx context.Context) ([]*domain.ShadowMenuEntry, error)
}

type TrackingService interface {
	GetOrderStatus(ctx context.Context, storeID int64, pickupCode string) (*TrackingOrderResponse, error)
	GetOrderHistory(ctx context.Context, storeID int64, pickupCode string) ([]*domain.TransitionLog, error)
}

// Ответы Tracking Service
type TrackingOrderResponse struct {
	OrderNumber   string
	PickupCode    string
	StoreID       int64
	CurrentStatus domain.Status
	BusinessDate  string
	IsOvernight   bool
	TotalAmount   float64
	UpdatedAt     time.Time
}
