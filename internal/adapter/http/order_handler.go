package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/domain"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type OrderHandler struct {
	orders      interfaces.OrderService
	fulfillment interfaces.FulfillmentService
	tracking    interfaces.TrackingService
	logger      logger.Logger
}

func NewOrderHandler(orders interfaces.OrderService, fulfillment interfaces.FulfillmentService, tracking interfaces.TrackingService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		orders:      orders,
		fulfillment: fulfillment,
		tracking:    tracking,
		logger:      logger,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	// Pickup codes restart every business date at every store, so every
	// code lookup is scoped by store.
	r.Get("/stores/{storeID}/orders/{pickupCode}", h.GetOrderStatus)
	r.Get("/stores/{storeID}/orders/{pickupCode}/history", h.GetOrderHistory)
	r.Post("/stores/{storeID}/orders/{pickupCode}/status", h.ChangeStatus)
}

func storeIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
}

type CreateOrderRequest struct {
	StoreID    int64              `json:"store_id"`
	Channel    string             `json:"channel"`
	CustomerID *string            `json:"customer_id,omitempty"`
	Items      []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CreateOrderResponse struct {
	OrderNumber  string  `json:"order_number"`
	PickupCode   string  `json:"pickup_code"`
	Status       string  `json:"status"`
	BusinessDate string  `json:"business_date"`
	IsOvernight  bool    `json:"is_overnight"`
	TotalAmount  float64 `json:"total_amount"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	channel := domain.CodeType(strings.TrimSpace(req.Channel))
	if channel != domain.CodeTypeOnline && channel != domain.CodeTypeOffline {
		respondError(w, http.StatusBadRequest, "channel must be one of: online, offline")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "order must contain at least 1 item")
		return
	}

	items := make([]interfaces.CreateOrderItemCommand, len(req.Items))
	for i, item := range req.Items {
		items[i] = interfaces.CreateOrderItemCommand{
			ProductID: item.ProductID,
			Name:      strings.TrimSpace(item.Name),
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order, err := h.orders.CreateOrder(r.Context(), interfaces.CreateOrderCommand{
		StoreID:    req.StoreID,
		Channel:    channel,
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		h.logger.Error("order_creation_failed", "Failed to create order", "", nil, err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreateOrderResponse{
		OrderNumber:  order.Number,
		PickupCode:   order.PickupCode,
		Status:       string(order.Status),
		BusinessDate: order.BusinessDate,
		IsOvernight:  order.IsOvernight,
		TotalAmount:  order.TotalAmount,
	})
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	storeID, err := storeIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid store id")
		return
	}
	pickupCode := chi.URLParam(r, "pickupCode")

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	target := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !target.IsValid() {
		respondError(w, http.StatusBadRequest, "unknown status: "+req.Status)
		return
	}
	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = "pos"
	}

	order, err := h.fulfillment.ChangeStatusByPickupCode(r.Context(), storeID, pickupCode, target, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pickup_code": order.PickupCode,
		"status":      order.Status,
		"updated_at":  order.UpdatedAt,
	})
}

func (h *OrderHandler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	storeID, err := storeIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid store id")
		return
	}
	pickupCode := chi.URLParam(r, "pickupCode")

	result, err := h.tracking.GetOrderStatus(r.Context(), storeID, pickupCode)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_number":   result.OrderNumber,
		"pickup_code":    result.PickupCode,
		"store_id":       result.StoreID,
		"current_status": result.CurrentStatus,
		"business_date":  result.BusinessDate,
		"is_overnight":   result.IsOvernight,
		"total_amount":   result.TotalAmount,
		"updated_at":     result.UpdatedAt,
	})
}

func (h *OrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	storeID, err := storeIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid store id")
		return
	}
	pickupCode := chi.URLParam(r, "pickupCode")

	history, err := h.tracking.GetOrderHistory(r.Context(), storeID, pickupCode)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := make([]map[string]interface{}, len(history))
	for i, entry := range history {
		resp[i] = map[string]interface{}{
			"seq":        entry.Seq,
			"status":     entry.Status,
			"actor":      entry.Actor,
			"changed_at": entry.ChangedAt.Format(time.RFC3339),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
