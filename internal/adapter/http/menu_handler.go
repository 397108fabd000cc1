package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

type MenuHandler struct {
	service interfaces.MenuSyncService
	logger  logger.Logger
}

func NewMenuHandler(service interfaces.MenuSyncService, logger logger.Logger) *MenuHandler {
	return &MenuHandler{service: service, logger: logger}
}

func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu/shadow/pending", h.ListPending)
	r.Post("/menu/shadow/{productID}/approve", h.Approve)
	r.Post("/menu/shadow/{productID}/reject", h.Reject)
}

func (h *MenuHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListPending(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := make([]map[string]interface{}, len(entries))
	for i, entry := range entries {
		resp[i] = map[string]interface{}{
			"iiko_product_id":  entry.IikoProductID,
			"name":             entry.Name,
			"price":            entry.Price,
			"previous_price":   entry.PreviousPrice,
			"variance_percent": entry.VariancePercent,
			"price_alert":      entry.PriceAlert,
			"sync_status":      entry.SyncStatus,
			"updated_at":       entry.UpdatedAt,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type ApprovalRequest struct {
	Approver string `json:"approver"`
}

func (h *MenuHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.approval(w, r, h.service.Approve)
}

func (h *MenuHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.approval(w, r, h.service.Reject)
}

func (h *MenuHandler) approval(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, productID, approver string) error) {
	productID := chi.URLParam(r, "productID")

	var req ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	approver := strings.TrimSpace(req.Approver)
	if approver == "" {
		respondError(w, http.StatusBadRequest, "approver is required")
		return
	}

	if err := apply(r.Context(), productID, approver); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"iiko_product_id": productID, "approver": approver})
}
