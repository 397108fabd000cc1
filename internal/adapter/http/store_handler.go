package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ArmanWeb/bobatea/internal/adapter/logger"
	"github.com/ArmanWeb/bobatea/internal/interfaces"
)

// StoreHandler exposes the store directory clients use to pick a pickup
// location before ordering.
type StoreHandler struct {
	stores interfaces.StoreRepository
	logger logger.Logger
}

func NewStoreHandler(stores interfaces.StoreRepository, logger logger.Logger) *StoreHandler {
	return &StoreHandler{stores: stores, logger: logger}
}

func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stores", h.ListActive)
}

func (h *StoreHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	stores, err := h.stores.ListActive(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := make([]map[string]interface{}, len(stores))
	for i, store := range stores {
		resp[i] = map[string]interface{}{
			"id":          store.ID,
			"name":        store.Name,
			"timezone":    store.Timezone,
			"utc_offset":  store.UTCOffset,
			"cutoff_hour": store.CutoffHour,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
