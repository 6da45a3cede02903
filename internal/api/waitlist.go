package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/store"
)

// WaitlistHandler handles unmet demand waitlist endpoints.
type WaitlistHandler struct {
	DB *sql.DB
}

// List handles GET /api/waitlist?sku=... and returns live entries in
// queue order.
func (h *WaitlistHandler) List(w http.ResponseWriter, r *http.Request) {
	skuCode := r.URL.Query().Get("sku")
	if skuCode == "" {
		jsonError(w, http.StatusBadRequest, "sku query parameter is required")
		return
	}

	entries, err := store.ListWaitlistFor(r.Context(), h.DB, skuCode)
	if err != nil {
		storeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.WaitlistEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Dequeue handles DELETE /api/waitlist/{id}. The entry is resolved in
// place, later entries keep their positions.
func (h *WaitlistHandler) Dequeue(w http.ResponseWriter, r *http.Request) {
	if err := store.DequeueWaitlist(r.Context(), h.DB, r.PathValue("id"), time.Now()); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "resolved"})
}
