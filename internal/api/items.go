package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/sku"
	"github.com/atelierhq/denimstock/internal/store"
)

// ItemsHandler handles inventory item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type createItemRequest struct {
	SKU   string  `json:"sku"`
	BinID *string `json:"bin_id,omitempty"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	skuFilter := r.URL.Query().Get("sku")
	availability := r.URL.Query().Get("availability")

	items, err := store.ListItems(r.Context(), h.DB, skuFilter, availability)
	if err != nil {
		storeError(w, err)
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. New items enter as uncommitted stock.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed, err := sku.Parse(req.SKU)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := store.CreateStockItem(r.Context(), h.DB, parsed.String(), req.BinID, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Commit handles POST /api/items/{id}/commit.
func (h *ItemsHandler) Commit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.CommitItem(r.Context(), h.DB, id, time.Now()); err != nil {
		storeError(w, err)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Release handles POST /api/items/{id}/release: explicit assignment
// reversal. Requests already opened for the item stay open.
func (h *ItemsHandler) Release(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.ReverseAssignment(r.Context(), h.DB, id, time.Now()); err != nil {
		storeError(w, err)
		return
	}

	if err := store.RecordEvent(r.Context(), h.DB, model.EventItemReleased, id, "item",
		"assignment reversed", nil, time.Now()); err != nil {
		slog.Warn("event sink write failed", "type", model.EventItemReleased, "entity", id, "error", err)
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Events handles GET /api/items/{id}/events.
func (h *ItemsHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := store.ListEvents(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	jsonResponse(w, http.StatusOK, events)
}
