package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/store"
)

// BinsHandler handles storage bin endpoints.
type BinsHandler struct {
	DB *sql.DB
}

type createBinRequest struct {
	Zone     string `json:"zone"`
	Rack     string `json:"rack"`
	Shelf    string `json:"shelf"`
	Capacity int    `json:"capacity"`
}

type assignItemRequest struct {
	ItemID string `json:"item_id"`
}

// binView decorates a bin with its derived load severity.
type binView struct {
	model.Bin
	Load string `json:"load"`
}

// List handles GET /api/bins, least-loaded bins first.
func (h *BinsHandler) List(w http.ResponseWriter, r *http.Request) {
	bins, err := store.ListBins(r.Context(), h.DB)
	if err != nil {
		storeError(w, err)
		return
	}

	views := make([]binView, 0, len(bins))
	for _, bin := range bins {
		views = append(views, binView{Bin: bin, Load: bin.LoadSeverity()})
	}
	jsonResponse(w, http.StatusOK, views)
}

// CheckAvailability handles GET /api/bins/availability. It answers
// whether new stock can be stored at all; capacity exhaustion comes back
// as a conflict so intake tooling can stop before creating items.
func (h *BinsHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if err := store.ValidateAvailability(r.Context(), h.DB); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"available": true})
}

// Create handles POST /api/bins.
func (h *BinsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBinRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Zone == "" || req.Rack == "" || req.Shelf == "" {
		jsonError(w, http.StatusBadRequest, "zone, rack and shelf are required")
		return
	}

	bin, err := store.CreateBin(r.Context(), h.DB, req.Zone, req.Rack, req.Shelf, req.Capacity, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, bin)
}

// Get handles GET /api/bins/{id}.
func (h *BinsHandler) Get(w http.ResponseWriter, r *http.Request) {
	bin, err := store.GetBin(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, bin)
}

// AssignItem handles POST /api/bins/{id}/items. Placing an item into a
// bin removes it from whichever bin held it before.
func (h *BinsHandler) AssignItem(w http.ResponseWriter, r *http.Request) {
	var req assignItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	binID := r.PathValue("id")
	if err := store.AssignToBin(r.Context(), h.DB, req.ItemID, binID, time.Now()); err != nil {
		storeError(w, err)
		return
	}

	bin, err := store.GetBin(r.Context(), h.DB, binID)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, bin)
}

// ReleaseItem handles DELETE /api/bins/{id}/items/{itemId}.
func (h *BinsHandler) ReleaseItem(w http.ResponseWriter, r *http.Request) {
	binID := r.PathValue("id")
	itemID := r.PathValue("itemId")

	if err := store.ReleaseFromBin(r.Context(), h.DB, itemID, binID, time.Now()); err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "released"})
}
