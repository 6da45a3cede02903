package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/store"
)

// RequestsHandler handles production request endpoints.
type RequestsHandler struct {
	DB *sql.DB
}

type createRequestRequest struct {
	ItemID   string         `json:"item_id"`
	Type     string         `json:"type"`
	Priority string         `json:"priority,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type transitionRequestRequest struct {
	Status string `json:"status"`
}

var validRequestTypes = map[string]bool{
	model.RequestWashing:    true,
	model.RequestStockPull:  true,
	model.RequestPattern:    true,
	model.RequestMove:       true,
	model.RequestQC:         true,
	model.RequestProduction: true,
}

// List handles GET /api/requests with optional item_id and status filters.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("item_id")
	status := r.URL.Query().Get("status")

	requests, err := store.ListRequests(r.Context(), h.DB, itemID, status)
	if err != nil {
		storeError(w, err)
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !validRequestTypes[req.Type] {
		jsonError(w, http.StatusBadRequest, "unknown request type")
		return
	}

	created, err := store.CreateRequest(r.Context(), h.DB, req.ItemID, req.Type, req.Priority, req.Metadata, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/requests/{id}.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, err := store.GetRequest(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Transition handles PUT /api/requests/{id}/status.
func (h *RequestsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := store.TransitionRequest(r.Context(), h.DB, r.PathValue("id"), req.Status, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}
