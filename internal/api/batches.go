package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/atelierhq/denimstock/internal/labels"
	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/sku"
	"github.com/atelierhq/denimstock/internal/store"
)

// BatchesHandler handles production batch and label sheet endpoints.
type BatchesHandler struct {
	DB *sql.DB
}

type createBatchRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Get handles GET /api/batches/{id}.
func (h *BatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	batch, err := store.GetBatch(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, batch)
}

// Create handles POST /api/batches.
func (h *BatchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed, err := sku.Parse(req.SKU)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !sku.ProductionEligible(parsed) {
		jsonError(w, http.StatusBadRequest, "sku finish is not production eligible")
		return
	}

	batch, err := store.CreateBatch(r.Context(), h.DB, parsed.String(), req.Quantity, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, batch)
}

// GenerateItems handles POST /api/batches/{id}/items: issues the full
// quantity of inventory items for the batch in one go.
func (h *BatchesHandler) GenerateItems(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	items, err := store.GenerateBatchItems(r.Context(), h.DB, batchID, time.Now())
	if err != nil {
		storeError(w, err)
		return
	}

	if err := store.RecordEvent(r.Context(), h.DB, model.EventBatchIssued, batchID, "batch",
		fmt.Sprintf("%d item(s) issued", len(items)),
		map[string]any{"quantity": len(items)}, time.Now()); err != nil {
		slog.Warn("event sink write failed", "type", model.EventBatchIssued, "entity", batchID, "error", err)
	}

	jsonResponse(w, http.StatusCreated, items)
}

// Complete handles POST /api/batches/{id}/complete.
func (h *BatchesHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := store.CompleteBatch(r.Context(), h.DB, id); err != nil {
		storeError(w, err)
		return
	}

	batch, err := store.GetBatch(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, batch)
}

// Labels handles GET /api/batches/{id}/labels?page=N. Pages are
// 1-based, defaulting to the first.
func (h *BatchesHandler) Labels(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListBatchItems(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err)
		return
	}
	if len(items) == 0 {
		jsonError(w, http.StatusNotFound, "batch has no generated items")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			jsonError(w, http.StatusBadRequest, "invalid page number")
			return
		}
	}

	pages, err := labels.RenderSheet(items)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to render label sheet")
		return
	}
	if page > len(pages) {
		jsonError(w, http.StatusNotFound, "page out of range")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Total-Pages", strconv.Itoa(len(pages)))
	if err := pages[page-1].EncodePNG(w); err != nil {
		// Headers are already out, nothing useful left to send.
		return
	}
}

// ListProduction handles GET /api/production-requests.
func (h *BatchesHandler) ListProduction(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	requests, err := store.ListProductionRequests(r.Context(), h.DB, status)
	if err != nil {
		storeError(w, err)
		return
	}
	if requests == nil {
		requests = []model.ProductionRequest{}
	}
	jsonResponse(w, http.StatusOK, requests)
}
