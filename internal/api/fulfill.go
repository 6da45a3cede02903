package api

import (
	"errors"
	"net/http"

	"github.com/atelierhq/denimstock/internal/fulfill"
)

// FulfillHandler handles order fulfillment requests.
type FulfillHandler struct {
	Matcher *fulfill.Matcher
}

type fulfillRequest struct {
	SKU      string `json:"sku"`
	OrderID  string `json:"order_id"`
	Quantity int    `json:"quantity"`
	Priority string `json:"priority,omitempty"`
}

// Fulfill handles POST /api/fulfill. One call resolves the whole
// demand: matched units come back as assignments, the unmet remainder
// is waitlisted with a production request.
func (h *FulfillHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req fulfillRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.OrderID == "" {
		jsonError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	result, err := h.Matcher.Fulfill(r.Context(), fulfill.Demand{
		SKU:      req.SKU,
		OrderID:  req.OrderID,
		Quantity: req.Quantity,
		Priority: req.Priority,
	})
	if err != nil {
		if errors.Is(err, fulfill.ErrInvalidSku) || errors.Is(err, fulfill.ErrInvalidQuantity) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}
