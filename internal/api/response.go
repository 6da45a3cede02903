package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/atelierhq/denimstock/internal/fulfill"
	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("error encoding response: %v", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps domain errors onto HTTP responses. Validation and
// transition errors are the caller's fault; capacity errors are operator
// conditions and reported as conflicts.
func storeError(w http.ResponseWriter, err error) {
	var ite *model.InvalidTransitionError
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidQuantity), errors.Is(err, fulfill.ErrInvalidSku):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ite):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrBinFull),
		errors.Is(err, store.ErrNoBinsExist),
		errors.Is(err, store.ErrBinsAtCapacity),
		errors.Is(err, store.ErrNotInBin):
		jsonError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
