package api

import (
	"database/sql"
	"net/http"

	"github.com/atelierhq/denimstock/internal/fulfill"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: db}
	binsHandler := &BinsHandler{DB: db}
	requestsHandler := &RequestsHandler{DB: db}
	waitlistHandler := &WaitlistHandler{DB: db}
	batchesHandler := &BatchesHandler{DB: db}
	fulfillHandler := &FulfillHandler{Matcher: fulfill.New(db)}

	// Fulfillment.
	mux.HandleFunc("POST /api/fulfill", fulfillHandler.Fulfill)

	// Items.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("POST /api/items/{id}/commit", itemsHandler.Commit)
	mux.HandleFunc("POST /api/items/{id}/release", itemsHandler.Release)
	mux.HandleFunc("GET /api/items/{id}/events", itemsHandler.Events)

	// Bins.
	mux.HandleFunc("GET /api/bins", binsHandler.List)
	mux.HandleFunc("GET /api/bins/availability", binsHandler.CheckAvailability)
	mux.HandleFunc("POST /api/bins", binsHandler.Create)
	mux.HandleFunc("GET /api/bins/{id}", binsHandler.Get)
	mux.HandleFunc("POST /api/bins/{id}/items", binsHandler.AssignItem)
	mux.HandleFunc("DELETE /api/bins/{id}/items/{itemId}", binsHandler.ReleaseItem)

	// Requests.
	mux.HandleFunc("GET /api/requests", requestsHandler.List)
	mux.HandleFunc("POST /api/requests", requestsHandler.Create)
	mux.HandleFunc("GET /api/requests/{id}", requestsHandler.Get)
	mux.HandleFunc("PUT /api/requests/{id}/status", requestsHandler.Transition)

	// Waitlist.
	mux.HandleFunc("GET /api/waitlist", waitlistHandler.List)
	mux.HandleFunc("DELETE /api/waitlist/{id}", waitlistHandler.Dequeue)

	// Production batches and labels.
	mux.HandleFunc("GET /api/batches/{id}", batchesHandler.Get)
	mux.HandleFunc("POST /api/batches", batchesHandler.Create)
	mux.HandleFunc("POST /api/batches/{id}/items", batchesHandler.GenerateItems)
	mux.HandleFunc("POST /api/batches/{id}/complete", batchesHandler.Complete)
	mux.HandleFunc("GET /api/batches/{id}/labels", batchesHandler.Labels)
	mux.HandleFunc("GET /api/production-requests", batchesHandler.ListProduction)

	return mux
}
