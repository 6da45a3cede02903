package model

import "time"

// WaitlistEntry is one unit of unmet demand, queued FIFO per SKU.
// Position is an insertion-order label scoped to the SKU: resolving an
// entry never renumbers the rest.
type WaitlistEntry struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	OrderID   string    `json:"order_id"`
	Quantity  int       `json:"quantity"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
