package model

import "time"

// ProductionBatch groups inventory items created together by one
// production run. Quantity is fixed at creation; the batch owns the
// initial existence of its items but not their later lifecycle.
type ProductionBatch struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// ItemIDs is populated once the batch's items have been issued.
	ItemIDs []string `json:"item_ids,omitempty"`
}

// Batch statuses.
const (
	BatchCreated    = "CREATED"
	BatchInProgress = "IN_PROGRESS"
	BatchCompleted  = "COMPLETED"
)

// ProductionRequest records demand that could not be met from stock and
// is waiting for a production run.
type ProductionRequest struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	OrderID   string    `json:"order_id"`
	Quantity  int       `json:"quantity"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
