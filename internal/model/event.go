package model

import "time"

// Event is an append-only observability record. Writing events is
// best-effort: a failed write never rolls back the operation it
// describes.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	EntityID   string         `json:"entity_id"`
	EntityType string         `json:"entity_type"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Event types recorded by the fulfillment and production paths.
const (
	EventItemAssigned     = "item_assigned"
	EventItemReleased     = "item_released"
	EventDemandWaitlisted = "demand_waitlisted"
	EventBatchIssued      = "batch_issued"
)
