package model

import (
	"fmt"
	"time"
)

// Request is a unit of work against a single inventory item, e.g. a wash
// before shipment or a quality check.
type Request struct {
	ID        string         `json:"id"`
	ItemID    string         `json:"item_id"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	Priority  string         `json:"priority"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Request types.
const (
	RequestWashing    = "WASHING"
	RequestStockPull  = "STOCK_PULL"
	RequestPattern    = "PATTERN_REQUEST"
	RequestMove       = "MOVE_REQUEST"
	RequestQC         = "QC"
	RequestProduction = "PRODUCTION"
)

// Request statuses.
const (
	RequestPending    = "PENDING"
	RequestInProgress = "IN_PROGRESS"
	RequestCompleted  = "COMPLETED"
	RequestFailed     = "FAILED"
)

// Request priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// InvalidTransitionError is returned when a state machine is asked for an
// illegal move. The entity is left unchanged.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

// legalRequestTransitions is the request lifecycle graph. COMPLETED is
// terminal; FAILED can be retried back to PENDING.
var legalRequestTransitions = map[string][]string{
	RequestPending:    {RequestInProgress, RequestFailed},
	RequestInProgress: {RequestCompleted, RequestFailed},
	RequestFailed:     {RequestPending},
}

// CanTransitionRequest reports whether from -> to is a legal request
// status transition.
func CanTransitionRequest(from, to string) bool {
	for _, allowed := range legalRequestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the request to a new status, or fails without touching
// it. The function is total: every (status, target) pair either succeeds
// or returns an InvalidTransitionError.
func (r *Request) Transition(to string, now time.Time) error {
	if !CanTransitionRequest(r.Status, to) {
		return &InvalidTransitionError{Entity: "request", From: r.Status, To: to}
	}
	r.Status = to
	r.UpdatedAt = now
	return nil
}
