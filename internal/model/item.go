package model

import (
	"fmt"
	"time"
)

// InventoryItem represents one physical garment tracked through the
// warehouse. The SKU can change over the item's life when an alteration
// shortens the inseam or changes the finish.
type InventoryItem struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Origin       string    `json:"origin"`       // STOCK or PRODUCTION, set at creation
	Availability string    `json:"availability"` // UNCOMMITTED, COMMITTED or ASSIGNED
	BinID        *string   `json:"bin_id,omitempty"`
	OrderID      *string   `json:"order_id,omitempty"`
	BatchID      *string   `json:"batch_id,omitempty"`
	QRPayload    string    `json:"qr_payload,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item origins (immutable after creation).
const (
	OriginStock      = "STOCK"
	OriginProduction = "PRODUCTION"
)

// Item availability states.
const (
	AvailabilityUncommitted = "UNCOMMITTED"
	AvailabilityCommitted   = "COMMITTED"
	AvailabilityAssigned    = "ASSIGNED"
)

// legalAvailability lists the allowed availability transitions.
var legalAvailability = map[string][]string{
	AvailabilityUncommitted: {AvailabilityCommitted, AvailabilityAssigned},
	AvailabilityCommitted:   {AvailabilityAssigned},
	AvailabilityAssigned:    {AvailabilityUncommitted}, // assignment reversal
}

// CanTransitionAvailability reports whether from -> to is a legal
// availability transition.
func CanTransitionAvailability(from, to string) bool {
	for _, allowed := range legalAvailability[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionAvailability moves the item to a new availability state.
// Assigning requires an order id; reversal clears it. The item is left
// untouched on error.
func (i *InventoryItem) TransitionAvailability(to string, orderID *string, now time.Time) error {
	if !CanTransitionAvailability(i.Availability, to) {
		return &InvalidTransitionError{Entity: "item", From: i.Availability, To: to}
	}
	if to == AvailabilityAssigned && (orderID == nil || *orderID == "") {
		return fmt.Errorf("assigning item %s: order id required", i.ID)
	}

	i.Availability = to
	i.UpdatedAt = now
	switch to {
	case AvailabilityAssigned:
		i.OrderID = orderID
	case AvailabilityUncommitted:
		i.OrderID = nil
	}
	return nil
}

// WashOnAssign is the business policy that decides whether assigning an
// item must enqueue a washing request. Stock garments are washed before
// shipment; production garments are washed during finishing.
func WashOnAssign(item *InventoryItem) bool {
	return item.Origin == OriginStock
}
