package model

import "time"

// Bin is one physical storage slot. Membership lives on the items side
// (InventoryItem.BinID), so an item can never sit in two bins at once;
// CurrentItems is derived from that column when the bin is loaded.
type Bin struct {
	ID           string    `json:"id"`
	Zone         string    `json:"zone"`
	Rack         string    `json:"rack"`
	Shelf        string    `json:"shelf"`
	Capacity     int       `json:"capacity"`
	CurrentItems int       `json:"current_items"`
	CreatedAt    time.Time `json:"created_at"`
}

// Bin load severities, for backpressure decisions when routing new stock.
const (
	BinLoadEmpty        = "empty"
	BinLoadNormal       = "normal"
	BinLoadNearCapacity = "near_capacity"
	BinLoadCritical     = "critical"
)

// Severity thresholds as usage ratios.
const (
	nearCapacityRatio = 0.70
	criticalRatio     = 0.90
)

// UsageRatio returns the bin's fill level in [0, 1].
func (b *Bin) UsageRatio() float64 {
	if b.Capacity <= 0 {
		return 0
	}
	return float64(b.CurrentItems) / float64(b.Capacity)
}

// LoadSeverity classifies the bin's fill level.
func (b *Bin) LoadSeverity() string {
	switch ratio := b.UsageRatio(); {
	case b.CurrentItems == 0:
		return BinLoadEmpty
	case ratio >= criticalRatio:
		return BinLoadCritical
	case ratio >= nearCapacityRatio:
		return BinLoadNearCapacity
	default:
		return BinLoadNormal
	}
}

// Full reports whether the bin has no free slots.
func (b *Bin) Full() bool {
	return b.CurrentItems >= b.Capacity
}
