// Package fulfill decides how demanded SKUs are satisfied: from identical
// stock, from substitutable stock via alteration, or by queueing
// production. It is the only component that orchestrates across the item
// and request lifecycles, the waitlist and the production queue.
package fulfill

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/sku"
	"github.com/atelierhq/denimstock/internal/store"
)

// Match tiers, in order of preference.
const (
	MatchExact     = "EXACT"
	MatchUniversal = "UNIVERSAL"
	MatchNone      = "NONE"
)

// ErrInvalidSku is returned before any search when the demanded token
// does not parse.
var ErrInvalidSku = errors.New("invalid demand sku")

// ErrInvalidQuantity mirrors the store sentinel for callers that only
// import this package.
var ErrInvalidQuantity = store.ErrInvalidQuantity

// Demand is one distinct SKU line on an order.
type Demand struct {
	SKU      string `json:"sku"`
	OrderID  string `json:"order_id"`
	Quantity int    `json:"quantity"`
	Priority string `json:"priority,omitempty"` // defaults to MEDIUM
}

// Assignment describes one item transitioned to a demand.
type Assignment struct {
	ItemID    string `json:"item_id"`
	MatchType string `json:"match_type"`
	SKU       string `json:"sku"` // the item's SKU after any alteration
}

// Result is the outcome of fulfilling one demand line.
type Result struct {
	Matched     bool                     `json:"matched"` // every demanded unit got an item
	Assignments []Assignment             `json:"assignments,omitempty"`
	Waitlisted  *model.WaitlistEntry     `json:"waitlisted,omitempty"`
	Production  *model.ProductionRequest `json:"production,omitempty"`
}

// Matcher drives fulfillment against the repository. Now is injectable
// for tests and defaults to time.Now.
type Matcher struct {
	DB  *sql.DB
	Now func() time.Time
	Log *slog.Logger
}

// New returns a Matcher with default clock and logger.
func New(db *sql.DB) *Matcher {
	return &Matcher{DB: db, Now: time.Now, Log: slog.Default()}
}

func (m *Matcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Matcher) log() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

// Fulfill satisfies a demand line unit by unit. Each unit is matched and
// transitioned in its own transaction, so a failure part-way leaves every
// already-assigned unit fully assigned and the rest cleanly unmet: there
// are no half-transitioned items. Unmet units end as a single waitlist
// entry plus a pending production request.
func (m *Matcher) Fulfill(ctx context.Context, demand Demand) (*Result, error) {
	demandSku, err := sku.Parse(demand.SKU)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSku, err)
	}
	if demand.Quantity <= 0 {
		return nil, fmt.Errorf("demand quantity: %w", ErrInvalidQuantity)
	}
	if demand.Priority == "" {
		demand.Priority = model.PriorityMedium
	}

	result := &Result{}
	for unit := 0; unit < demand.Quantity; unit++ {
		assignment, found, err := m.fulfillUnit(ctx, demandSku, demand)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		result.Assignments = append(result.Assignments, *assignment)

		m.recordEvent(ctx, model.EventItemAssigned, assignment.ItemID, "item",
			fmt.Sprintf("%s match for %s assigned to order %s", assignment.MatchType, demandSku, demand.OrderID),
			map[string]any{"order_id": demand.OrderID, "demand_sku": demandSku.String()})
	}

	unmet := demand.Quantity - len(result.Assignments)
	if unmet > 0 {
		if err := m.queueUnmet(ctx, demandSku, demand, unmet, result); err != nil {
			return nil, err
		}
	}

	result.Matched = unmet == 0
	return result, nil
}

// fulfillUnit matches and assigns a single item inside one transaction.
// The read-then-write is guarded by a compare-and-set on availability, so
// a concurrent Fulfill picking the same candidate loses cleanly and the
// loop moves to the next one.
func (m *Matcher) fulfillUnit(ctx context.Context, demandSku sku.SKU, demand Demand) (*Assignment, bool, error) {
	now := m.now()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	candidates, err := m.findCandidates(ctx, tx, demandSku)
	if err != nil {
		return nil, false, err
	}

	for _, c := range candidates {
		assignedSku := c.sku
		if c.matchType == MatchUniversal {
			// The garment is physically shortened to the demanded inseam
			// and finished to the demanded wash; style, waist and shape
			// are untouched.
			assignedSku = c.sku.WithLength(demandSku.Length).WithFinish(demandSku.Finish)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE items SET availability = ?, order_id = ?, sku = ?, updated_at = ?
			 WHERE id = ? AND availability = ?`,
			model.AvailabilityAssigned, demand.OrderID, assignedSku.String(), now,
			c.id, model.AvailabilityUncommitted,
		)
		if err != nil {
			return nil, false, fmt.Errorf("assigning item %s: %w", c.id, err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			continue // lost the race for this candidate
		}

		if model.WashOnAssign(&model.InventoryItem{Origin: c.origin}) {
			_, err = store.CreateRequestTx(ctx, tx, c.id, model.RequestWashing, demand.Priority,
				map[string]any{"order_id": demand.OrderID}, now)
			if err != nil {
				return nil, false, err
			}
		}

		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("committing assignment: %w", err)
		}
		return &Assignment{ItemID: c.id, MatchType: c.matchType, SKU: assignedSku.String()}, true, nil
	}

	return nil, false, nil
}

// candidate is an uncommitted stock item eligible for a demand.
type candidate struct {
	id        string
	sku       sku.SKU
	origin    string
	matchType string
}

// findCandidates returns eligible items, exact matches first, then
// substitutable ones with at least the demanded inseam, each tier
// ordered oldest-created first so long-held stock is not starved.
func (m *Matcher) findCandidates(ctx context.Context, tx *sql.Tx, demandSku sku.SKU) ([]candidate, error) {
	// The first three SKU fields are the substitution key; matching on
	// the prefix narrows the scan before the codec confirms.
	prefix := demandSku.Style + "-" + demandSku.Waist + "-" + demandSku.Shape + "-%"

	rows, err := tx.QueryContext(ctx,
		`SELECT id, sku, origin FROM items
		 WHERE origin = ? AND availability = ? AND sku LIKE ?
		 ORDER BY created_at, id`,
		model.OriginStock, model.AvailabilityUncommitted, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("searching candidates: %w", err)
	}
	defer rows.Close()

	var exact, universal []candidate
	for rows.Next() {
		var c candidate
		var rawSku string
		if err := rows.Scan(&c.id, &rawSku, &c.origin); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}

		itemSku, err := sku.Parse(rawSku)
		if err != nil {
			m.log().Warn("skipping item with malformed sku", "item", c.id, "sku", rawSku)
			continue
		}
		c.sku = itemSku

		switch {
		case sku.ExactMatch(itemSku, demandSku):
			c.matchType = MatchExact
			exact = append(exact, c)
		case sku.Substitutable(itemSku, demandSku) && itemSku.Length >= demandSku.Length:
			// Excess inseam can be cut down; shorter stock cannot be
			// lengthened. Both lengths are fixed-width digits, so the
			// string compare is numeric.
			c.matchType = MatchUniversal
			universal = append(universal, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching candidates: %w", err)
	}

	return append(exact, universal...), nil
}

// queueUnmet records the unmatched remainder: one pending production
// request and one waitlist entry, in a single transaction.
func (m *Matcher) queueUnmet(ctx context.Context, demandSku sku.SKU, demand Demand, unmet int, result *Result) error {
	now := m.now()

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	production, err := store.CreateProductionRequestTx(ctx, tx, demandSku.String(), demand.OrderID, unmet, demand.Priority, now)
	if err != nil {
		return err
	}
	entry, err := store.EnqueueWaitlistTx(ctx, tx, demandSku.String(), demand.OrderID, unmet, now)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing unmet demand: %w", err)
	}

	result.Production = production
	result.Waitlisted = entry

	m.recordEvent(ctx, model.EventDemandWaitlisted, entry.ID, "waitlist",
		fmt.Sprintf("no match for %s, %d unit(s) waitlisted at position %d", demandSku, unmet, entry.Position),
		map[string]any{"order_id": demand.OrderID, "quantity": unmet})
	return nil
}

// recordEvent writes to the event sink best-effort; a sink failure never
// affects the operation that triggered it.
func (m *Matcher) recordEvent(ctx context.Context, eventType, entityID, entityType, message string, metadata map[string]any) {
	if err := store.RecordEvent(ctx, m.DB, eventType, entityID, entityType, message, metadata, m.now()); err != nil {
		m.log().Warn("event sink write failed", "type", eventType, "entity", entityID, "error", err)
	}
}
