package fulfill

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/denimstock/internal/db"
	"github.com/atelierhq/denimstock/internal/model"
	"github.com/atelierhq/denimstock/internal/store"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func testMatcher(t *testing.T) (*Matcher, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	m := New(database)
	m.Now = func() time.Time { return t0.Add(24 * time.Hour) }
	return m, database
}

func TestFulfillExactMatch(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	item, _ := store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if !result.Matched {
		t.Fatal("expected a match")
	}
	if len(result.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(result.Assignments))
	}
	if result.Assignments[0].MatchType != MatchExact {
		t.Errorf("expected EXACT, got %q", result.Assignments[0].MatchType)
	}
	if result.Assignments[0].ItemID != item.ID {
		t.Errorf("wrong item assigned: %s", result.Assignments[0].ItemID)
	}

	// The item is assigned to the order.
	got, _ := store.GetItem(ctx, database, item.ID)
	if got.Availability != model.AvailabilityAssigned {
		t.Errorf("expected ASSIGNED, got %q", got.Availability)
	}
	if got.OrderID == nil || *got.OrderID != "order-1" {
		t.Errorf("order id not set: %+v", got)
	}

	// Assigning stock enqueues a wash.
	requests, _ := store.ListRequests(ctx, database, item.ID, "")
	if len(requests) != 1 || requests[0].Type != model.RequestWashing {
		t.Fatalf("expected one WASHING request, got %+v", requests)
	}
	if requests[0].Status != model.RequestPending {
		t.Errorf("expected PENDING wash request, got %q", requests[0].Status)
	}
}

func TestFulfillUniversalMatchAltersLength(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	// No exact length in stock, but a longer inseam that can be cut down.
	item, _ := store.CreateStockItem(ctx, database, "ST-32-X-34-RAW", nil, t0)

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if !result.Matched || result.Assignments[0].MatchType != MatchUniversal {
		t.Fatalf("expected UNIVERSAL match, got %+v", result)
	}

	got, _ := store.GetItem(ctx, database, item.ID)
	if got.SKU != "ST-32-X-30-RAW" {
		t.Errorf("expected altered sku ST-32-X-30-RAW, got %q", got.SKU)
	}
}

func TestFulfillUniversalRequiresExcessLength(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	// A shorter inseam cannot be lengthened, so this stock is no
	// substitute for the demand.
	store.CreateStockItem(ctx, database, "ST-32-X-28-RAW", nil, t0)

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if result.Matched || len(result.Assignments) != 0 {
		t.Fatalf("expected no match for shorter stock, got %+v", result.Assignments)
	}
	if result.Waitlisted == nil {
		t.Error("expected the demand to be waitlisted")
	}
}

func TestFulfillPrefersExactOverUniversal(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	store.CreateStockItem(ctx, database, "ST-32-X-34-RAW", nil, t0)
	exact, _ := store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0.Add(time.Hour))

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	// The exact item wins even though the substitutable one is older.
	if result.Assignments[0].ItemID != exact.ID || result.Assignments[0].MatchType != MatchExact {
		t.Errorf("expected exact item %s, got %+v", exact.ID, result.Assignments[0])
	}
}

func TestFulfillOldestFirstWithinTier(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	oldest, _ := store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0.Add(time.Hour))

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if result.Assignments[0].ItemID != oldest.ID {
		t.Errorf("expected oldest item %s first, got %s", oldest.ID, result.Assignments[0].ItemID)
	}
}

func TestFulfillNoMatchWaitlists(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if result.Matched {
		t.Fatal("expected no match")
	}
	if result.Waitlisted == nil || result.Waitlisted.Position != 1 {
		t.Fatalf("expected waitlist entry at position 1, got %+v", result.Waitlisted)
	}
	if result.Production == nil || result.Production.SKU != "ST-32-X-30-RAW" {
		t.Fatalf("expected pending production request, got %+v", result.Production)
	}

	entries, _ := store.ListWaitlistFor(ctx, database, "ST-32-X-30-RAW")
	if len(entries) != 1 {
		t.Errorf("expected 1 waitlist entry, got %d", len(entries))
	}
	pending, _ := store.ListProductionRequests(ctx, database, model.RequestPending)
	if len(pending) != 1 {
		t.Errorf("expected 1 production request, got %d", len(pending))
	}
}

func TestFulfillPartialQuantity(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0.Add(time.Minute))

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 5})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if result.Matched {
		t.Fatal("expected partial fulfillment to report unmatched")
	}
	if len(result.Assignments) != 2 {
		t.Errorf("expected 2 assignments, got %d", len(result.Assignments))
	}
	// The unmet remainder is queued once, not per unit.
	if result.Waitlisted == nil || result.Waitlisted.Quantity != 3 {
		t.Errorf("expected waitlist entry for 3 units, got %+v", result.Waitlisted)
	}
	if result.Production == nil || result.Production.Quantity != 3 {
		t.Errorf("expected production request for 3 units, got %+v", result.Production)
	}
}

func TestFulfillIgnoresCommittedAndProductionItems(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	// A committed stock item and a production-origin item are not
	// candidates.
	committed, _ := store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	store.CommitItem(ctx, database, committed.ID, t0)

	batch, _ := store.CreateBatch(ctx, database, "ST-32-X-30-RAW", 1, t0)
	store.GenerateBatchItems(ctx, database, batch.ID, t0)

	result, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1})
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if result.Matched {
		t.Errorf("expected no match, got %+v", result.Assignments)
	}
}

func TestFulfillInputValidation(t *testing.T) {
	m, _ := testMatcher(t)
	ctx := context.Background()

	if _, err := m.Fulfill(ctx, Demand{SKU: "not-a-sku", OrderID: "order-1", Quantity: 1}); !errors.Is(err, ErrInvalidSku) {
		t.Errorf("expected ErrInvalidSku, got %v", err)
	}
	if _, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestFulfillRecordsEvents(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	item, _ := store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	if _, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1}); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}

	events, err := store.ListEvents(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Type != model.EventItemAssigned {
		t.Errorf("expected one item_assigned event, got %+v", events)
	}
}

func TestReversalKeepsWashRequest(t *testing.T) {
	m, database := testMatcher(t)
	ctx := context.Background()

	item, _ := store.CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	if _, err := m.Fulfill(ctx, Demand{SKU: "ST-32-X-30-RAW", OrderID: "order-1", Quantity: 1}); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}

	if err := store.ReverseAssignment(ctx, database, item.ID, t0.Add(time.Hour)); err != nil {
		t.Fatalf("ReverseAssignment: %v", err)
	}

	// Reversal is explicit and does not retroactively cancel the wash.
	requests, _ := store.ListRequests(ctx, database, item.ID, "")
	if len(requests) != 1 {
		t.Errorf("expected wash request to survive reversal, got %d", len(requests))
	}
}
