package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/denimstock/internal/model"
)

// EnqueueWaitlist appends unmet demand to the SKU's backorder queue.
// The next position is one past the highest live position for the SKU, so
// resolved entries never cause position reuse among live ones.
func EnqueueWaitlist(ctx context.Context, db *sql.DB, skuCode, orderID string, quantity int, now time.Time) (*model.WaitlistEntry, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("waitlist quantity: %w", ErrInvalidQuantity)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := EnqueueWaitlistTx(ctx, tx, skuCode, orderID, quantity, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing waitlist entry: %w", err)
	}
	return entry, nil
}

// EnqueueWaitlistTx runs the enqueue inside an existing transaction, for
// callers (the fulfillment matcher) that bundle it with other writes.
func EnqueueWaitlistTx(ctx context.Context, tx *sql.Tx, skuCode, orderID string, quantity int, now time.Time) (*model.WaitlistEntry, error) {
	var position int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist
		 WHERE sku = ? AND resolved_at IS NULL`, skuCode,
	).Scan(&position)
	if err != nil {
		return nil, fmt.Errorf("computing waitlist position: %w", err)
	}

	entry := &model.WaitlistEntry{
		ID:        uuid.NewString(),
		SKU:       skuCode,
		OrderID:   orderID,
		Quantity:  quantity,
		Position:  position,
		CreatedAt: now,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO waitlist (id, sku, order_id, quantity, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SKU, entry.OrderID, entry.Quantity, entry.Position, entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting waitlist entry: %w", err)
	}
	return entry, nil
}

// ListWaitlistFor returns the live backorder queue for a SKU, FIFO by
// position.
func ListWaitlistFor(ctx context.Context, db *sql.DB, skuCode string) ([]model.WaitlistEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, sku, order_id, quantity, position, created_at
		 FROM waitlist
		 WHERE sku = ? AND resolved_at IS NULL
		 ORDER BY position`, skuCode,
	)
	if err != nil {
		return nil, fmt.Errorf("listing waitlist: %w", err)
	}
	defer rows.Close()

	var entries []model.WaitlistEntry
	for rows.Next() {
		var e model.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.SKU, &e.OrderID, &e.Quantity, &e.Position, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning waitlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DequeueWaitlist resolves an entry, e.g. once production has satisfied
// it. Remaining entries keep their positions; position is an
// insertion-order label, not a dense rank.
func DequeueWaitlist(ctx context.Context, db *sql.DB, entryID string, now time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE waitlist SET resolved_at = ? WHERE id = ? AND resolved_at IS NULL`,
		now, entryID,
	)
	if err != nil {
		return fmt.Errorf("resolving waitlist entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving waitlist entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("waitlist entry %s: %w", entryID, ErrNotFound)
	}
	return nil
}
