package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atelierhq/denimstock/internal/ident"
	"github.com/atelierhq/denimstock/internal/model"
)

// CreateStockItem inserts a new stock garment with a freshly issued id.
// The id check and insert share one transaction so concurrent creators
// cannot race on the same code.
func CreateStockItem(ctx context.Context, db *sql.DB, skuCode string, binID *string, now time.Time) (*model.InventoryItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := issueItemID(ctx, tx)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, sku, origin, availability, bin_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, skuCode, model.OriginStock, model.AvailabilityUncommitted, binID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}
	return GetItem(ctx, db, id)
}

// issueItemID draws a unique item code inside the given transaction.
func issueItemID(ctx context.Context, tx *sql.Tx) (string, error) {
	var checkErr error
	id, err := ident.NewItemID(func(candidate string) bool {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM items WHERE id = ?`, candidate,
		).Scan(&n)
		if err != nil {
			checkErr = err
			return true // treat a failed check as taken
		}
		return n > 0
	})
	if checkErr != nil {
		return "", fmt.Errorf("checking item id: %w", checkErr)
	}
	if err != nil {
		return "", fmt.Errorf("issuing item id: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID, or ErrNotFound.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	var binID, orderID, batchID, qrPayload sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, sku, origin, availability, bin_id, order_id, batch_id, qr_payload,
		        created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.SKU, &item.Origin, &item.Availability,
		&binID, &orderID, &batchID, &qrPayload, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	setNullable(&item.BinID, binID)
	setNullable(&item.OrderID, orderID)
	setNullable(&item.BatchID, batchID)
	item.QRPayload = qrPayload.String
	return item, nil
}

// ListItems returns items, optionally filtered by SKU and availability.
func ListItems(ctx context.Context, db *sql.DB, skuCode, availability string) ([]model.InventoryItem, error) {
	query := `SELECT id, sku, origin, availability, bin_id, order_id, batch_id, qr_payload,
	                 created_at, updated_at
	          FROM items WHERE 1=1`
	var args []any

	if skuCode != "" {
		query += ` AND sku = ?`
		args = append(args, skuCode)
	}
	if availability != "" {
		query += ` AND availability = ?`
		args = append(args, availability)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ReverseAssignment undoes an assignment: the item returns to UNCOMMITTED
// and its order id is cleared. Requests already created for the item
// (e.g. a pending wash) are deliberately left alone; cancelling them is a
// separate operation.
func ReverseAssignment(ctx context.Context, db *sql.DB, itemID string, now time.Time) error {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return err
	}
	if err := item.TransitionAvailability(model.AvailabilityUncommitted, nil, now); err != nil {
		return err
	}
	return casAvailability(ctx, db, itemID, model.AvailabilityAssigned, model.AvailabilityUncommitted, true, now)
}

// CommitItem reserves an uncommitted item for an order without finalizing
// the assignment.
func CommitItem(ctx context.Context, db *sql.DB, itemID string, now time.Time) error {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return err
	}
	if err := item.TransitionAvailability(model.AvailabilityCommitted, nil, now); err != nil {
		return err
	}
	return casAvailability(ctx, db, itemID, model.AvailabilityUncommitted, model.AvailabilityCommitted, false, now)
}

// casAvailability writes an availability change guarded by the expected
// current state. Zero affected rows means the row moved between the
// caller's read and this write, so the change must not be reported as
// applied.
func casAvailability(ctx context.Context, db *sql.DB, itemID, from, to string, clearOrder bool, now time.Time) error {
	query := `UPDATE items SET availability = ?, updated_at = ? WHERE id = ? AND availability = ?`
	if clearOrder {
		query = `UPDATE items SET availability = ?, order_id = NULL, updated_at = ? WHERE id = ? AND availability = ?`
	}

	result, err := db.ExecContext(ctx, query, to, now, itemID, from)
	if err != nil {
		return fmt.Errorf("updating item availability: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item availability: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s changed concurrently: %w", itemID, ErrNotFound)
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	for rows.Next() {
		var item model.InventoryItem
		var binID, orderID, batchID, qrPayload sql.NullString
		if err := rows.Scan(&item.ID, &item.SKU, &item.Origin, &item.Availability,
			&binID, &orderID, &batchID, &qrPayload, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		setNullable(&item.BinID, binID)
		setNullable(&item.OrderID, orderID)
		setNullable(&item.BatchID, batchID)
		item.QRPayload = qrPayload.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func setNullable(dst **string, src sql.NullString) {
	if src.Valid {
		s := src.String
		*dst = &s
	} else {
		*dst = nil
	}
}
