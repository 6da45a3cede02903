package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/denimstock/internal/model"
)

// CreateBatch opens a production batch for quantity units of one SKU.
// Quantity is immutable after creation.
func CreateBatch(ctx context.Context, db *sql.DB, skuCode string, quantity int, now time.Time) (*model.ProductionBatch, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("batch quantity: %w", ErrInvalidQuantity)
	}

	batch := &model.ProductionBatch{
		ID:        uuid.NewString(),
		SKU:       skuCode,
		Quantity:  quantity,
		Status:    model.BatchCreated,
		CreatedAt: now,
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO batches (id, sku, quantity, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.SKU, batch.Quantity, batch.Status, batch.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting batch: %w", err)
	}
	return batch, nil
}

// qrPayload is the machine-readable content of an item label.
type qrPayload struct {
	ID      string `json:"id"`
	SKU     string `json:"sku"`
	BatchID string `json:"batch_id"`
}

// GenerateBatchItems issues the batch's inventory items: one per unit,
// each with a globally unique id and a QR payload carrying id, SKU and
// batch id. The whole set is written in one transaction; a failure
// leaves no partially issued batch behind. The returned slice is eager
// and ordered, as label rendering needs the full set for pagination.
func GenerateBatchItems(ctx context.Context, db *sql.DB, batchID string, now time.Time) ([]model.InventoryItem, error) {
	batch, err := GetBatch(ctx, db, batchID)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	items := make([]model.InventoryItem, 0, batch.Quantity)
	for i := 0; i < batch.Quantity; i++ {
		id, err := issueItemID(ctx, tx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(qrPayload{ID: id, SKU: batch.SKU, BatchID: batch.ID})
		if err != nil {
			return nil, fmt.Errorf("encoding qr payload: %w", err)
		}

		item := model.InventoryItem{
			ID:           id,
			SKU:          batch.SKU,
			Origin:       model.OriginProduction,
			Availability: model.AvailabilityUncommitted,
			BatchID:      &batch.ID,
			QRPayload:    string(payload),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (id, sku, origin, availability, batch_id, qr_payload, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.SKU, item.Origin, item.Availability, item.BatchID,
			item.QRPayload, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting batch item: %w", err)
		}

		items = append(items, item)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE batches SET status = ? WHERE id = ?`,
		model.BatchInProgress, batch.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating batch status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing batch items: %w", err)
	}
	return items, nil
}

// GetBatch returns a batch with the ids of its issued items, or
// ErrNotFound.
func GetBatch(ctx context.Context, db *sql.DB, id string) (*model.ProductionBatch, error) {
	batch := &model.ProductionBatch{}
	err := db.QueryRowContext(ctx,
		`SELECT id, sku, quantity, status, created_at FROM batches WHERE id = ?`, id,
	).Scan(&batch.ID, &batch.SKU, &batch.Quantity, &batch.Status, &batch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting batch: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id FROM items WHERE batch_id = ? ORDER BY created_at, id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing batch items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("scanning batch item id: %w", err)
		}
		batch.ItemIDs = append(batch.ItemIDs, itemID)
	}
	return batch, rows.Err()
}

// ListBatchItems returns the batch's items in issuance order.
func ListBatchItems(ctx context.Context, db *sql.DB, batchID string) ([]model.InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, sku, origin, availability, bin_id, order_id, batch_id, qr_payload,
		        created_at, updated_at
		 FROM items WHERE batch_id = ? ORDER BY created_at, id`, batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing batch items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// CompleteBatch marks a batch's production run finished.
func CompleteBatch(ctx context.Context, db *sql.DB, batchID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE batches SET status = ? WHERE id = ?`,
		model.BatchCompleted, batchID,
	)
	if err != nil {
		return fmt.Errorf("completing batch: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	return nil
}
