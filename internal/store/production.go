package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/denimstock/internal/model"
)

// CreateProductionRequestTx records demand waiting for a production run,
// inside the caller's transaction.
func CreateProductionRequestTx(ctx context.Context, tx *sql.Tx, skuCode, orderID string, quantity int, priority string, now time.Time) (*model.ProductionRequest, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("production request quantity: %w", ErrInvalidQuantity)
	}
	if priority == "" {
		priority = model.PriorityMedium
	}

	pr := &model.ProductionRequest{
		ID:        uuid.NewString(),
		SKU:       skuCode,
		OrderID:   orderID,
		Quantity:  quantity,
		Priority:  priority,
		Status:    model.RequestPending,
		CreatedAt: now,
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO production_requests (id, sku, order_id, quantity, priority, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pr.ID, pr.SKU, pr.OrderID, pr.Quantity, pr.Priority, pr.Status, pr.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting production request: %w", err)
	}
	return pr, nil
}

// ListProductionRequests returns pending production demand, oldest first.
func ListProductionRequests(ctx context.Context, db *sql.DB, status string) ([]model.ProductionRequest, error) {
	query := `SELECT id, sku, order_id, quantity, priority, status, created_at
	          FROM production_requests`
	var args []any

	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing production requests: %w", err)
	}
	defer rows.Close()

	var requests []model.ProductionRequest
	for rows.Next() {
		var pr model.ProductionRequest
		if err := rows.Scan(&pr.ID, &pr.SKU, &pr.OrderID, &pr.Quantity, &pr.Priority,
			&pr.Status, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning production request: %w", err)
		}
		requests = append(requests, pr)
	}
	return requests, rows.Err()
}
