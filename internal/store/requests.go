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

// CreateRequest opens a new work order against an item.
func CreateRequest(ctx context.Context, db *sql.DB, itemID, reqType, priority string, metadata map[string]any, now time.Time) (*model.Request, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := CreateRequestTx(ctx, tx, itemID, reqType, priority, metadata, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing request: %w", err)
	}
	return req, nil
}

// CreateRequestTx inserts a request inside an existing transaction, for
// callers that bundle it with item transitions.
func CreateRequestTx(ctx context.Context, tx *sql.Tx, itemID, reqType, priority string, metadata map[string]any, now time.Time) (*model.Request, error) {
	if priority == "" {
		priority = model.PriorityMedium
	}

	req := &model.Request{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		Type:      reqType,
		Status:    model.RequestPending,
		Priority:  priority,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	meta, err := encodeMetadata(metadata)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO requests (id, item_id, type, status, priority, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.ItemID, req.Type, req.Status, req.Priority, meta, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting request: %w", err)
	}
	return req, nil
}

// GetRequest returns a request by ID, or ErrNotFound.
func GetRequest(ctx context.Context, db *sql.DB, id string) (*model.Request, error) {
	req := &model.Request{}
	var meta sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, item_id, type, status, priority, metadata, created_at, updated_at
		 FROM requests WHERE id = ?`, id,
	).Scan(&req.ID, &req.ItemID, &req.Type, &req.Status, &req.Priority, &meta,
		&req.CreatedAt, &req.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	if err := decodeMetadata(meta, &req.Metadata); err != nil {
		return nil, err
	}
	return req, nil
}

// ListRequests returns requests, optionally filtered by item and status.
func ListRequests(ctx context.Context, db *sql.DB, itemID, status string) ([]model.Request, error) {
	query := `SELECT id, item_id, type, status, priority, metadata, created_at, updated_at
	          FROM requests WHERE 1=1`
	var args []any

	if itemID != "" {
		query += ` AND item_id = ?`
		args = append(args, itemID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var req model.Request
		var meta sql.NullString
		if err := rows.Scan(&req.ID, &req.ItemID, &req.Type, &req.Status, &req.Priority,
			&meta, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		if err := decodeMetadata(meta, &req.Metadata); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// TransitionRequest applies a status transition through the lifecycle
// state machine. Illegal transitions surface as InvalidTransitionError
// and leave the row unchanged.
func TransitionRequest(ctx context.Context, db *sql.DB, id, to string, now time.Time) (*model.Request, error) {
	req, err := GetRequest(ctx, db, id)
	if err != nil {
		return nil, err
	}
	from := req.Status
	if err := req.Transition(to, now); err != nil {
		return nil, err
	}

	// Compare-and-set on the previous status so a concurrent transition
	// between read and write cannot be silently overwritten.
	result, err := db.ExecContext(ctx,
		`UPDATE requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		req.Status, req.UpdatedAt, id, from,
	)
	if err != nil {
		return nil, fmt.Errorf("updating request status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("request %s changed concurrently: %w", id, ErrNotFound)
	}
	return req, nil
}

func encodeMetadata(metadata map[string]any) (sql.NullString, error) {
	if len(metadata) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeMetadata(meta sql.NullString, dst *map[string]any) error {
	if !meta.Valid || meta.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(meta.String), dst); err != nil {
		return fmt.Errorf("decoding metadata: %w", err)
	}
	return nil
}
