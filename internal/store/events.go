package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/denimstock/internal/model"
)

// RecordEvent appends an observability record. Callers treat failures as
// best-effort: log and move on, never roll back the operation the event
// describes.
func RecordEvent(ctx context.Context, db *sql.DB, eventType, entityID, entityType, message string, metadata map[string]any, now time.Time) error {
	meta, err := encodeMetadata(metadata)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO events (id, type, entity_id, entity_type, message, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), eventType, entityID, entityType, message, meta, now,
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// ListEvents returns events, optionally filtered by entity, newest first.
func ListEvents(ctx context.Context, db *sql.DB, entityID string) ([]model.Event, error) {
	query := `SELECT id, type, entity_id, entity_type, message, metadata, created_at FROM events`
	var args []any

	if entityID != "" {
		query += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var meta sql.NullString
		if err := rows.Scan(&e.ID, &e.Type, &e.EntityID, &e.EntityType, &e.Message,
			&meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if err := decodeMetadata(meta, &e.Metadata); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
