package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS bins (
    id         TEXT PRIMARY KEY,
    zone       TEXT NOT NULL,
    rack       TEXT NOT NULL,
    shelf      TEXT NOT NULL,
    capacity   INTEGER NOT NULL CHECK (capacity > 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS batches (
    id         TEXT PRIMARY KEY,
    sku        TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    status     TEXT NOT NULL DEFAULT 'CREATED'
               CHECK (status IN ('CREATED', 'IN_PROGRESS', 'COMPLETED')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id           TEXT PRIMARY KEY,
    sku          TEXT NOT NULL,
    origin       TEXT NOT NULL CHECK (origin IN ('STOCK', 'PRODUCTION')),
    availability TEXT NOT NULL DEFAULT 'UNCOMMITTED'
                 CHECK (availability IN ('UNCOMMITTED', 'COMMITTED', 'ASSIGNED')),
    bin_id       TEXT REFERENCES bins(id),
    order_id     TEXT,
    batch_id     TEXT REFERENCES batches(id),
    qr_payload   TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    -- An assigned item always belongs to an order.
    CHECK (availability != 'ASSIGNED' OR order_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_items_sku_availability ON items(sku, availability);
CREATE INDEX IF NOT EXISTS idx_items_bin ON items(bin_id);

CREATE TABLE IF NOT EXISTS requests (
    id         TEXT PRIMARY KEY,
    item_id    TEXT NOT NULL REFERENCES items(id),
    type       TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'PENDING'
               CHECK (status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED', 'FAILED')),
    priority   TEXT NOT NULL DEFAULT 'MEDIUM'
               CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH', 'URGENT')),
    metadata   TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_requests_item ON requests(item_id);

CREATE TABLE IF NOT EXISTS production_requests (
    id         TEXT PRIMARY KEY,
    sku        TEXT NOT NULL,
    order_id   TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    priority   TEXT NOT NULL DEFAULT 'MEDIUM'
               CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH', 'URGENT')),
    status     TEXT NOT NULL DEFAULT 'PENDING',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS waitlist (
    id          TEXT PRIMARY KEY,
    sku         TEXT NOT NULL,
    order_id    TEXT NOT NULL,
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    position    INTEGER NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_sku_position_live
    ON waitlist(sku, position) WHERE resolved_at IS NULL;

CREATE TABLE IF NOT EXISTS events (
    id          TEXT PRIMARY KEY,
    type        TEXT NOT NULL,
    entity_id   TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    message     TEXT NOT NULL,
    metadata    TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
