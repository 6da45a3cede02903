package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// GetFacilityID retrieves the stable facility identifier from the
// database, generating and storing one on first use. The id names this
// warehouse in startup output and operator tooling. Uses INSERT OR
// IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetFacilityID(ctx context.Context, db *sql.DB) (string, error) {
	// Try to generate and insert first (safe against races).
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating facility id: %w", err)
	}
	candidate := "WH-" + hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('facility_id', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing facility_id: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var id string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'facility_id'`,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("querying facility_id: %w", err)
	}

	return id, nil
}
