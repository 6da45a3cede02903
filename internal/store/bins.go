package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atelierhq/denimstock/internal/ident"
	"github.com/atelierhq/denimstock/internal/model"
)

// binIDAttempts bounds the bin-id collision retry loop. The generator is
// only probabilistically unique, so the store re-checks every candidate.
const binIDAttempts = 10

// CreateBin creates a storage bin with a generated, collision-checked id.
func CreateBin(ctx context.Context, db *sql.DB, zone, rack, shelf string, capacity int, now time.Time) (*model.Bin, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bin capacity: %w", ErrInvalidQuantity)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	for attempt := 0; ; attempt++ {
		id, err = ident.NewBinID(zone, rack, shelf, capacity)
		if err != nil {
			return nil, fmt.Errorf("generating bin id: %w", err)
		}

		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM bins WHERE id = ?`, id,
		).Scan(&n); err != nil {
			return nil, fmt.Errorf("checking bin id: %w", err)
		}
		if n == 0 {
			break
		}
		if attempt >= binIDAttempts {
			return nil, fmt.Errorf("no free bin id after %d attempts", binIDAttempts)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bins (id, zone, rack, shelf, capacity, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, zone, rack, shelf, capacity, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting bin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bin: %w", err)
	}
	return GetBin(ctx, db, id)
}

// GetBin returns a bin with its derived item count, or ErrNotFound.
func GetBin(ctx context.Context, db *sql.DB, id string) (*model.Bin, error) {
	bin := &model.Bin{}
	err := db.QueryRowContext(ctx,
		`SELECT b.id, b.zone, b.rack, b.shelf, b.capacity, b.created_at,
		        (SELECT COUNT(*) FROM items i WHERE i.bin_id = b.id) AS current_items
		 FROM bins b WHERE b.id = ?`, id,
	).Scan(&bin.ID, &bin.Zone, &bin.Rack, &bin.Shelf, &bin.Capacity, &bin.CreatedAt, &bin.CurrentItems)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bin %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting bin: %w", err)
	}
	return bin, nil
}

// ListBins returns all bins with derived item counts, least-loaded first
// so callers can route new stock away from crowded bins.
func ListBins(ctx context.Context, db *sql.DB) ([]model.Bin, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT b.id, b.zone, b.rack, b.shelf, b.capacity, b.created_at,
		        (SELECT COUNT(*) FROM items i WHERE i.bin_id = b.id) AS current_items
		 FROM bins b
		 ORDER BY CAST((SELECT COUNT(*) FROM items i WHERE i.bin_id = b.id) AS REAL) / b.capacity, b.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bins: %w", err)
	}
	defer rows.Close()

	var bins []model.Bin
	for rows.Next() {
		var bin model.Bin
		if err := rows.Scan(&bin.ID, &bin.Zone, &bin.Rack, &bin.Shelf, &bin.Capacity,
			&bin.CreatedAt, &bin.CurrentItems); err != nil {
			return nil, fmt.Errorf("scanning bin: %w", err)
		}
		bins = append(bins, bin)
	}
	return bins, rows.Err()
}

// ValidateAvailability checks that at least one bin has a free slot.
// Returns ErrNoBinsExist or ErrBinsAtCapacity otherwise.
func ValidateAvailability(ctx context.Context, db *sql.DB) error {
	bins, err := ListBins(ctx, db)
	if err != nil {
		return err
	}
	if len(bins) == 0 {
		return ErrNoBinsExist
	}
	for i := range bins {
		if !bins[i].Full() {
			return nil
		}
	}
	return ErrBinsAtCapacity
}

// AssignToBin places an item into a bin. The capacity check and the
// membership update share one transaction, so the bin can never go over
// capacity and the item can never end up in two bins.
func AssignToBin(ctx context.Context, db *sql.DB, itemID, binID string, now time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var capacity, current int
	err = tx.QueryRowContext(ctx,
		`SELECT b.capacity, (SELECT COUNT(*) FROM items i WHERE i.bin_id = b.id)
		 FROM bins b WHERE b.id = ?`, binID,
	).Scan(&capacity, &current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("bin %s: %w", binID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking bin capacity: %w", err)
	}
	if current >= capacity {
		return fmt.Errorf("bin %s (%d/%d): %w", binID, current, capacity, ErrBinFull)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET bin_id = ?, updated_at = ? WHERE id = ?`,
		binID, now, itemID,
	)
	if err != nil {
		return fmt.Errorf("assigning item to bin: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bin assignment: %w", err)
	}
	return nil
}

// ReleaseFromBin removes an item from a bin. Returns ErrNotInBin if the
// item is not currently stored there.
func ReleaseFromBin(ctx context.Context, db *sql.DB, itemID, binID string, now time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET bin_id = NULL, updated_at = ? WHERE id = ? AND bin_id = ?`,
		now, itemID, binID,
	)
	if err != nil {
		return fmt.Errorf("releasing item from bin: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("releasing item from bin: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s in bin %s: %w", itemID, binID, ErrNotInBin)
	}
	return nil
}
