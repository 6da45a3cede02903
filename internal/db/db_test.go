package db

import "testing"

func TestEnsureSchemaAndMigrateIdempotent(t *testing.T) {
	database := NewTestDB(t)

	// A second pass over an initialized database must be a no-op.
	if err := EnsureSchema(database); err != nil {
		t.Fatalf("re-running EnsureSchema: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := Migrate(database); err != nil {
			t.Fatalf("Migrate pass %d: %v", i+1, err)
		}
	}

	// The schema's own waitlist index must survive migration passes.
	var n int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_waitlist_sku_position_live'`,
	).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	if n != 1 {
		t.Errorf("expected waitlist index to exist, found %d", n)
	}
}
