package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelierhq/denimstock/internal/db"
	"github.com/atelierhq/denimstock/internal/model"
)

func TestCreateBin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bin, err := CreateBin(ctx, database, "A", "R1", "S2", 10, t0)
	if err != nil {
		t.Fatalf("CreateBin: %v", err)
	}
	if bin.Capacity != 10 || bin.CurrentItems != 0 {
		t.Errorf("unexpected bin: %+v", bin)
	}

	if _, err := CreateBin(ctx, database, "A", "R1", "S2", 0, t0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for zero capacity, got %v", err)
	}
}

func TestValidateAvailability(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := ValidateAvailability(ctx, database); !errors.Is(err, ErrNoBinsExist) {
		t.Errorf("expected ErrNoBinsExist, got %v", err)
	}

	bin, _ := CreateBin(ctx, database, "A", "R1", "S1", 1, t0)
	if err := ValidateAvailability(ctx, database); err != nil {
		t.Errorf("expected bins available, got %v", err)
	}

	item, _ := CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	if err := AssignToBin(ctx, database, item.ID, bin.ID, t0); err != nil {
		t.Fatalf("AssignToBin: %v", err)
	}
	if err := ValidateAvailability(ctx, database); !errors.Is(err, ErrBinsAtCapacity) {
		t.Errorf("expected ErrBinsAtCapacity, got %v", err)
	}
}

func TestAssignToBinFull(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bin, _ := CreateBin(ctx, database, "A", "R1", "S1", 1, t0)
	first, _ := CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	second, _ := CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)

	if err := AssignToBin(ctx, database, first.ID, bin.ID, t0); err != nil {
		t.Fatalf("AssignToBin: %v", err)
	}

	err := AssignToBin(ctx, database, second.ID, bin.ID, t0)
	if !errors.Is(err, ErrBinFull) {
		t.Fatalf("expected ErrBinFull, got %v", err)
	}

	// Neither bin nor item changed.
	got, _ := GetBin(ctx, database, bin.ID)
	if got.CurrentItems != 1 {
		t.Errorf("bin count changed on failed assign: %d", got.CurrentItems)
	}
	item, _ := GetItem(ctx, database, second.ID)
	if item.BinID != nil {
		t.Errorf("item bin changed on failed assign: %v", *item.BinID)
	}
}

func TestAssignMovesBetweenBins(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	binA, _ := CreateBin(ctx, database, "A", "R1", "S1", 5, t0)
	binB, _ := CreateBin(ctx, database, "B", "R1", "S1", 5, t0)
	item, _ := CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)

	AssignToBin(ctx, database, item.ID, binA.ID, t0)
	AssignToBin(ctx, database, item.ID, binB.ID, t0)

	// Membership is exclusive: moving to B removes the item from A.
	a, _ := GetBin(ctx, database, binA.ID)
	b, _ := GetBin(ctx, database, binB.ID)
	if a.CurrentItems != 0 || b.CurrentItems != 1 {
		t.Errorf("expected exclusive membership, got A=%d B=%d", a.CurrentItems, b.CurrentItems)
	}
}

func TestReleaseFromBin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bin, _ := CreateBin(ctx, database, "A", "R1", "S1", 5, t0)
	item, _ := CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)

	if err := ReleaseFromBin(ctx, database, item.ID, bin.ID, t0); !errors.Is(err, ErrNotInBin) {
		t.Errorf("expected ErrNotInBin, got %v", err)
	}

	AssignToBin(ctx, database, item.ID, bin.ID, t0)
	if err := ReleaseFromBin(ctx, database, item.ID, bin.ID, t0.Add(time.Minute)); err != nil {
		t.Fatalf("ReleaseFromBin: %v", err)
	}

	got, _ := GetBin(ctx, database, bin.ID)
	if got.CurrentItems != 0 {
		t.Errorf("expected empty bin after release, got %d", got.CurrentItems)
	}
}

func TestListBinsLeastLoadedFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	crowded, _ := CreateBin(ctx, database, "A", "R1", "S1", 2, t0)
	empty, _ := CreateBin(ctx, database, "B", "R1", "S1", 2, t0)

	item, _ := CreateStockItem(ctx, database, "ST-32-X-30-RAW", nil, t0)
	AssignToBin(ctx, database, item.ID, crowded.ID, t0)

	bins, err := ListBins(ctx, database)
	if err != nil {
		t.Fatalf("ListBins: %v", err)
	}
	if len(bins) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(bins))
	}
	if bins[0].ID != empty.ID {
		t.Errorf("expected least-loaded bin first, got %s", bins[0].ID)
	}
	if bins[1].LoadSeverity() != model.BinLoadNormal {
		t.Errorf("unexpected severity %q", bins[1].LoadSeverity())
	}
}
