package market

import (
	"context"
	"testing"

	"github.com/pointmint/market/internal/db"
	"github.com/pointmint/market/internal/model"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	database := db.NewTestDB(t)
	catalog, err := NewCatalog(context.Background(), database)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return catalog
}

func catalogItem(id int64, name, plugin string) *model.MarketItem {
	return &model.MarketItem{
		ID:         id,
		Name:       name,
		Price:      5,
		Stock:      1,
		Status:     model.ItemStatusAvailable,
		Registered: true,
		PluginName: plugin,
	}
}

func TestNextIDEmptyCatalog(t *testing.T) {
	catalog := newTestCatalog(t)

	if id := catalog.NextID(context.Background()); id != 1 {
		t.Errorf("expected 1 for empty catalog, got %d", id)
	}
}

func TestNextIDAfterCreate(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	catalog.Create(ctx, catalogItem(1, "A", "p"))
	catalog.Create(ctx, catalogItem(7, "B", "p"))

	if id := catalog.NextID(ctx); id != 8 {
		t.Errorf("expected 8, got %d", id)
	}
}

func TestNextIDStoreErrorFallsBackToOne(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	catalog, err := NewCatalog(ctx, database)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	catalog.Create(ctx, catalogItem(3, "A", "p"))

	// A broken store must not take registration down; the fallback id can
	// collide, which is the documented tradeoff.
	database.Close()
	if id := catalog.NextID(ctx); id != 1 {
		t.Errorf("expected fallback id 1, got %d", id)
	}
}

func TestCreateDuplicateAbsorbed(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	if err := catalog.Create(ctx, catalogItem(1, "Potion", "alchemy")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Same (name, pluginName): silently absorbed, not an error.
	dup := catalogItem(2, "Potion", "alchemy")
	if err := catalog.Create(ctx, dup); err != nil {
		t.Fatalf("Create duplicate: %v", err)
	}

	items := catalog.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID != 1 {
		t.Errorf("expected original row to survive, got id %d", items[0].ID)
	}
}

func TestSnapshotReplacedAfterWrite(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	catalog.Create(ctx, catalogItem(1, "A", "p"))
	before := catalog.Items()

	stock := int64(9)
	if err := catalog.UpdateMany(ctx, []model.ItemUpdate{{ID: 1, Stock: &stock}}); err != nil {
		t.Fatalf("UpdateMany: %v", err)
	}

	// The old snapshot is untouched; the new one carries the write.
	if before[0].Stock != 1 {
		t.Errorf("pre-write snapshot mutated: stock %d", before[0].Stock)
	}
	if got := catalog.GetByID(1); got.Stock != 9 {
		t.Errorf("expected stock 9 in new snapshot, got %d", got.Stock)
	}
}

func TestGetByIDReturnsCopy(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	catalog.Create(ctx, catalogItem(1, "A", "p"))

	got := catalog.GetByID(1)
	got.Stock = 99

	if catalog.GetByID(1).Stock != 1 {
		t.Error("mutating a returned item leaked into the cache")
	}
}

func TestFindByOwner(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	catalog.Create(ctx, catalogItem(1, "Potion", "alchemy"))
	catalog.Create(ctx, catalogItem(2, "Potion", "brewery"))

	got := catalog.FindByOwner("Potion", "brewery")
	if got == nil || got.ID != 2 {
		t.Errorf("expected item 2, got %+v", got)
	}
	if catalog.FindByOwner("Elixir", "alchemy") != nil {
		t.Error("expected nil for unknown name")
	}
}

func TestDeleteByPluginRefreshesCache(t *testing.T) {
	catalog := newTestCatalog(t)
	ctx := context.Background()

	catalog.Create(ctx, catalogItem(1, "A", "p1"))
	catalog.Create(ctx, catalogItem(2, "B", "p2"))

	if err := catalog.DeleteByPlugin(ctx, "p1"); err != nil {
		t.Fatalf("DeleteByPlugin: %v", err)
	}

	if catalog.GetByID(1) != nil {
		t.Error("expected item 1 gone from cache")
	}
	if catalog.GetByID(2) == nil {
		t.Error("expected item 2 to survive")
	}
}
