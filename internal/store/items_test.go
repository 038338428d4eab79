package store

import (
	"context"
	"testing"

	"github.com/pointmint/market/internal/db"
	"github.com/pointmint/market/internal/model"
)

func testItem(id int64, name, plugin string) *model.MarketItem {
	return &model.MarketItem{
		ID:         id,
		Name:       name,
		Price:      10,
		Stock:      5,
		Status:     model.ItemStatusAvailable,
		Registered: true,
		PluginName: plugin,
	}
}

func TestInsertAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := testItem(1, "Potion", "alchemy")
	item.Description = "Restores 50 HP"
	item.Tags = []string{"consumable", "healing"}
	if err := InsertItem(ctx, database, item); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}

	got, err := GetItem(ctx, database, 1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.Name != "Potion" || got.PluginName != "alchemy" {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.Description != "Restores 50 HP" {
		t.Errorf("expected description, got %q", got.Description)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "consumable" {
		t.Errorf("unexpected tags: %v", got.Tags)
	}
}

func TestGetItemMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetItem(context.Background(), database, 42)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %+v", got)
	}
}

func TestFindItemByOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertItem(ctx, database, testItem(1, "Potion", "alchemy"))
	InsertItem(ctx, database, testItem(2, "Potion", "brewery"))

	got, err := FindItemByOwner(ctx, database, "Potion", "brewery")
	if err != nil {
		t.Fatalf("FindItemByOwner: %v", err)
	}
	if got == nil || got.ID != 2 {
		t.Errorf("expected item 2, got %+v", got)
	}

	missing, err := FindItemByOwner(ctx, database, "Potion", "smithy")
	if err != nil {
		t.Fatalf("FindItemByOwner: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil, got %+v", missing)
	}
}

func TestUpdateItemsPartial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertItem(ctx, database, testItem(1, "Potion", "alchemy"))

	stock := int64(3)
	status := model.ItemStatusUnavailable
	err := UpdateItems(ctx, database, []model.ItemUpdate{
		{ID: 1, Stock: &stock, Status: &status},
	})
	if err != nil {
		t.Fatalf("UpdateItems: %v", err)
	}

	got, _ := GetItem(ctx, database, 1)
	if got.Stock != 3 {
		t.Errorf("expected stock 3, got %d", got.Stock)
	}
	if got.Status != model.ItemStatusUnavailable {
		t.Errorf("expected status unavailable, got %q", got.Status)
	}
	// Untouched fields stay.
	if got.Name != "Potion" || got.Price != 10 {
		t.Errorf("unset fields changed: %+v", got)
	}
}

func TestSwapItemIDs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertItem(ctx, database, testItem(1, "X", "p"))
	InsertItem(ctx, database, testItem(2, "Y", "p"))

	if err := SwapItemIDs(ctx, database, 1, 2); err != nil {
		t.Fatalf("SwapItemIDs: %v", err)
	}

	got1, _ := GetItem(ctx, database, 1)
	got2, _ := GetItem(ctx, database, 2)
	if got1 == nil || got1.Name != "Y" {
		t.Errorf("expected id 1 to hold Y, got %+v", got1)
	}
	if got2 == nil || got2.Name != "X" {
		t.Errorf("expected id 2 to hold X, got %+v", got2)
	}
}

func TestSwapItemIDsMissing(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertItem(ctx, database, testItem(1, "X", "p"))

	if err := SwapItemIDs(ctx, database, 1, 99); err == nil {
		t.Error("expected error for missing item")
	}

	// Row 1 must be untouched after the failed swap.
	got, _ := GetItem(ctx, database, 1)
	if got == nil || got.Name != "X" {
		t.Errorf("row changed after failed swap: %+v", got)
	}
}

func TestDeleteItemsByPlugin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	InsertItem(ctx, database, testItem(1, "A", "p1"))
	InsertItem(ctx, database, testItem(2, "B", "p1"))
	InsertItem(ctx, database, testItem(3, "C", "p2"))

	if err := DeleteItemsByPlugin(ctx, database, "p1"); err != nil {
		t.Fatalf("DeleteItemsByPlugin: %v", err)
	}

	items, _ := ListItems(ctx, database)
	if len(items) != 1 || items[0].ID != 3 {
		t.Errorf("expected only item 3 to remain, got %+v", items)
	}
}

func TestMaxItemID(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	max, err := MaxItemID(ctx, database)
	if err != nil {
		t.Fatalf("MaxItemID: %v", err)
	}
	if max != 0 {
		t.Errorf("expected 0 for empty catalog, got %d", max)
	}

	InsertItem(ctx, database, testItem(7, "A", "p"))
	max, _ = MaxItemID(ctx, database)
	if max != 7 {
		t.Errorf("expected 7, got %d", max)
	}
}

func TestDecrementStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := testItem(1, "Potion", "alchemy")
	item.Stock = 1
	InsertItem(ctx, database, item)

	ok, err := DecrementStock(ctx, database, 1)
	if err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if !ok {
		t.Fatal("expected decrement to succeed")
	}

	// Stock is now 0, a second decrement must refuse.
	ok, err = DecrementStock(ctx, database, 1)
	if err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if ok {
		t.Error("expected decrement to fail at zero stock")
	}

	got, _ := GetItem(ctx, database, 1)
	if got.Stock != 0 {
		t.Errorf("stock went negative: %d", got.Stock)
	}
}

func TestDecrementStockMissingItem(t *testing.T) {
	database := db.NewTestDB(t)

	ok, err := DecrementStock(context.Background(), database, 99)
	if err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if ok {
		t.Error("expected false for missing item")
	}
}
