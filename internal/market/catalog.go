package market

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"

	"github.com/pointmint/market/internal/model"
	"github.com/pointmint/market/internal/store"
)

// Catalog is a read-through cache over the market_items table. The whole
// snapshot is replaced atomically after every write, so readers always see
// either the pre-write or the fully-post-write catalog, never a partial one.
type Catalog struct {
	db   *sql.DB
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	items []model.MarketItem
	byID  map[int64]int
}

// NewCatalog loads the catalog from the store and returns the cache.
func NewCatalog(ctx context.Context, db *sql.DB) (*Catalog, error) {
	c := &Catalog{db: db}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh rebuilds the cached snapshot from the store.
func (c *Catalog) Refresh(ctx context.Context) error {
	items, err := store.ListItems(ctx, c.db)
	if err != nil {
		return err
	}

	byID := make(map[int64]int, len(items))
	for i := range items {
		byID[items[i].ID] = i
	}
	c.snap.Store(&snapshot{items: items, byID: byID})
	return nil
}

// Items returns the current cached snapshot. Callers must treat it as
// read-only; it is shared until the next write replaces it.
func (c *Catalog) Items() []model.MarketItem {
	return c.snap.Load().items
}

// GetByID returns a copy of the cached item, or nil if unknown.
func (c *Catalog) GetByID(id int64) *model.MarketItem {
	snap := c.snap.Load()
	i, ok := snap.byID[id]
	if !ok {
		return nil
	}
	item := snap.items[i]
	return &item
}

// FindByOwner returns a copy of the cached item registered under
// (name, pluginName), or nil.
func (c *Catalog) FindByOwner(name, pluginName string) *model.MarketItem {
	for _, item := range c.snap.Load().items {
		if item.Name == name && item.PluginName == pluginName {
			return &item
		}
	}
	return nil
}

// NextID reloads the cache and returns the next free item id (max + 1, or 1
// for an empty catalog). A store failure is logged and falls back to 1 so
// registration stays available; after a transient failure the returned id can
// collide with an existing row.
func (c *Catalog) NextID(ctx context.Context) int64 {
	if err := c.Refresh(ctx); err != nil {
		slog.Warn("catalog reload failed, falling back to id 1", "error", err)
		return 1
	}

	maxID, err := store.MaxItemID(ctx, c.db)
	if err != nil {
		slog.Warn("max item id lookup failed, falling back to id 1", "error", err)
		return 1
	}
	return maxID + 1
}

// Create inserts a catalog row and refreshes the cache. A row with the same
// (name, pluginName) already present is absorbed silently: duplicate
// registration is not an error.
func (c *Catalog) Create(ctx context.Context, item *model.MarketItem) error {
	existing, err := store.FindItemByOwner(ctx, c.db, item.Name, item.PluginName)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("duplicate item registration absorbed",
			"name", item.Name, "plugin", item.PluginName, "id", existing.ID)
		return nil
	}

	if err := store.InsertItem(ctx, c.db, item); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// UpdateMany applies partial row updates and refreshes the cache.
func (c *Catalog) UpdateMany(ctx context.Context, updates []model.ItemUpdate) error {
	if err := store.UpdateItems(ctx, c.db, updates); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// DeleteByID hard-deletes a row and refreshes the cache.
func (c *Catalog) DeleteByID(ctx context.Context, id int64) error {
	if err := store.DeleteItem(ctx, c.db, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// DeleteByPlugin hard-deletes a plugin's rows and refreshes the cache.
func (c *Catalog) DeleteByPlugin(ctx context.Context, pluginName string) error {
	if err := store.DeleteItemsByPlugin(ctx, c.db, pluginName); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// DecrementStock decrements an item's stock by one if any is left, refreshing
// the cache on success. Returns false when the item was already sold out.
func (c *Catalog) DecrementStock(ctx context.Context, id int64) (bool, error) {
	ok, err := store.DecrementStock(ctx, c.db, id)
	if err != nil || !ok {
		return ok, err
	}
	return true, c.Refresh(ctx)
}

// SwapIDs exchanges the ids of two rows and refreshes the cache.
func (c *Catalog) SwapIDs(ctx context.Context, id1, id2 int64) error {
	if err := store.SwapItemIDs(ctx, c.db, id1, id2); err != nil {
		return err
	}
	return c.Refresh(ctx)
}
