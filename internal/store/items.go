package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pointmint/market/internal/model"
)

const itemColumns = `id, name, description, price, stock, status, registered, plugin_name, image, tags`

// ListItems returns all catalog rows ordered by id.
func ListItems(ctx context.Context, db *sql.DB) ([]model.MarketItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM market_items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.MarketItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.MarketItem, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM market_items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// FindItemByOwner returns the item registered under (name, pluginName), the
// registration idempotency key.
func FindItemByOwner(ctx context.Context, db *sql.DB, name, pluginName string) (*model.MarketItem, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM market_items WHERE name = ? AND plugin_name = ?`,
		name, pluginName,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item by owner: %w", err)
	}
	return item, nil
}

// InsertItem inserts a catalog row with an explicit, caller-allocated id.
func InsertItem(ctx context.Context, db *sql.DB, item *model.MarketItem) error {
	tags, err := marshalTags(item.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO market_items (id, name, description, price, stock, status, registered, plugin_name, image, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Description, item.Price, item.Stock,
		item.Status, item.Registered, item.PluginName, item.Image, tags,
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

// UpdateItems applies partial row updates in a single transaction. Nil fields
// are left unchanged; rows with no set fields are skipped.
func UpdateItems(ctx context.Context, db *sql.DB, updates []model.ItemUpdate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		var set []string
		var args []any

		if u.Name != nil {
			set = append(set, "name = ?")
			args = append(args, *u.Name)
		}
		if u.Description != nil {
			set = append(set, "description = ?")
			args = append(args, *u.Description)
		}
		if u.Price != nil {
			set = append(set, "price = ?")
			args = append(args, *u.Price)
		}
		if u.Stock != nil {
			set = append(set, "stock = ?")
			args = append(args, *u.Stock)
		}
		if u.Status != nil {
			set = append(set, "status = ?")
			args = append(args, *u.Status)
		}
		if u.Tags != nil {
			tags, err := marshalTags(*u.Tags)
			if err != nil {
				return fmt.Errorf("encoding tags: %w", err)
			}
			set = append(set, "tags = ?")
			args = append(args, tags)
		}
		if u.Image != nil {
			set = append(set, "image = ?")
			args = append(args, *u.Image)
		}
		if u.Registered != nil {
			set = append(set, "registered = ?")
			args = append(args, *u.Registered)
		}
		if len(set) == 0 {
			continue
		}

		set = append(set, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, u.ID)
		_, err := tx.ExecContext(ctx,
			`UPDATE market_items SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...,
		)
		if err != nil {
			return fmt.Errorf("updating item %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item updates: %w", err)
	}
	return nil
}

// DeleteItem hard-deletes a catalog row.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM market_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// DeleteItemsByPlugin hard-deletes every row owned by a plugin.
func DeleteItemsByPlugin(ctx context.Context, db *sql.DB, pluginName string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM market_items WHERE plugin_name = ?`, pluginName)
	if err != nil {
		return fmt.Errorf("deleting plugin items: %w", err)
	}
	return nil
}

// SwapItemIDs exchanges the ids of two rows; every other column stays with
// its original row. Goes through a temporary id so the primary key is never
// duplicated mid-swap.
func SwapItemIDs(ctx context.Context, db *sql.DB, id1, id2 int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range []int64{id1, id2} {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM market_items WHERE id = ?`, id,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking item %d: %w", id, err)
		}
		if exists == 0 {
			return fmt.Errorf("item %d not found", id)
		}
	}

	steps := []struct {
		from, to int64
	}{
		{id1, -id1},
		{id2, id1},
		{-id1, id2},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx,
			`UPDATE market_items SET id = ? WHERE id = ?`, s.to, s.from,
		); err != nil {
			return fmt.Errorf("swapping item ids: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing id swap: %w", err)
	}
	return nil
}

// MaxItemID returns the highest allocated item id, or 0 if the catalog is
// empty. Hard-deleted rows do not lower it below ids still in use.
func MaxItemID(ctx context.Context, db *sql.DB) (int64, error) {
	var maxID int64
	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM market_items`,
	).Scan(&maxID)
	if err != nil {
		return 0, fmt.Errorf("getting max item id: %w", err)
	}
	return maxID, nil
}

// DecrementStock decrements an item's stock by one if any is left. Returns
// false when the row is missing or already at zero; the stock column can
// never go negative through this path.
func DecrementStock(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE market_items SET stock = stock - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock > 0`, id,
	)
	if err != nil {
		return false, fmt.Errorf("decrementing stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking decrement: %w", err)
	}
	return affected == 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.MarketItem, error) {
	item := &model.MarketItem{}
	var description, image, tags sql.NullString
	err := row.Scan(&item.ID, &item.Name, &description, &item.Price, &item.Stock,
		&item.Status, &item.Registered, &item.PluginName, &image, &tags)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Image = image.String
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &item.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return item, nil
}

func marshalTags(tags []string) (any, error) {
	if tags == nil {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
