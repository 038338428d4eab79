package model

// StockUnlimited marks an item that never runs out.
const StockUnlimited = -1

// Item statuses.
const (
	ItemStatusAvailable   = "available"
	ItemStatusUnavailable = "unavailable"
)

// MarketItem is one purchasable catalog row. IDs are allocated monotonically
// and never reused, even after a hard delete.
type MarketItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Stock       int64    `json:"stock"`
	Status      string   `json:"status"`
	Registered  bool     `json:"registered"`
	PluginName  string   `json:"plugin_name"`
	Image       string   `json:"image,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Unlimited reports whether the item has no stock limit.
func (i *MarketItem) Unlimited() bool {
	return i.Stock == StockUnlimited
}

// ItemUpdate is a partial catalog row update keyed by ID. Nil fields are left
// unchanged. Registered is excluded from JSON so the admin API cannot flip it;
// only the registration coordinator does.
type ItemUpdate struct {
	ID          int64     `json:"id"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *int64    `json:"price,omitempty"`
	Stock       *int64    `json:"stock,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Registered  *bool     `json:"-"`
}
