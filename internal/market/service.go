// Package market implements a points marketplace: plugins register
// purchasable items with a fulfillment callback, chat users spend ledger
// points to buy them, and an admin surface edits the catalog.
package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pointmint/market/internal/model"
)

// source tags this module's transactions in the ledger.
const source = "market"

// User-facing purchase messages.
const (
	msgItemNotFound = "商品不存在"
	msgSoldOut      = "商品已售罄"
	msgNoCallback   = "商品回调函数未注册"
	msgPurchaseFail = "购买失败"
	msgPurchaseOK   = "购买成功"
)

// DefaultLockWait bounds how long a purchase waits for an item's stock lock.
const DefaultLockWait = 5 * time.Second

// Service coordinates item registration and the purchase protocol. All state
// is owned by the instance; construct one per process and share it.
type Service struct {
	catalog   *Catalog
	locks     *LockRegistry
	callbacks *CallbackRegistry
	ledger    Ledger
	lockWait  time.Duration
}

// NewService creates a market service on top of a catalog and a points
// ledger. lockWait bounds lock acquisition during stock commit; zero means
// DefaultLockWait.
func NewService(catalog *Catalog, ledger Ledger, lockWait time.Duration) *Service {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Service{
		catalog:   catalog,
		locks:     NewLockRegistry(),
		callbacks: NewCallbackRegistry(),
		ledger:    ledger,
		lockWait:  lockWait,
	}
}

// RegisterItem registers a purchasable item for a plugin. Registration is
// idempotent per (name, pluginName): an existing row keeps its id and
// admin-set fields, gets its image and registered flag refreshed, and has its
// callback replaced. A new row gets the next free id, the option's initial
// stock (default 0) and status unavailable.
func (s *Service) RegisterItem(ctx context.Context, pluginName string, opts model.RegisterOptions) error {
	if opts.Name == "" {
		return fmt.Errorf("registering item: empty name")
	}
	if opts.OnPurchase == nil {
		return fmt.Errorf("registering item %q: nil purchase callback", opts.Name)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	if err := s.locks.AcquireRegistration(lockCtx); err != nil {
		return fmt.Errorf("registering item %q: %w", opts.Name, err)
	}
	defer s.locks.ReleaseRegistration()

	if existing := s.catalog.FindByOwner(opts.Name, pluginName); existing != nil {
		registered := true
		update := model.ItemUpdate{
			ID:         existing.ID,
			Image:      &opts.Image,
			Registered: &registered,
		}
		if err := s.catalog.UpdateMany(ctx, []model.ItemUpdate{update}); err != nil {
			return fmt.Errorf("updating item %q: %w", opts.Name, err)
		}
		s.callbacks.Set(existing.ID, opts.OnPurchase)
		slog.Info("plugin updated item", "plugin", pluginName, "item", opts.Name, "id", existing.ID)
		return nil
	}

	id := s.catalog.NextID(ctx)
	var stock int64
	if opts.Stock != nil {
		stock = *opts.Stock
	}
	item := &model.MarketItem{
		ID:          id,
		Name:        opts.Name,
		Description: opts.Description,
		Price:       opts.Price,
		Stock:       stock,
		Status:      model.ItemStatusUnavailable,
		Registered:  true,
		PluginName:  pluginName,
		Image:       opts.Image,
		Tags:        opts.Tags,
	}
	if err := s.catalog.Create(ctx, item); err != nil {
		return fmt.Errorf("creating item %q: %w", opts.Name, err)
	}
	s.callbacks.Set(id, opts.OnPurchase)
	slog.Info("plugin registered item", "plugin", pluginName, "item", opts.Name, "id", id)
	return nil
}

// UnregisterItem soft-unregisters an item: the callback mapping is removed
// and the row is kept with registered=false. A later purchase attempt fails
// on the missing callback; the registered flag itself does not gate
// purchasability.
func (s *Service) UnregisterItem(ctx context.Context, id int64) error {
	s.callbacks.Delete(id)

	if s.catalog.GetByID(id) == nil {
		return nil
	}
	registered := false
	if err := s.catalog.UpdateMany(ctx, []model.ItemUpdate{{ID: id, Registered: &registered}}); err != nil {
		return fmt.Errorf("unregistering item %d: %w", id, err)
	}
	return nil
}

// UnregisterItems soft-unregisters every item owned by a plugin.
func (s *Service) UnregisterItems(ctx context.Context, pluginName string) error {
	var updates []model.ItemUpdate
	registered := false
	for _, item := range s.catalog.Items() {
		if item.PluginName != pluginName {
			continue
		}
		s.callbacks.Delete(item.ID)
		updates = append(updates, model.ItemUpdate{ID: item.ID, Registered: &registered})
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.catalog.UpdateMany(ctx, updates); err != nil {
		return fmt.Errorf("unregistering items of %q: %w", pluginName, err)
	}
	slog.Info("plugin unregistered all items", "plugin", pluginName, "count", len(updates))
	return nil
}

// DeleteItemByID removes an item's callback mapping and hard-deletes its row.
// The id is never reused.
func (s *Service) DeleteItemByID(ctx context.Context, id int64) error {
	s.callbacks.Delete(id)
	if err := s.catalog.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	return nil
}

// DeleteItemsByPlugin hard-deletes a plugin's entire catalog.
func (s *Service) DeleteItemsByPlugin(ctx context.Context, pluginName string) error {
	for _, item := range s.catalog.Items() {
		if item.PluginName == pluginName {
			s.callbacks.Delete(item.ID)
		}
	}
	if err := s.catalog.DeleteByPlugin(ctx, pluginName); err != nil {
		return fmt.Errorf("deleting items of %q: %w", pluginName, err)
	}
	return nil
}

// PurchaseItem runs the purchase protocol: item lookup, stock check,
// transaction id, callback lookup, points deduction, fulfillment, stock
// commit. Failures are returned as a structured result, never as a panic or
// error. Points are rolled back whenever a deduction can no longer lead to a
// completed purchase.
func (s *Service) PurchaseItem(ctx context.Context, userID string, itemID int64, session *model.Session) model.PurchaseResult {
	item := s.catalog.GetByID(itemID)
	if item == nil {
		return model.PurchaseResult{Success: false, Message: msgItemNotFound}
	}
	if item.Stock == 0 {
		return model.PurchaseResult{Success: false, Message: msgSoldOut, Item: item}
	}

	transactionID := s.ledger.GenerateTransactionID()

	callback, ok := s.callbacks.Get(itemID)
	if !ok {
		// Nothing was deducted yet; the ledger ignores unknown transactions.
		s.rollback(ctx, userID, transactionID)
		return model.PurchaseResult{Success: false, Message: msgNoCallback, Item: item}
	}

	result, err := s.ledger.Reduce(ctx, userID, transactionID, item.Price, source)
	if err != nil {
		slog.Error("ledger deduction failed", "user", userID, "item", itemID, "error", err)
		return model.PurchaseResult{Success: false, Message: msgPurchaseFail, Item: item}
	}
	if !result.OK() {
		return model.PurchaseResult{Success: false, Message: result.Msg, Item: item}
	}

	feedback := callback(ctx, session)
	if !feedback.Ok() {
		s.rollback(ctx, userID, transactionID)
		msg := feedback.Message()
		if msg == "" {
			msg = msgPurchaseFail
		}
		return model.PurchaseResult{Success: false, Message: msg, Item: item}
	}

	if !item.Unlimited() {
		if failed := s.commitStock(ctx, userID, itemID, transactionID); failed != nil {
			failed.Item = item
			return *failed
		}
	}

	final := s.catalog.GetByID(itemID)
	if final == nil {
		final = item
	}
	slog.Info("item purchased", "user", userID, "item", itemID, "transaction", transactionID)
	return model.PurchaseResult{
		Success:       true,
		Message:       msgPurchaseOK,
		TransactionID: transactionID,
		Item:          final,
	}
}

// commitStock decrements stock under the item's lock. The conditional
// decrement re-validates stock, so two purchases that both saw the last unit
// are serialized here and only one commits; the loser's deduction is rolled
// back. Returns nil on success, or the failure result.
func (s *Service) commitStock(ctx context.Context, userID string, itemID int64, transactionID string) *model.PurchaseResult {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	if err := s.locks.Acquire(lockCtx, itemID); err != nil {
		slog.Error("stock lock wait timed out", "item", itemID, "user", userID)
		s.rollback(ctx, userID, transactionID)
		return &model.PurchaseResult{Success: false, Message: msgPurchaseFail}
	}
	defer s.locks.Release(itemID)

	committed, err := s.catalog.DecrementStock(ctx, itemID)
	if err != nil {
		slog.Error("stock commit failed", "item", itemID, "user", userID, "error", err)
		s.rollback(ctx, userID, transactionID)
		return &model.PurchaseResult{Success: false, Message: msgPurchaseFail}
	}
	if !committed {
		// Lost the race for the last unit after deduction.
		s.rollback(ctx, userID, transactionID)
		return &model.PurchaseResult{Success: false, Message: msgSoldOut}
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, userID, transactionID string) {
	if err := s.ledger.Rollback(ctx, userID, transactionID, source); err != nil {
		slog.Error("points rollback failed", "user", userID, "transaction", transactionID, "error", err)
	}
}

// Items returns the current catalog snapshot.
func (s *Service) Items() []model.MarketItem {
	return s.catalog.Items()
}

// GetItem returns a catalog item by id, or nil.
func (s *Service) GetItem(id int64) *model.MarketItem {
	return s.catalog.GetByID(id)
}

// UpdateItems applies admin bulk edits (partial rows keyed by id).
func (s *Service) UpdateItems(ctx context.Context, updates []model.ItemUpdate) error {
	if err := s.catalog.UpdateMany(ctx, updates); err != nil {
		return fmt.Errorf("updating items: %w", err)
	}
	return nil
}

// SwapItems exchanges the ids of two catalog rows; all other fields stay with
// their original row. Callback mappings follow their items.
func (s *Service) SwapItems(ctx context.Context, id1, id2 int64) error {
	if err := s.catalog.SwapIDs(ctx, id1, id2); err != nil {
		return fmt.Errorf("swapping items %d and %d: %w", id1, id2, err)
	}
	s.callbacks.Swap(id1, id2)
	return nil
}
