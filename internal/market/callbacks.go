package market

import (
	"sync"

	"github.com/pointmint/market/internal/model"
)

// CallbackRegistry maps item ids to their plugin-supplied fulfillment
// callbacks. It is in-memory only; plugins re-register on process start.
type CallbackRegistry struct {
	mu        sync.RWMutex
	callbacks map[int64]model.PurchaseCallback
}

// NewCallbackRegistry creates an empty callback registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{callbacks: make(map[int64]model.PurchaseCallback)}
}

// Set maps an item id to a callback, replacing any previous mapping.
func (r *CallbackRegistry) Set(id int64, cb model.PurchaseCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[id] = cb
}

// Get returns the callback for an item id, if one is registered.
func (r *CallbackRegistry) Get(id int64) (model.PurchaseCallback, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb, ok := r.callbacks[id]
	return cb, ok
}

// Delete removes the mapping for an item id.
func (r *CallbackRegistry) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.callbacks, id)
}

// Swap exchanges the mappings of two item ids, tracking an id swap in the
// catalog so callbacks keep following their items.
func (r *CallbackRegistry) Swap(id1, id2 int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb1, ok1 := r.callbacks[id1]
	cb2, ok2 := r.callbacks[id2]
	delete(r.callbacks, id1)
	delete(r.callbacks, id2)
	if ok1 {
		r.callbacks[id2] = cb1
	}
	if ok2 {
		r.callbacks[id1] = cb2
	}
}
