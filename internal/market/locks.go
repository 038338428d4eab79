package market

import (
	"context"
	"errors"
	"sync"
)

// ErrLockTimeout is returned when a lock could not be acquired before the
// caller's context expired. The locks themselves never time out a holder.
var ErrLockTimeout = errors.New("market: lock wait timed out")

// LockRegistry provides a mutual-exclusion lock per item id plus a single
// global registration lock. Waiters are served in no guaranteed order.
type LockRegistry struct {
	mu    sync.Mutex
	items map[int64]chan struct{}
	reg   chan struct{}
}

// NewLockRegistry creates an empty lock registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		items: make(map[int64]chan struct{}),
		reg:   make(chan struct{}, 1),
	}
}

// Acquire takes the lock for an item id, blocking until it is free or the
// context is done, in which case ErrLockTimeout is returned.
func (l *LockRegistry) Acquire(ctx context.Context, id int64) error {
	return acquire(ctx, l.itemLock(id))
}

// Release frees the lock for an item id. Releasing an unheld lock is a no-op.
func (l *LockRegistry) Release(id int64) {
	release(l.itemLock(id))
}

// AcquireRegistration takes the global registration lock, which serializes id
// allocation across concurrent registrations.
func (l *LockRegistry) AcquireRegistration(ctx context.Context) error {
	return acquire(ctx, l.reg)
}

// ReleaseRegistration frees the global registration lock.
func (l *LockRegistry) ReleaseRegistration() {
	release(l.reg)
}

func (l *LockRegistry) itemLock(id int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.items[id]
	if !ok {
		ch = make(chan struct{}, 1)
		l.items[id] = ch
	}
	return ch
}

func acquire(ctx context.Context, ch chan struct{}) error {
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ErrLockTimeout
	}
}

func release(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}
