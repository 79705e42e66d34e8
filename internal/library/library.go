// Package library implements the book catalog and the rental lifecycle.
//
// The Ledger owns the Available/Rented state machine, the Queries type serves read-only
// projections, and the Catalog handles plain book mutations. All three are composed over
// a storage.Store; every write to a single book runs inside one store transaction while
// holding that book's lock.Locker lock.
package library

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/booklibrary/internal/lock"
	"github.com/mmynk/booklibrary/internal/storage"
)

const defaultLockWait = 5 * time.Second

// Op names a rental transition.
type Op string

const (
	OpStartRental  Op = "start"
	OpFinishRental Op = "finish"
)

// TransitionHook is called after every rental transition attempt with its outcome.
type TransitionHook func(op Op, err error)

// Option configures a Library.
type Option func(*core)

// WithLocker sets the per-book locker and how long to wait for a lock.
// A non-positive wait selects the default of 5s.
func WithLocker(locker lock.Locker, wait time.Duration) Option {
	return func(c *core) {
		c.locker = locker
		if wait > 0 {
			c.lockWait = wait
		}
	}
}

// WithClock replaces the time source used for rental timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *core) { c.now = now }
}

// WithTransitionHook registers a callback for rental transition outcomes.
func WithTransitionHook(hook TransitionHook) Option {
	return func(c *core) { c.hook = hook }
}

// core is the state shared by the ledger, queries and catalog.
type core struct {
	store    storage.Store
	locker   lock.Locker
	lockWait time.Duration
	now      func() time.Time
	hook     TransitionHook
}

// Library bundles the rental ledger, the query service and the catalog.
type Library struct {
	*Ledger
	*Queries
	*Catalog
}

// New creates a Library over store. Without WithLocker an in-process locker is used.
func New(store storage.Store, opts ...Option) *Library {
	c := &core{
		store:    store,
		locker:   lock.NewMemoryLocker(),
		lockWait: defaultLockWait,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Library{
		Ledger:  &Ledger{c},
		Queries: &Queries{c},
		Catalog: &Catalog{c},
	}
}

// withBookLock runs fn while holding the lock for bookID.
// Waiting for the lock is bounded by lockWait; fn itself runs on the caller's ctx.
func (c *core) withBookLock(ctx context.Context, bookID int64, fn func(ctx context.Context) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, c.lockWait)
	unlock, err := c.locker.Lock(lockCtx, bookID)
	cancel()
	if err != nil {
		slog.Warn("Book lock not acquired", "book_id", bookID, "error", err)
		return err
	}
	defer unlock()

	return fn(ctx)
}

// writeBook runs fn in a store transaction under the book's lock.
func (c *core) writeBook(ctx context.Context, bookID int64, fn func(ctx context.Context, repo storage.Repository) error) error {
	err := c.withBookLock(ctx, bookID, func(ctx context.Context) error {
		return c.store.InTx(ctx, fn)
	})
	if err != nil && !isLockError(err) {
		return storageError(err)
	}
	return err
}
