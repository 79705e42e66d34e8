// Package lock provides exclusive per-book locks used to serialize rental transitions.
package lock

import (
	"context"
	"errors"
)

// ErrTimeout is returned when a lock could not be acquired before the context ended.
var ErrTimeout = errors.New("timed out waiting for book lock")

// Locker hands out exclusive locks keyed by book ID.
type Locker interface {
	// Lock blocks until the lock for bookID is held or ctx is done.
	// The returned function releases the lock and must be called exactly once.
	Lock(ctx context.Context, bookID int64) (unlock func(), err error)
}

// Nop is a Locker that never blocks. Use it when the store alone isolates transactions.
type Nop struct{}

func (Nop) Lock(ctx context.Context, bookID int64) (func(), error) {
	return func() {}, nil
}
