package lock

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLocker serializes work per book within a single process.
type MemoryLocker struct {
	mu    sync.Mutex
	books map[int64]*bookLock
}

type bookLock struct {
	sem     chan struct{}
	waiters int
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{books: make(map[int64]*bookLock)}
}

// Lock acquires the lock for bookID, giving up when ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, bookID int64) (func(), error) {
	l.mu.Lock()
	bl, ok := l.books[bookID]
	if !ok {
		bl = &bookLock{sem: make(chan struct{}, 1)}
		l.books[bookID] = bl
	}
	bl.waiters++
	l.mu.Unlock()

	select {
	case bl.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(bookID, bl)
		return nil, fmt.Errorf("%w: book %d: %v", ErrTimeout, bookID, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-bl.sem
			l.release(bookID, bl)
		})
	}, nil
}

// release drops one reference and forgets the entry once nobody holds or waits for it.
func (l *MemoryLocker) release(bookID int64, bl *bookLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bl.waiters--
	if bl.waiters == 0 {
		delete(l.books, bookID)
	}
}

// size returns the number of tracked books.
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.books)
}
