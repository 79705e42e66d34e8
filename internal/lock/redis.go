package lock

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix          = "booklibrary:lock:book:"
	defaultTTL         = 10 * time.Second
	defaultRetryPeriod = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so an expired lock
// that was taken over by another holder is never released by mistake.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker coordinates per-book locks across processes sharing one Redis.
type RedisLocker struct {
	client      *redis.Client
	ttl         time.Duration
	retryPeriod time.Duration
}

// NewRedisLocker creates a locker. ttl bounds how long a crashed holder can block a book;
// zero selects a default of 10s.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLocker{
		client:      client,
		ttl:         ttl,
		retryPeriod: defaultRetryPeriod,
	}
}

func lockKey(bookID int64) string {
	return keyPrefix + strconv.FormatInt(bookID, 10)
}

// Lock polls SET NX until it wins the key or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, bookID int64) (func(), error) {
	key := lockKey(bookID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryPeriod)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: book %d: %v", ErrTimeout, bookID, ctx.Err())
			}
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: book %d: %v", ErrTimeout, bookID, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// Release with a fresh context: the caller's may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			slog.Warn("Failed to release book lock", "book_id", bookID, "error", err)
		}
	}, nil
}
