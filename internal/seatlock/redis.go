// Package seatlock implements the advisory seat lock tier. Locks are
// ephemeral and TTL-bound; the durable seat state table remains the source
// of truth, so a lost lock store only ever widens the window for conflicts,
// it never corrupts a sale.
package seatlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still owns it, so a
// holder whose lock expired and was re-acquired by someone else cannot
// release the new holder's lock.
var releaseScript = redis.NewScript(`
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("DEL", KEYS[1])
    end
    return 0
`)

// extendScript refreshes the TTL only for the current owner. It never
// creates a key, so an expired lock cannot be resurrected by a late extend.
var extendScript = redis.NewScript(`
    if redis.call("GET", KEYS[1]) == ARGV[1] then
        return redis.call("EXPIRE", KEYS[1], ARGV[2])
    end
    return 0
`)

// RedisLocker holds per-seat advisory locks in Redis. Each lock is a single
// key whose value is the holder, acquired with SET NX EX and mutated only
// through owner-checked scripts.
type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

// LockKey is the Redis key a seat's advisory lock lives under. Exposed for
// read-side bulk views that look at many locks in one round trip.
func LockKey(showID int, seatKey string) string {
	return fmt.Sprintf("seat_lock:%d:%s", showID, seatKey)
}

// TryAcquire attempts to take the lock for holder. It returns false without
// error when another holder currently owns the seat.
func (l *RedisLocker) TryAcquire(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, LockKey(showID, seatKey), holder, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring seat lock: %w", err)
	}
	return ok, nil
}

// Release removes the lock if holder still owns it. Releasing a lock that
// expired or belongs to someone else is a no-op.
func (l *RedisLocker) Release(ctx context.Context, showID int, seatKey, holder string) error {
	err := releaseScript.Run(ctx, l.client, []string{LockKey(showID, seatKey)}, holder).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("releasing seat lock: %w", err)
	}
	return nil
}

// Extend resets the TTL for a lock holder still owns. It returns false when
// the lock expired or changed hands, in which case the holder must
// re-acquire rather than assume possession.
func (l *RedisLocker) Extend(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, l.client, []string{LockKey(showID, seatKey)}, holder, int(ttl.Seconds())).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("extending seat lock: %w", err)
	}
	return n == 1, nil
}

// Owner returns the current holder, or "" when the seat is unlocked.
func (l *RedisLocker) Owner(ctx context.Context, showID int, seatKey string) (string, error) {
	holder, err := l.client.Get(ctx, LockKey(showID, seatKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading seat lock owner: %w", err)
	}
	return holder, nil
}
