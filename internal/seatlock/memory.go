package seatlock

import (
	"context"
	"sync"
	"time"
)

type memoryLock struct {
	holder    string
	expiresAt time.Time
}

// MemoryLocker is a process-local locker with the same owner and TTL
// semantics as the Redis one. It backs tests and single-node setups.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	now   func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]memoryLock),
		now:   time.Now,
	}
}

// current returns the live lock for key, pruning it if expired.
func (l *MemoryLocker) current(key string) (memoryLock, bool) {
	lock, ok := l.locks[key]
	if !ok {
		return memoryLock{}, false
	}
	if l.now().After(lock.expiresAt) {
		delete(l.locks, key)
		return memoryLock{}, false
	}
	return lock, true
}

func (l *MemoryLocker) TryAcquire(_ context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := LockKey(showID, seatKey)
	if _, held := l.current(key); held {
		return false, nil
	}

	l.locks[key] = memoryLock{holder: holder, expiresAt: l.now().Add(ttl)}
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, showID int, seatKey, holder string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := LockKey(showID, seatKey)
	if lock, held := l.current(key); held && lock.holder == holder {
		delete(l.locks, key)
	}
	return nil
}

func (l *MemoryLocker) Extend(_ context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := LockKey(showID, seatKey)
	lock, held := l.current(key)
	if !held || lock.holder != holder {
		return false, nil
	}

	lock.expiresAt = l.now().Add(ttl)
	l.locks[key] = lock
	return true, nil
}

func (l *MemoryLocker) Owner(_ context.Context, showID int, seatKey string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lock, held := l.current(LockKey(showID, seatKey)); held {
		return lock.holder, nil
	}
	return "", nil
}
