package mocks

import (
	"context"
	"time"
)

type MockSeatLocker struct {
	TryAcquireFunc func(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error)
	ReleaseFunc    func(ctx context.Context, showID int, seatKey, holder string) error
	ExtendFunc     func(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error)
	OwnerFunc      func(ctx context.Context, showID int, seatKey string) (string, error)
}

func (m *MockSeatLocker) TryAcquire(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
	return m.TryAcquireFunc(ctx, showID, seatKey, holder, ttl)
}

func (m *MockSeatLocker) Release(ctx context.Context, showID int, seatKey, holder string) error {
	return m.ReleaseFunc(ctx, showID, seatKey, holder)
}

func (m *MockSeatLocker) Extend(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
	return m.ExtendFunc(ctx, showID, seatKey, holder, ttl)
}

func (m *MockSeatLocker) Owner(ctx context.Context, showID int, seatKey string) (string, error) {
	return m.OwnerFunc(ctx, showID, seatKey)
}
