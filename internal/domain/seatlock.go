package domain

import (
	"context"
	"time"
)

// SeatLocker is the ephemeral, advisory exclusion tier guarding the window
// between a user clicking a seat and a durable reservation or payment
// existing. Locks may vanish silently on TTL expiry; the durable seat map is
// always the source of truth. Acquire, release and extend are each a single
// atomic primitive against the shared store; a failed acquire is an ordinary
// conflict, a store error must abort the calling flow fail-closed.
type SeatLocker interface {
	// TryAcquire sets the lock only if no live lock exists. It never
	// overwrites another holder.
	TryAcquire(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error)

	// Release deletes the lock only while owned by holder, so a lock
	// re-acquired by someone else after expiry is never clobbered.
	Release(ctx context.Context, showID int, seatKey, holder string) error

	// Extend re-arms the TTL only while owned by holder. It never creates a
	// lock: an expired selection has to start over.
	Extend(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error)

	// Owner returns the current holder id, or "" when unlocked.
	Owner(ctx context.Context, showID int, seatKey string) (string, error)
}
