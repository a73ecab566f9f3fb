package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned by TryLock when the key is already held.
var ErrLocked = errors.New("key is locked")

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It allows the submission guard to coordinate identical submissions across multiple instances (replicas).
type DistributedLocker interface {
	// TryLock attempts to acquire the lock for key once, without waiting.
	// Returns ErrLocked if another holder owns it. The lock expires after ttl.
	// Returns an UnlockFunc that MUST be called to release the lock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
