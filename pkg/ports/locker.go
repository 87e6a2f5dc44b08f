package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates access to a session across runners.
type DistributedLocker interface {
	// Lock acquires a lock for key (usually a session ID). It blocks until the
	// lock is acquired or ctx is done. The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
