package core

import (
	"context"
	"time"
)

// Locker hands out short lived named locks, e.g. one in-flight submission per user.
type Locker interface {
	// Lock returns false when the lock is already held.
	Lock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

// WithLock runs fn while holding the named lock, failing with ErrBusy when it is taken.
func WithLock(ctx context.Context, locker Locker, name string, ttl time.Duration, fn func() error) error {
	if locker == nil {
		return fn()
	}
	ok, err := locker.Lock(ctx, name, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBusy
	}
	defer func() { _ = locker.Unlock(context.Background(), name) }()
	return fn()
}
